package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// parseJSON decodes a JSON document into a node tree, keeping object keys in
// document order.
func parseJSON(r io.Reader) (node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	n, err := readJSONValue(dec)
	if err != nil {
		return node{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return node{}, errors.New("unexpected data after top-level value")
	}
	return n, nil
}

func readJSONValue(dec *json.Decoder) (node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return node{}, io.ErrUnexpectedEOF
		}
		return node{}, err
	}

	switch v := tok.(type) {
	case nil:
		return node{kind: kindNull}, nil
	case bool:
		return node{kind: kindBool}, nil
	case json.Number:
		return node{kind: kindNumber, str: v.String()}, nil
	case string:
		return node{kind: kindString, str: v}, nil
	case json.Delim:
		switch v {
		case '{':
			return readJSONObject(dec)
		case '[':
			return readJSONArray(dec)
		}
	}
	return node{}, fmt.Errorf("unexpected token %v", tok)
}

func readJSONObject(dec *json.Decoder) (node, error) {
	n := node{kind: kindObject}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return node{}, fmt.Errorf("object key %v is not a string", tok)
		}
		val, err := readJSONValue(dec)
		if err != nil {
			return node{}, err
		}
		n.members = append(n.members, member{key: key, val: val})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return node{}, err
	}
	return n, nil
}

func readJSONArray(dec *json.Decoder) (node, error) {
	for dec.More() {
		if _, err := readJSONValue(dec); err != nil {
			return node{}, err
		}
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return node{}, err
	}
	return node{kind: kindArray}, nil
}
