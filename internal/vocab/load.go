package vocab

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned when a vocabulary definition is malformed.
var ErrInvalidFormat = errors.New("invalid vocabulary format")

// Section names of a vocabulary definition.
const (
	SectionTokenToID     = "tokenToId"
	SectionIDToToken     = "idToToken"
	SectionSpecialTokens = "specialTokens"
)

// Format selects the serialization of a vocabulary definition.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	default:
		return "json"
	}
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and parses the vocabulary definition at path.
func LoadFile(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("vocabulary path must not be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %q: %w", path, err)
	}

	s, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %q: %w", path, err)
	}
	return s, nil
}

// Load reads a vocabulary definition from r.
func Load(r io.Reader, format Format) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(data, format)
}

// Parse builds a Store from a serialized definition. Absent or null sections
// are empty. A failed parse never returns a Store.
func Parse(data []byte, format Format) (*Store, error) {
	var (
		doc node
		err error
	)
	switch format {
	case FormatYAML:
		doc, err = parseYAML(data)
	default:
		doc, err = parseJSON(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, format, err)
	}
	if doc.kind != kindObject {
		return nil, fmt.Errorf("%w: document is %s, want object", ErrInvalidFormat, doc.kind)
	}

	sections := map[string]node{}
	for _, m := range doc.members {
		sections[m.key] = m.val
	}

	s := newStore()
	if err := s.fillTokenToID(sections[SectionTokenToID]); err != nil {
		return nil, err
	}
	if err := s.fillIDToToken(sections[SectionIDToToken]); err != nil {
		return nil, err
	}
	if err := s.fillSpecial(sections[SectionSpecialTokens]); err != nil {
		return nil, err
	}
	return s, nil
}

// sectionMembers returns the members of a section, or an error if it is
// present but not an object. Duplicate keys keep their first position and
// take the last value.
func sectionMembers(name string, n node) ([]member, error) {
	switch n.kind {
	case kindAbsent, kindNull:
		return nil, nil
	case kindObject:
	default:
		return nil, fmt.Errorf("%w: section %q is %s, want object", ErrInvalidFormat, name, n.kind)
	}

	pos := make(map[string]int, len(n.members))
	out := make([]member, 0, len(n.members))
	for _, m := range n.members {
		if i, ok := pos[m.key]; ok {
			out[i].val = m.val
			continue
		}
		pos[m.key] = len(out)
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) fillTokenToID(n node) error {
	members, err := sectionMembers(SectionTokenToID, n)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := m.val.integer()
		if err != nil {
			return fmt.Errorf("%w: %s[%q]: %v", ErrInvalidFormat, SectionTokenToID, m.key, err)
		}
		s.tokenToID[m.key] = id
		keys = append(keys, m.key)
	}
	s.order = orderKeys(keys)
	return nil
}

func (s *Store) fillIDToToken(n node) error {
	members, err := sectionMembers(SectionIDToToken, n)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.val.kind != kindString {
			return fmt.Errorf("%w: %s[%q] is %s, want string", ErrInvalidFormat, SectionIDToToken, m.key, m.val.kind)
		}
		id, err := strconv.Atoi(m.key)
		if err != nil || strconv.Itoa(id) != m.key {
			// Lookups use the decimal form of an ID, so this key is unreachable.
			continue
		}
		s.idToToken[id] = m.val.str
	}
	return nil
}

func (s *Store) fillSpecial(n node) error {
	members, err := sectionMembers(SectionSpecialTokens, n)
	if err != nil {
		return err
	}
	byName := make(map[string]node, len(members))
	for _, m := range members {
		byName[m.key] = m.val
	}
	for _, role := range Roles {
		v, ok := byName[string(role)]
		if !ok || v.kind == kindNull {
			continue
		}
		id, err := v.integer()
		if err != nil {
			return fmt.Errorf("%w: %s[%q]: %v", ErrInvalidFormat, SectionSpecialTokens, role, err)
		}
		s.special[role] = id
	}
	return nil
}

// ---------------------------------------------------------------------------
// format-neutral document tree
// ---------------------------------------------------------------------------

type kind int

const (
	kindAbsent kind = iota
	kindNull
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

func (k kind) String() string {
	switch k {
	case kindNull:
		return "null"
	case kindBool:
		return "boolean"
	case kindNumber:
		return "number"
	case kindString:
		return "string"
	case kindArray:
		return "array"
	case kindObject:
		return "object"
	default:
		return "absent"
	}
}

type node struct {
	kind    kind
	str     string // string value, or the literal text of a number
	members []member
}

type member struct {
	key string
	val node
}

// integer converts a number node to an int.
func (n node) integer() (int, error) {
	if n.kind != kindNumber {
		return 0, fmt.Errorf("value is %s, want integer", n.kind)
	}
	return ParseInteger(n.str)
}

// ParseInteger converts a numeric literal to an int. Integral floats such as
// 1.0 or 1e2 are accepted; fractions and out-of-range values are not.
func ParseInteger(lit string) (int, error) {
	if i, err := strconv.ParseInt(lit, 10, 0); err == nil {
		return int(i), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.Trunc(f) != f || f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("value %s is not an integer", lit)
	}
	return int(f), nil
}
