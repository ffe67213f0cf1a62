package vocab

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// parseYAML decodes a YAML document into a node tree. yaml.Node keeps
// mapping keys in document order, which the sample ordering relies on.
func parseYAML(data []byte) (node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return node{}, err
	}
	c := yamlConverter{
		expanding: map[*yaml.Node]bool{},
		budget:    maxYAMLNodes,
	}
	return c.convert(&root)
}

// maxYAMLNodes bounds the converted tree so that alias fan-out cannot grow
// it exponentially.
const maxYAMLNodes = 1 << 20

// yamlConverter turns a yaml.Node tree into a node tree. Aliases are
// expanded in place; an alias to a mapping still being converted is
// rejected.
type yamlConverter struct {
	expanding map[*yaml.Node]bool
	budget    int
}

func (c *yamlConverter) convert(y *yaml.Node) (node, error) {
	c.budget--
	if c.budget < 0 {
		return node{}, fmt.Errorf("line %d: document expands to more than %d nodes", y.Line, maxYAMLNodes)
	}

	switch y.Kind {
	case 0:
		return node{kind: kindNull}, nil
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return node{kind: kindNull}, nil
		}
		return c.convert(y.Content[0])
	case yaml.AliasNode:
		if y.Alias == nil {
			return node{}, fmt.Errorf("line %d: dangling alias", y.Line)
		}
		if c.expanding[y.Alias] {
			return node{}, fmt.Errorf("line %d: recursive alias", y.Line)
		}
		return c.convert(y.Alias)
	case yaml.SequenceNode:
		return node{kind: kindArray}, nil
	case yaml.MappingNode:
		c.expanding[y] = true
		defer delete(c.expanding, y)

		n := node{kind: kindObject}
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return node{}, fmt.Errorf("line %d: mapping key is not a scalar", k.Line)
			}
			val, err := c.convert(v)
			if err != nil {
				return node{}, err
			}
			n.members = append(n.members, member{key: k.Value, val: val})
		}
		return n, nil
	case yaml.ScalarNode:
		return yamlScalar(y)
	default:
		return node{}, fmt.Errorf("line %d: unsupported yaml node kind %d", y.Line, y.Kind)
	}
}

func yamlScalar(y *yaml.Node) (node, error) {
	switch y.ShortTag() {
	case "!!null":
		return node{kind: kindNull}, nil
	case "!!bool":
		return node{kind: kindBool}, nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err != nil {
			return node{}, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return node{kind: kindNumber, str: strconv.FormatInt(i, 10)}, nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return node{}, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return node{kind: kindNumber, str: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	default:
		return node{kind: kindString, str: y.Value}, nil
	}
}
