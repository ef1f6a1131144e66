package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SetFrontmatterValue sets key to value in the document's front-matter, or
// removes the key when value is nil. Other keys, their order and the body are
// preserved. A front-matter block is created when needed and dropped when the
// last key is removed.
func SetFrontmatterValue(data []byte, key string, value *string) ([]byte, error) {
	yamlBlock, rest, ok := cutFrontmatter(data)
	if !ok {
		rest = data
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode}
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if ok && len(bytes.TrimSpace(yamlBlock)) > 0 {
		if err := yaml.Unmarshal(yamlBlock, doc); err != nil {
			return nil, fmt.Errorf("parser: front-matter: %w", err)
		}
		if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
			return nil, fmt.Errorf("parser: front-matter is not a mapping")
		}
		root = doc.Content[0]
	} else {
		doc.Content = []*yaml.Node{root}
	}

	found := -1
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			found = i
			break
		}
	}

	switch {
	case value == nil && found >= 0:
		root.Content = append(root.Content[:found], root.Content[found+2:]...)
	case value == nil:
		return data, nil
	case found >= 0:
		root.Content[found+1] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: *value}
	default:
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: *value},
		)
	}

	if len(root.Content) == 0 {
		return rest, nil
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("parser: encode front-matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("parser: encode front-matter: %w", err)
	}
	buf.WriteString("---\n")
	buf.Write(rest)
	return buf.Bytes(), nil
}
