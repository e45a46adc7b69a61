package content

import (
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// seed file layout, in YAML or JSON. The key defaults to the file name.
type seedFile struct {
	Key     string          `json:"key" yaml:"key"`
	Title   string          `json:"title" yaml:"title"`
	Content json.RawMessage `json:"content" yaml:"-"`
	Tree    yaml.Node       `json:"-" yaml:"content"`
}

// LoadSeeds reads every seed document of fsys matching pattern (doublestar syntax), ordered by file name.
func LoadSeeds(fsys fs.FS, pattern string) ([]Document, error) {
	names, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %q", pattern)
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		doc, err := ParseSeed(name, data)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", name)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ParseSeed decodes one seed file; the format is picked from the extension of name.
func ParseSeed(name string, data []byte) (Document, error) {
	var sf seedFile
	var root *Node

	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".json":
		if err := json.Unmarshal(data, &sf); err != nil {
			return Document{}, errors.Wrap(err, "decoding json seed")
		}
		var err error
		if root, err = Decode(sf.Content); err != nil {
			return Document{}, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return Document{}, errors.Wrap(err, "decoding yaml seed")
		}
		var err error
		if root, err = FromYAML(&sf.Tree); err != nil {
			return Document{}, err
		}
	default:
		return Document{}, errors.Errorf("unsupported seed format %q", ext)
	}

	if sf.Key == "" {
		base := path.Base(name)
		sf.Key = strings.TrimSuffix(base, path.Ext(base))
	}
	raw, _ := root.MarshalJSON()
	return Document{Key: sf.Key, Title: sf.Title, Content: raw}, nil
}

// FromYAML converts a YAML mapping to a content tree, classifying values like Decode does.
func FromYAML(n *yaml.Node) (*Node, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.Wrap(ErrInvalidContent, "seed content must be a mapping")
	}
	return fromYAML(n)
}

func fromYAML(n *yaml.Node) (*Node, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			child, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Put(n.Content[i].Value, child)
		}
		return obj, nil
	case yaml.SequenceNode:
		elems := make([]*Node, 0, len(n.Content))
		for _, c := range n.Content {
			elem, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		return classifyArray(elems), nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			return NewText(n.Value), nil
		}
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, errors.Wrapf(ErrInvalidContent, "line %d: %v", n.Line, err)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidContent, "line %d: %v", n.Line, err)
		}
		return &Node{Kind: KindOpaque, Raw: raw}, nil
	}
	return nil, errors.Wrapf(ErrInvalidContent, "line %d: unsupported yaml node", n.Line)
}
