package content

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Kind is the structural category of a content node.
type Kind int

const (
	KindOpaque     Kind = iota // numbers, booleans, null, mixed arrays: carried as-is, never edited
	KindText                   // string
	KindTextList               // array of strings
	KindObjectList             // array of objects
	KindObject                 // object
)

var kindNames = [...]string{
	KindOpaque:     "opaque",
	KindText:       "text",
	KindTextList:   "text_list",
	KindObjectList: "object_list",
	KindObject:     "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is one decoded value of a content tree.
// Nodes are never modified once built: Set returns new ancestors and shares everything else.
type Node struct {
	Kind   Kind
	Text   string           // KindText
	Lines  []string         // KindTextList
	Items  []*Node          // KindObjectList, every item is a KindObject
	Keys   []string         // KindObject, in document order
	Fields map[string]*Node // KindObject
	Raw    json.RawMessage  // KindOpaque
}

func NewText(s string) *Node { return &Node{Kind: KindText, Text: s} }

func NewTextList(lines []string) *Node {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Node{Kind: KindTextList, Lines: cp}
}

// NewObject returns an empty object node; use Put to fill it while building a tree.
func NewObject() *Node {
	return &Node{Kind: KindObject, Fields: make(map[string]*Node)}
}

// Put adds (or replaces) a field while building a tree. It must not be used on a shared tree.
func (n *Node) Put(key string, child *Node) *Node {
	if _, ok := n.Fields[key]; !ok {
		n.Keys = append(n.Keys, key)
	}
	n.Fields[key] = child
	return n
}

// Decode parses a content document. The root must be a JSON object.
func Decode(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidContent, "decoding content: %v", err)
	}
	if _, err = dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrInvalidContent, "trailing data after content")
	}
	if root.Kind != KindObject {
		return nil, ErrInvalidContent
	}
	return root, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Put(key, child)
			}
			if _, err = dec.Token(); err != nil { // '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var elems []*Node
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, elem)
			}
			if _, err = dec.Token(); err != nil { // ']'
				return nil, err
			}
			return classifyArray(elems), nil
		}
		return nil, errors.Errorf("unexpected delimiter %q", v)
	case string:
		return NewText(v), nil
	case json.Number:
		return &Node{Kind: KindOpaque, Raw: json.RawMessage(v.String())}, nil
	case bool:
		if v {
			return &Node{Kind: KindOpaque, Raw: json.RawMessage("true")}, nil
		}
		return &Node{Kind: KindOpaque, Raw: json.RawMessage("false")}, nil
	case nil:
		return &Node{Kind: KindOpaque, Raw: json.RawMessage("null")}, nil
	}
	return nil, errors.Errorf("unexpected token %v", tok)
}

// classifyArray picks the array strategy from its first element.
// Arrays that are not uniformly strings or uniformly objects become opaque on purpose,
// so that a save never rewrites their other elements.
func classifyArray(elems []*Node) *Node {
	if len(elems) == 0 {
		return &Node{Kind: KindObjectList}
	}

	switch elems[0].Kind {
	case KindText:
		lines := make([]string, 0, len(elems))
		for _, e := range elems {
			if e.Kind != KindText {
				return opaqueArray(elems)
			}
			lines = append(lines, e.Text)
		}
		return &Node{Kind: KindTextList, Lines: lines}
	case KindObject:
		for _, e := range elems {
			if e.Kind != KindObject {
				return opaqueArray(elems)
			}
		}
		return &Node{Kind: KindObjectList, Items: elems}
	}
	return opaqueArray(elems)
}

func opaqueArray(elems []*Node) *Node {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		e.encode(&buf)
	}
	buf.WriteByte(']')
	return &Node{Kind: KindOpaque, Raw: json.RawMessage(buf.Bytes())}
}

// MarshalJSON encodes the tree back to JSON, keeping the object key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	n.encode(&buf)
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) {
	if n == nil {
		buf.WriteString("null")
		return
	}

	switch n.Kind {
	case KindText:
		writeString(buf, n.Text)
	case KindTextList:
		buf.WriteByte('[')
		for i, line := range n.Lines {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, line)
		}
		buf.WriteByte(']')
	case KindObjectList:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.encode(buf)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, key := range n.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, key)
			buf.WriteByte(':')
			n.Fields[key].encode(buf)
		}
		buf.WriteByte('}')
	default:
		if len(n.Raw) == 0 {
			buf.WriteString("null")
			return
		}
		buf.Write(n.Raw)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
}

// Clone returns a deep copy of the tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Kind: n.Kind, Text: n.Text}
	switch n.Kind {
	case KindTextList:
		cp.Lines = make([]string, len(n.Lines))
		copy(cp.Lines, n.Lines)
	case KindObjectList:
		cp.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			cp.Items[i] = item.Clone()
		}
	case KindObject:
		cp.Keys = make([]string, len(n.Keys))
		copy(cp.Keys, n.Keys)
		cp.Fields = make(map[string]*Node, len(n.Fields))
		for key, child := range n.Fields {
			cp.Fields[key] = child.Clone()
		}
	case KindOpaque:
		cp.Raw = append(json.RawMessage(nil), n.Raw...)
	}
	return cp
}

// Equal reports whether both trees encode to the same JSON.
func (n *Node) Equal(other *Node) bool {
	a, _ := n.MarshalJSON()
	b, _ := other.MarshalJSON()
	return bytes.Equal(a, b)
}

// SameShape reports whether both trees have the same keys, the same kinds everywhere
// and the same object-list lengths. Leaf values are ignored.
func SameShape(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindObject:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for key, child := range a.Fields {
			other, ok := b.Fields[key]
			if !ok || !SameShape(child, other) {
				return false
			}
		}
	case KindObjectList:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !SameShape(a.Items[i], b.Items[i]) {
				return false
			}
		}
	}
	return true
}

// Interface converts the tree to plain Go values (map[string]interface{}, []interface{}, string...).
func (n *Node) Interface() interface{} {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindText:
		return n.Text
	case KindTextList:
		list := make([]interface{}, len(n.Lines))
		for i, line := range n.Lines {
			list[i] = line
		}
		return list
	case KindObjectList:
		list := make([]interface{}, len(n.Items))
		for i, item := range n.Items {
			list[i] = item.Interface()
		}
		return list
	case KindObject:
		obj := make(map[string]interface{}, len(n.Fields))
		for key, child := range n.Fields {
			obj[key] = child.Interface()
		}
		return obj
	}
	var v interface{}
	_ = json.Unmarshal(n.Raw, &v)
	return v
}
