package content

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// LongTextThreshold is the length (in characters) above which a string is edited in a text area.
const LongTextThreshold = 100

// Widget is the editing control used for a field.
type Widget string

const (
	WidgetInput    Widget = "input"    // short text
	WidgetTextarea Widget = "textarea" // long text
	WidgetLines    Widget = "lines"    // text list, one element per line
	WidgetSection  Widget = "section"  // nested object
	WidgetGroup    Widget = "group"    // object list
)

const (
	textareaRows     = 4
	linesPlaceholder = "Un élément par ligne"
)

// Field describes how one node of a content tree is edited.
type Field struct {
	Path        Path    `json:"path"`
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Widget      Widget  `json:"widget"`
	Value       string  `json:"value"`
	Rows        int     `json:"rows,omitempty"`
	Placeholder string  `json:"placeholder,omitempty"`
	Fields      []Field `json:"fields,omitempty"` // section
	Items       []Item  `json:"items,omitempty"`  // group
}

// Item is one element of an object list.
type Item struct {
	Index  int     `json:"index"`
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

// IsLongText reports whether s needs a text area: longer than LongTextThreshold or multi-line.
func IsLongText(s string) bool {
	return utf8.RuneCountInString(s) > LongTextThreshold || strings.Contains(s, "\n")
}

// Label derives a field's display label from its key.
func Label(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Render returns the editable fields of a content tree, in document order.
func Render(root *Node) []Field {
	return renderObject(nil, root)
}

func renderObject(path Path, obj *Node) []Field {
	fields := make([]Field, 0, len(obj.Keys))
	for _, key := range obj.Keys {
		if f, ok := renderField(path.Append(key), key, obj.Fields[key]); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

func renderField(path Path, key string, n *Node) (Field, bool) {
	f := Field{Path: path, Key: key, Label: Label(key)}

	switch n.Kind {
	case KindText:
		f.Value = n.Text
		f.Widget = WidgetInput
		if IsLongText(n.Text) {
			f.Widget = WidgetTextarea
			f.Rows = textareaRows
		}
	case KindTextList:
		f.Widget = WidgetLines
		f.Value = strings.Join(n.Lines, "\n")
		f.Rows = len(n.Lines) + 1
		f.Placeholder = linesPlaceholder
	case KindObject:
		f.Widget = WidgetSection
		f.Fields = renderObject(path, n)
	case KindObjectList:
		f.Widget = WidgetGroup
		f.Items = make([]Item, 0, len(n.Items))
		for i, item := range n.Items {
			f.Items = append(f.Items, Item{
				Index:  i,
				Label:  "#" + strconv.Itoa(i+1),
				Fields: renderObject(path.Index(i), item),
			})
		}
	default:
		return Field{}, false
	}
	return f, true
}

// Editable reports whether the field is a leaf that accepts input.
func (f Field) Editable() bool {
	switch f.Widget {
	case WidgetInput, WidgetTextarea, WidgetLines:
		return true
	}
	return false
}

// Commit applies input typed in this field's widget to root.
func (f Field) Commit(root *Node, input string) (*Node, error) {
	return Commit(root, f.Path, input)
}

// Walk calls fn for every editable field, depth first.
func Walk(fields []Field, fn func(Field)) {
	for _, f := range fields {
		if f.Editable() {
			fn(f)
			continue
		}
		Walk(f.Fields, fn)
		for _, item := range f.Items {
			Walk(item.Fields, fn)
		}
	}
}
