package content

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Get returns the node at path. The empty path returns root.
func Get(root *Node, path Path) (*Node, error) {
	n := root
	for depth, seg := range path {
		next, err := child(n, seg)
		if err != nil {
			return nil, errors.Wrapf(err, "at %q", path[:depth+1].String())
		}
		n = next
	}
	return n, nil
}

func child(n *Node, seg string) (*Node, error) {
	switch n.Kind {
	case KindObject:
		if c, ok := n.Fields[seg]; ok {
			return c, nil
		}
		return nil, errors.Wrapf(ErrInvalidPath, "unknown key %q", seg)
	case KindObjectList:
		i, err := listIndex(n, seg)
		if err != nil {
			return nil, err
		}
		return n.Items[i], nil
	}
	return nil, errors.Wrapf(ErrInvalidPath, "cannot descend into %s", n.Kind)
}

func listIndex(n *Node, seg string) (int, error) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(n.Items) {
		return 0, errors.Wrapf(ErrInvalidPath, "index %q out of range [0,%d)", seg, len(n.Items))
	}
	return i, nil
}

// Set returns a copy of root in which the leaf at path is replaced by leaf.
// Only the ancestors on path are copied; every other subtree is shared with root.
// leaf must be a text or text-list node of the same kind as the node it replaces.
// A text list needs at least one line: an empty array reads back as an object list.
func Set(root *Node, path Path, leaf *Node) (*Node, error) {
	if len(path) == 0 {
		return nil, errors.Wrap(ErrInvalidPath, "empty path")
	}
	if leaf == nil || (leaf.Kind != KindText && leaf.Kind != KindTextList) {
		return nil, errors.Wrap(ErrShapeMismatch, "only text and text lists can be edited")
	}
	if leaf.Kind == KindTextList && len(leaf.Lines) == 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "%q: a string list cannot be emptied", path.String())
	}
	return replace(root, path, 0, leaf)
}

func replace(n *Node, path Path, depth int, leaf *Node) (*Node, error) {
	if depth == len(path) {
		if n.Kind != leaf.Kind {
			return nil, errors.Wrapf(ErrShapeMismatch, "%q is %s, not %s", path.String(), n.Kind, leaf.Kind)
		}
		return leaf, nil
	}

	seg := path[depth]
	switch n.Kind {
	case KindObject:
		c, ok := n.Fields[seg]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPath, "unknown key %q at %q", seg, path[:depth].String())
		}
		updated, err := replace(c, path, depth+1, leaf)
		if err != nil {
			return nil, err
		}
		cp := *n
		cp.Fields = make(map[string]*Node, len(n.Fields))
		for key, val := range n.Fields {
			cp.Fields[key] = val
		}
		cp.Fields[seg] = updated
		return &cp, nil
	case KindObjectList:
		i, err := listIndex(n, seg)
		if err != nil {
			return nil, errors.Wrapf(err, "at %q", path[:depth].String())
		}
		updated, err := replace(n.Items[i], path, depth+1, leaf)
		if err != nil {
			return nil, err
		}
		cp := *n
		cp.Items = make([]*Node, len(n.Items))
		copy(cp.Items, n.Items)
		cp.Items[i] = updated
		return &cp, nil
	}
	return nil, errors.Wrapf(ErrInvalidPath, "cannot descend into %s at %q", n.Kind, path[:depth].String())
}

// SetText replaces the string at path.
func SetText(root *Node, path Path, s string) (*Node, error) {
	return Set(root, path, NewText(s))
}

// SetLines replaces the string list at path.
func SetLines(root *Node, path Path, lines []string) (*Node, error) {
	return Set(root, path, NewTextList(lines))
}

// SplitLines maps text area content to list elements: one element per line, empty lines kept.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Commit applies raw widget input at path: strings take it as is, string lists take one element per line.
func Commit(root *Node, path Path, input string) (*Node, error) {
	target, err := Get(root, path)
	if err != nil {
		return nil, err
	}
	switch target.Kind {
	case KindText:
		return SetText(root, path, input)
	case KindTextList:
		return SetLines(root, path, SplitLines(input))
	}
	return nil, errors.Wrapf(ErrShapeMismatch, "%q is %s and cannot be edited", path.String(), target.Kind)
}
