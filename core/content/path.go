package content

import (
	"strconv"
	"strings"
)

// Path addresses a node inside a content tree: object keys and stringified list indices.
type Path []string

// Append returns a new Path; p itself is never modified.
func (p Path) Append(segs ...string) Path {
	out := make(Path, len(p), len(p)+len(segs))
	copy(out, p)
	return append(out, segs...)
}

// Index returns the path of the i-th element of the list at p.
func (p Path) Index(i int) Path {
	return p.Append(strconv.Itoa(i))
}

// Key returns the last segment.
func (p Path) Key() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// HasPrefix reports whether q is an ancestor of (or equal to) p.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

func (p Path) Equal(q Path) bool {
	return len(p) == len(q) && p.HasPrefix(q)
}

func (p Path) String() string {
	return strings.Join(p, ".")
}
