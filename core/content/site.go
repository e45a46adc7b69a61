package content

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"

	"github.com/ecole-ece/vitrine/core"
)

// Page is the public, read-only view of a document.
type Page struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Content   *Node     `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Site serves committed page content to the public website.
type Site struct {
	repo   Repository
	cache  Cache
	logger core.Logger
	policy *bluemonday.Policy
}

func NewSite(repo Repository, cache Cache, logger core.Logger) *Site {
	if cache == nil {
		cache = nopCache{}
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Site{repo: repo, cache: cache, logger: logger, policy: bluemonday.StrictPolicy()}
}

// Page returns the encoded page of key, from the cache when possible.
func (s *Site) Page(ctx context.Context, key string) (json.RawMessage, error) {
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("failed to read cached page", err, map[string]interface{}{"key": key})
	} else if ok {
		return data, nil
	}

	doc, err := s.repo.GetDocument(ctx, key)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, errors.Wrapf(ErrNotFound, "page %q", key)
		}
		return nil, &FailureError{Op: OpLoad, Key: key, Err: err}
	}
	root, err := Decode(doc.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "page %q", key)
	}

	data, err := json.Marshal(Page{
		Key:       doc.Key,
		Title:     s.sanitize(doc.Title),
		Content:   MapText(root, s.sanitize),
		UpdatedAt: doc.UpdatedAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding page")
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("failed to cache page", err, map[string]interface{}{"key": key})
		return data, nil
	}
	s.dropIfStale(ctx, doc)
	return data, nil
}

// dropIfStale removes the page just cached when the document was saved while it was rendered.
// A save invalidates the cache after writing, so a render of the old content may land after it.
func (s *Site) dropIfStale(ctx context.Context, rendered Document) {
	doc, err := s.repo.GetDocument(ctx, rendered.Key)
	if err == nil && doc.UpdatedAt.Equal(rendered.UpdatedAt) && doc.Title == rendered.Title &&
		bytes.Equal(doc.Content, rendered.Content) {
		return
	}
	if err := s.cache.Delete(ctx, rendered.Key); err != nil {
		s.logger.Warn("failed to drop stale page", err, map[string]interface{}{"key": rendered.Key})
	}
}

const maxSanitizeRounds = 8

// sanitize strips markup, entity-encoded markup included.
// Entities are restored on the way out since the output is JSON, not HTML.
func (s *Site) sanitize(text string) string {
	for i := 0; i < maxSanitizeRounds; i++ {
		clean := html.UnescapeString(s.policy.Sanitize(text))
		if clean == text {
			return clean
		}
		text = clean
	}
	return s.policy.Sanitize(text)
}

// MapText returns a copy of root where fn was applied to every string and string-list element.
func MapText(root *Node, fn func(string) string) *Node {
	if root == nil {
		return nil
	}
	switch root.Kind {
	case KindText:
		return NewText(fn(root.Text))
	case KindTextList:
		lines := make([]string, len(root.Lines))
		for i, line := range root.Lines {
			lines[i] = fn(line)
		}
		return &Node{Kind: KindTextList, Lines: lines}
	case KindObjectList:
		items := make([]*Node, len(root.Items))
		for i, item := range root.Items {
			items[i] = MapText(item, fn)
		}
		return &Node{Kind: KindObjectList, Items: items}
	case KindObject:
		obj := NewObject()
		for _, key := range root.Keys {
			obj.Put(key, MapText(root.Fields[key], fn))
		}
		return obj
	}
	return root
}
