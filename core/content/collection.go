package content

import (
	"context"
	"sync"

	"github.com/ecole-ece/vitrine/core"
)

// Collection holds one editor per stored document.
type Collection struct {
	deps   *deps
	labels Labels

	mu      sync.RWMutex
	editors []*Editor
	byKey   map[string]*Editor
}

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

func WithCache(cache Cache) CollectionOption {
	return func(c *Collection) { c.deps.cache = cache }
}

func WithObserver(obs Observer) CollectionOption {
	return func(c *Collection) { c.deps.observer = obs }
}

func WithLabels(labels Labels) CollectionOption {
	return func(c *Collection) { c.labels = labels }
}

// NewCollection returns an empty collection. Call Refresh to load the documents.
func NewCollection(repo Repository, logger core.Logger, opts ...CollectionOption) *Collection {
	c := &Collection{
		deps:   &deps{repo: repo, logger: logger},
		labels: DefaultLabels,
		byKey:  make(map[string]*Editor),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.deps.withDefaults()
	return c
}

// Refresh reloads every document and rebuilds the editors; open buffers are discarded.
// When the listing fails the previous editors are kept.
func (c *Collection) Refresh(ctx context.Context) error {
	docs, err := c.deps.repo.ListDocuments(ctx)
	if err != nil {
		err = &FailureError{Op: OpLoad, Err: err}
		c.deps.observer.Loaded(0, err)
		c.deps.logger.Error("failed to load content", err)
		return err
	}

	editors := make([]*Editor, 0, len(docs))
	byKey := make(map[string]*Editor, len(docs))
	for _, doc := range docs {
		ed, err := newEditor(doc, c.labels.For(doc.Key, doc.Title), c.deps)
		if err != nil {
			c.deps.logger.Warn("skipping content document", err, map[string]interface{}{"key": doc.Key})
			continue
		}
		editors = append(editors, ed)
		byKey[doc.Key] = ed
	}

	c.mu.Lock()
	c.editors, c.byKey = editors, byKey
	c.mu.Unlock()

	c.deps.observer.Loaded(len(editors), nil)
	c.deps.logger.Info("content loaded", map[string]interface{}{"documents": len(editors)})
	return nil
}

// Editors returns the editors ordered by key.
func (c *Collection) Editors() []*Editor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Editor, len(c.editors))
	copy(out, c.editors)
	return out
}

func (c *Collection) Editor(key string) (*Editor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if ed, ok := c.byKey[key]; ok {
		return ed, nil
	}
	return nil, ErrNotFound
}

func (c *Collection) Summaries() []Summary {
	editors := c.Editors()
	out := make([]Summary, 0, len(editors))
	for _, ed := range editors {
		out = append(out, ed.Summary())
	}
	return out
}
