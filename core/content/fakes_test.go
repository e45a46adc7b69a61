package content

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

var errStore = errorString("connection refused")

type errorString string

func (e errorString) Error() string { return string(e) }

// fakeRepo is a map backed Repository with injectable failures.
type fakeRepo struct {
	mu         sync.Mutex
	docs       map[string]Document
	listErr    error
	getErr     error
	replaceErr error
	onReplace  func() // called before a replace is applied
	replaced   int
}

func newFakeRepo(docs ...Document) *fakeRepo {
	r := &fakeRepo{docs: make(map[string]Document)}
	for _, doc := range docs {
		r.docs[doc.Key] = doc
	}
	return r
}

func (r *fakeRepo) ListDocuments(context.Context) ([]Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	docs := make([]Document, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

func (r *fakeRepo) GetDocument(_ context.Context, key string) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return Document{}, r.getErr
	}
	doc, ok := r.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *fakeRepo) ReplaceContent(_ context.Context, key string, content json.RawMessage) (time.Time, error) {
	if r.onReplace != nil {
		r.onReplace()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return time.Time{}, r.replaceErr
	}
	doc, ok := r.docs[key]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	doc.Content = append(json.RawMessage(nil), content...)
	doc.UpdatedAt = doc.UpdatedAt.Add(time.Minute)
	r.docs[key] = doc
	r.replaced++
	return doc.UpdatedAt, nil
}

func (r *fakeRepo) CreateDocument(_ context.Context, doc Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.Key] = doc
	return doc, nil
}

func (r *fakeRepo) content(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.docs[key].Content)
}

func (r *fakeRepo) setContent(key, raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.docs[key]
	doc.Content = json.RawMessage(raw)
	r.docs[key] = doc
}

// memCache records invalidations.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	getErr  error
	onSet   func() // called before a page is stored
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	data, ok := c.data[key]
	return data, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte) error {
	if c.onSet != nil {
		c.onSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// countObserver counts notifications.
type countObserver struct {
	mu       sync.Mutex
	loads    int
	loadErrs int
	edits    int
	saves    int
	saveErrs int
}

func (o *countObserver) Loaded(_ int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loads++
	if err != nil {
		o.loadErrs++
	}
}

func (o *countObserver) Edited(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.edits++
}

func (o *countObserver) Saved(_ string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saves++
	if err != nil {
		o.saveErrs++
	}
}

func testDoc(key, raw string) Document {
	ts := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	return Document{ID: key + "-id", Key: key, Title: key, Content: json.RawMessage(raw), CreatedAt: ts, UpdatedAt: ts}
}
