package inmemdb

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ecole-ece/vitrine/core/content"
)

var nowFunc = time.Now // mockable

var errKeyExists = errors.New("page key already exists")

type contentRepository struct {
	db *pageTable
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db.page}
}

// copyDoc detaches the stored content from the caller's slice.
func copyDoc(doc content.Document) content.Document {
	doc.Content = append(json.RawMessage(nil), doc.Content...)
	return doc
}

func (repo *contentRepository) ListDocuments(ctx context.Context) ([]content.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	docs := make([]content.Document, 0, len(repo.db.table))
	for _, doc := range repo.db.table {
		docs = append(docs, copyDoc(*doc))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

func (repo *contentRepository) GetDocument(ctx context.Context, key string) (content.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if doc, ok := repo.db.table[key]; ok {
		return copyDoc(*doc), nil
	}
	return content.Document{}, content.ErrNotFound
}

func (repo *contentRepository) ReplaceContent(ctx context.Context, key string, raw json.RawMessage) (time.Time, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	doc, ok := repo.db.table[key]
	if !ok {
		return time.Time{}, content.ErrNotFound
	}
	doc.Content = append(json.RawMessage(nil), raw...)
	doc.UpdatedAt = nowFunc().UTC()
	return doc.UpdatedAt, nil
}

func (repo *contentRepository) CreateDocument(ctx context.Context, doc content.Document) (content.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[doc.Key]; ok {
		return content.Document{}, errors.Wrapf(errKeyExists, "inserting %q", doc.Key)
	}
	now := nowFunc().UTC()
	doc = copyDoc(doc)
	doc.ID = uuid.New().String()
	doc.CreatedAt, doc.UpdatedAt = now, now
	repo.db.table[doc.Key] = &doc
	return copyDoc(doc), nil
}
