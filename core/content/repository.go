package content

import (
	"context"
	"encoding/json"
	"time"
)

// Document is one stored page content row.
type Document struct {
	ID        string          `json:"id"`
	Key       string          `json:"key" yaml:"key" validate:"required,pagekey"`
	Title     string          `json:"title" yaml:"title"`
	Content   json.RawMessage `json:"content" validate:"required"`
	CreatedAt time.Time       `json:"created_at"` // UTC
	UpdatedAt time.Time       `json:"updated_at"` // UTC
}

type (
	// Repository is the document persistence collaborator.
	Repository interface {
		// ListDocuments returns every document ordered by key.
		ListDocuments(ctx context.Context) ([]Document, error)
		GetDocument(ctx context.Context, key string) (Document, error)
		// ReplaceContent overwrites the whole content of the document and returns its new UpdatedAt.
		ReplaceContent(ctx context.Context, key string, content json.RawMessage) (time.Time, error)
		CreateDocument(ctx context.Context, doc Document) (Document, error)
	}

	// Cache stores rendered public pages by key.
	Cache interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, data []byte) error
		Delete(ctx context.Context, key string) error
	}

	// Observer is notified of editor activity (metrics).
	Observer interface {
		Loaded(count int, err error)
		Edited(key string)
		Saved(key string, elapsed time.Duration, err error)
	}
)

type nopObserver struct{}

func (nopObserver) Loaded(int, error)                  {}
func (nopObserver) Edited(string)                      {}
func (nopObserver) Saved(string, time.Duration, error) {}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nopCache) Set(context.Context, string, []byte) error         { return nil }
func (nopCache) Delete(context.Context, string) error              { return nil }
