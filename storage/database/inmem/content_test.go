package inmemdb

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ecole-ece/vitrine/core/content"
)

func TestContentRepository(t *testing.T) {
	db, _ := Open()
	repo := NewContentRepository(db)
	ctx := context.Background()

	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	for _, key := range []string{"home", "about"} {
		if _, err := repo.CreateDocument(ctx, content.Document{Key: key, Content: json.RawMessage(`{"title":"x"}`)}); err != nil {
			t.Fatalf("CreateDocument(%s) error = %v", key, err)
		}
	}
	if _, err := repo.CreateDocument(ctx, content.Document{Key: "home"}); err == nil {
		t.Error("CreateDocument() accepted a duplicate key")
	}

	docs, err := repo.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 || docs[0].Key != "about" || docs[1].Key != "home" || docs[0].ID == "" {
		t.Errorf("ListDocuments() = %+v", docs)
	}

	// returned documents do not alias the stored ones
	docs[1].Content[2] = 'X'
	now = now.Add(time.Hour)
	updatedAt, err := repo.ReplaceContent(ctx, "home", json.RawMessage(`{"title":"y"}`))
	if err != nil {
		t.Fatalf("ReplaceContent() error = %v", err)
	}
	if !updatedAt.Equal(now) {
		t.Errorf("ReplaceContent() = %v, want %v", updatedAt, now)
	}

	doc, err := repo.GetDocument(ctx, "home")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if string(doc.Content) != `{"title":"y"}` || !doc.UpdatedAt.Equal(now) || doc.CreatedAt.Equal(now) {
		t.Errorf("GetDocument() = %+v", doc)
	}

	if _, err = repo.GetDocument(ctx, "gallery"); err != content.ErrNotFound {
		t.Errorf("GetDocument() error = %v, wantErr %v", err, content.ErrNotFound)
	}
	if _, err = repo.ReplaceContent(ctx, "gallery", nil); err != content.ErrNotFound {
		t.Errorf("ReplaceContent() error = %v, wantErr %v", err, content.ErrNotFound)
	}
}
