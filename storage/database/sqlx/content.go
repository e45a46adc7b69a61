package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
)

const (
	selectPages = `SELECT id, page_key, title, content, created_at, updated_at FROM page_content`

	updatePageContent = `UPDATE page_content SET content = $1, updated_at = $2 WHERE page_key = $3 RETURNING updated_at`

	insertPage = `INSERT INTO page_content (id, page_key, title, content, created_at, updated_at)
		VALUES (:id, :page_key, :title, :content, :created_at, :updated_at)`
)

var nowFunc = time.Now // mockable

type pageRow struct {
	ID        string         `db:"id"`
	PageKey   string         `db:"page_key"`
	Title     string         `db:"title"`
	Content   types.JSONText `db:"content"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row pageRow) document() content.Document {
	return content.Document{
		ID:        row.ID,
		Key:       row.PageKey,
		Title:     row.Title,
		Content:   json.RawMessage(row.Content),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

// NewContentRepository wraps db (opened with the "postgres" driver) with sqlx.
func NewContentRepository(db *sql.DB) *contentRepository {
	return &contentRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo contentRepository) ListDocuments(ctx context.Context) ([]content.Document, error) {
	var rows []pageRow
	if err := repo.db.SelectContext(ctx, &rows, selectPages+` ORDER BY page_key`); err != nil {
		return nil, core.WrapDBErr(err, "querying page content")
	}

	docs := make([]content.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.document())
	}
	return docs, nil
}

func (repo contentRepository) GetDocument(ctx context.Context, key string) (content.Document, error) {
	var row pageRow
	if err := repo.db.GetContext(ctx, &row, selectPages+` WHERE page_key = $1`, key); err != nil {
		if err == sql.ErrNoRows {
			return content.Document{}, content.ErrNotFound
		}
		return content.Document{}, core.WrapDBErr(err, "getting page content")
	}
	return row.document(), nil
}

func (repo contentRepository) ReplaceContent(ctx context.Context, key string, raw json.RawMessage) (time.Time, error) {
	var updatedAt time.Time
	err := repo.db.QueryRowxContext(ctx, updatePageContent, types.JSONText(raw), nowFunc().UTC(), key).Scan(&updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, content.ErrNotFound
		}
		return time.Time{}, core.WrapDBErr(err, "updating page content")
	}
	return updatedAt.UTC(), nil
}

func (repo contentRepository) CreateDocument(ctx context.Context, doc content.Document) (content.Document, error) {
	now := nowFunc().UTC()
	row := pageRow{
		ID:        uuid.New().String(),
		PageKey:   doc.Key,
		Title:     doc.Title,
		Content:   types.JSONText(doc.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := repo.db.NamedExecContext(ctx, insertPage, row); err != nil {
		return content.Document{}, core.WrapDBErr(err, "inserting page content")
	}
	return row.document(), nil
}
