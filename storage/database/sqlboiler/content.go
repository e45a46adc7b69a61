package boiledrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/types"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
)

const pageColumns = `"id", "page_key", "title", "content", "created_at", "updated_at"`

var nowFunc = time.Now // mockable

// pageContent is a page_content row.
type pageContent struct {
	ID        string      `boil:"id"`
	PageKey   string      `boil:"page_key"`
	Title     null.String `boil:"title"`
	Content   types.JSON  `boil:"content"`
	CreatedAt null.Time   `boil:"created_at"`
	UpdatedAt null.Time   `boil:"updated_at"`
}

type updatedRow struct {
	UpdatedAt time.Time `boil:"updated_at"`
}

type contentRepository struct {
	exec core.DBExecutor
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(exec core.DBExecutor) *contentRepository {
	return &contentRepository{exec: exec}
}

func (repo contentRepository) unboil(row *pageContent) content.Document {
	return content.Document{
		ID:        row.ID,
		Key:       row.PageKey,
		Title:     row.Title.String,
		Content:   json.RawMessage(row.Content),
		CreatedAt: row.CreatedAt.Time.UTC(),
		UpdatedAt: row.UpdatedAt.Time.UTC(),
	}
}

// trapNoRowsErr maps psql "no rows" err to content.ErrNotFound
func (repo contentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return content.ErrNotFound
	}
	return core.WrapDBErr(err, msg)
}

func (repo contentRepository) ListDocuments(ctx context.Context) ([]content.Document, error) {
	var rows []*pageContent
	q := queries.Raw(`SELECT ` + pageColumns + ` FROM "page_content" ORDER BY "page_key"`)
	if err := q.Bind(ctx, repo.exec, &rows); err != nil {
		return nil, core.WrapDBErr(err, "querying page content")
	}

	docs := make([]content.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, repo.unboil(row))
	}
	return docs, nil
}

func (repo contentRepository) GetDocument(ctx context.Context, key string) (content.Document, error) {
	row := new(pageContent)
	q := queries.Raw(`SELECT `+pageColumns+` FROM "page_content" WHERE "page_key" = $1`, key)
	if err := q.Bind(ctx, repo.exec, row); err != nil {
		return content.Document{}, repo.trapNoRowsErr(err, "getting page content")
	}
	return repo.unboil(row), nil
}

func (repo contentRepository) ReplaceContent(ctx context.Context, key string, raw json.RawMessage) (time.Time, error) {
	var row updatedRow
	q := queries.Raw(
		`UPDATE "page_content" SET "content" = $1, "updated_at" = $2 WHERE "page_key" = $3 RETURNING "updated_at"`,
		types.JSON(raw), nowFunc().UTC(), key,
	)
	if err := q.Bind(ctx, repo.exec, &row); err != nil {
		return time.Time{}, repo.trapNoRowsErr(err, "updating page content")
	}
	return row.UpdatedAt.UTC(), nil
}

func (repo contentRepository) CreateDocument(ctx context.Context, doc content.Document) (content.Document, error) {
	now := nowFunc().UTC()
	row := &pageContent{
		ID:        uuid.New().String(),
		PageKey:   doc.Key,
		Title:     null.NewString(doc.Title, doc.Title != ""),
		Content:   types.JSON(doc.Content),
		CreatedAt: null.TimeFrom(now),
		UpdatedAt: null.TimeFrom(now),
	}

	q := queries.Raw(
		`INSERT INTO "page_content" (`+pageColumns+`) VALUES ($1, $2, COALESCE($3, ''), $4, $5, $6)`,
		row.ID, row.PageKey, row.Title, row.Content, row.CreatedAt, row.UpdatedAt,
	)
	if _, err := q.ExecContext(ctx, repo.exec); err != nil {
		return content.Document{}, core.WrapDBErr(err, "inserting page content")
	}
	return repo.unboil(row), nil
}
