package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"hanlove.church/site/pkg/utils/markdown"
)

const getContentPage = `-- name: GetContentPage :one
SELECT page_name, title, body, updated_by, updated_at FROM content_pages WHERE page_name = $1`

func (q *Queries) GetContentPage(ctx context.Context, pageName string) (*ContentPage, error) {
	var i ContentPage
	err := q.db.QueryRow(ctx, getContentPage, pageName).Scan(
		&i.PageName,
		&i.Title,
		&i.Body,
		&i.UpdatedBy,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const upsertContentPage = `-- name: UpsertContentPage :one
INSERT INTO content_pages (page_name, title, body, updated_by, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (page_name) DO UPDATE
SET title = EXCLUDED.title, body = EXCLUDED.body, updated_by = EXCLUDED.updated_by, updated_at = now()
RETURNING page_name, title, body, updated_by, updated_at`

type UpsertContentPageParams struct {
	PageName  string
	Title     string
	Body      markdown.Markdown
	UpdatedBy pgtype.UUID
}

func (q *Queries) UpsertContentPage(ctx context.Context, arg *UpsertContentPageParams) (*ContentPage, error) {
	var i ContentPage
	err := q.db.QueryRow(ctx, upsertContentPage,
		arg.PageName,
		arg.Title,
		arg.Body,
		arg.UpdatedBy,
	).Scan(
		&i.PageName,
		&i.Title,
		&i.Body,
		&i.UpdatedBy,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
