package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listSermons = `-- name: ListSermons :many
SELECT id, filename, image_url, storage_key, size_bytes, uploader_id, uploaded_at
FROM sermons ORDER BY uploaded_at DESC`

func (q *Queries) ListSermons(ctx context.Context) ([]*Sermon, error) {
	rows, err := q.db.Query(ctx, listSermons)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Sermon{}
	for rows.Next() {
		var i Sermon
		if err := rows.Scan(
			&i.ID,
			&i.Filename,
			&i.ImageURL,
			&i.StorageKey,
			&i.SizeBytes,
			&i.UploaderID,
			&i.UploadedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertSermon = `-- name: InsertSermon :one
INSERT INTO sermons (id, filename, image_url, storage_key, size_bytes, uploader_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, filename, image_url, storage_key, size_bytes, uploader_id, uploaded_at`

type InsertSermonParams struct {
	ID         pgtype.UUID
	Filename   string
	ImageURL   string
	StorageKey string
	SizeBytes  int64
	UploaderID pgtype.UUID
}

func (q *Queries) InsertSermon(ctx context.Context, arg *InsertSermonParams) (*Sermon, error) {
	var i Sermon
	err := q.db.QueryRow(ctx, insertSermon,
		arg.ID,
		arg.Filename,
		arg.ImageURL,
		arg.StorageKey,
		arg.SizeBytes,
		arg.UploaderID,
	).Scan(
		&i.ID,
		&i.Filename,
		&i.ImageURL,
		&i.StorageKey,
		&i.SizeBytes,
		&i.UploaderID,
		&i.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
