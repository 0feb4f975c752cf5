package db

import (
	"context"
)

const listTitles = `-- name: ListTitles :many
SELECT title, created_at FROM titles ORDER BY created_at ASC, title ASC`

func (q *Queries) ListTitles(ctx context.Context) ([]*Title, error) {
	rows, err := q.db.Query(ctx, listTitles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Title{}
	for rows.Next() {
		var i Title
		if err := rows.Scan(&i.Title, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTitle = `-- name: InsertTitle :one
INSERT INTO titles (title) VALUES ($1)
RETURNING title, created_at`

func (q *Queries) InsertTitle(ctx context.Context, title string) (*Title, error) {
	var i Title
	err := q.db.QueryRow(ctx, insertTitle, title).Scan(&i.Title, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const deleteTitle = `-- name: DeleteTitle :execrows
DELETE FROM titles WHERE title = $1`

// DeleteTitle removes a title; users holding it have their title cleared by
// the foreign key's ON DELETE SET NULL.
func (q *Queries) DeleteTitle(ctx context.Context, title string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteTitle, title)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
