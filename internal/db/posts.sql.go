package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const listPosts = `-- name: ListPosts :many
SELECT p.id, p.title, p.content, p.author_id, p.author_name, p.created_at, p.updated_at,
    (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
FROM posts p
ORDER BY p.created_at DESC`

func (q *Queries) ListPosts(ctx context.Context) ([]*Post, error) {
	rows, err := q.db.Query(ctx, listPosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Post{}
	for rows.Next() {
		var i Post
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Content,
			&i.AuthorID,
			&i.AuthorName,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.CommentCount,
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

const getPost = `-- name: GetPost :one
SELECT p.id, p.title, p.content, p.author_id, p.author_name, p.created_at, p.updated_at,
    (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
FROM posts p
WHERE p.id = $1`

func (q *Queries) GetPost(ctx context.Context, id pgtype.UUID) (*Post, error) {
	var i Post
	err := q.db.QueryRow(ctx, getPost, id).Scan(
		&i.ID,
		&i.Title,
		&i.Content,
		&i.AuthorID,
		&i.AuthorName,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const insertPost = `-- name: InsertPost :one
INSERT INTO posts (id, title, content, author_id, author_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, title, content, author_id, author_name, created_at, updated_at`

type InsertPostParams struct {
	ID         pgtype.UUID
	Title      string
	Content    string
	AuthorID   pgtype.UUID
	AuthorName string
}

func (q *Queries) InsertPost(ctx context.Context, arg *InsertPostParams) (*Post, error) {
	var i Post
	err := q.db.QueryRow(ctx, insertPost,
		arg.ID,
		arg.Title,
		arg.Content,
		arg.AuthorID,
		arg.AuthorName,
	).Scan(
		&i.ID,
		&i.Title,
		&i.Content,
		&i.AuthorID,
		&i.AuthorName,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const updatePost = `-- name: UpdatePost :execrows
UPDATE posts SET title = $2, content = $3, updated_at = now() WHERE id = $1`

type UpdatePostParams struct {
	ID      pgtype.UUID
	Title   string
	Content string
}

func (q *Queries) UpdatePost(ctx context.Context, arg *UpdatePostParams) (int64, error) {
	result, err := q.db.Exec(ctx, updatePost, arg.ID, arg.Title, arg.Content)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deletePost = `-- name: DeletePost :execrows
DELETE FROM posts WHERE id = $1`

func (q *Queries) DeletePost(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const commentColumns = `id, post_id, text, author_id, author_name, created_at, updated_at`

func scanComment(row pgx.Row) (*Comment, error) {
	var i Comment
	err := row.Scan(
		&i.ID,
		&i.PostID,
		&i.Text,
		&i.AuthorID,
		&i.AuthorName,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const listCommentsByPost = `-- name: ListCommentsByPost :many
SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at ASC`

func (q *Queries) ListCommentsByPost(ctx context.Context, postID pgtype.UUID) ([]*Comment, error) {
	rows, err := q.db.Query(ctx, listCommentsByPost, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Comment{}
	for rows.Next() {
		i, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getComment = `-- name: GetComment :one
SELECT ` + commentColumns + ` FROM comments WHERE id = $1 AND post_id = $2`

func (q *Queries) GetComment(ctx context.Context, id, postID pgtype.UUID) (*Comment, error) {
	return scanComment(q.db.QueryRow(ctx, getComment, id, postID))
}

const insertComment = `-- name: InsertComment :one
INSERT INTO comments (id, post_id, text, author_id, author_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + commentColumns

type InsertCommentParams struct {
	ID         pgtype.UUID
	PostID     pgtype.UUID
	Text       string
	AuthorID   pgtype.UUID
	AuthorName string
}

func (q *Queries) InsertComment(ctx context.Context, arg *InsertCommentParams) (*Comment, error) {
	return scanComment(q.db.QueryRow(ctx, insertComment,
		arg.ID,
		arg.PostID,
		arg.Text,
		arg.AuthorID,
		arg.AuthorName,
	))
}

const updateComment = `-- name: UpdateComment :execrows
UPDATE comments SET text = $2, updated_at = now() WHERE id = $1`

func (q *Queries) UpdateComment(ctx context.Context, id pgtype.UUID, text string) (int64, error) {
	result, err := q.db.Exec(ctx, updateComment, id, text)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteComment = `-- name: DeleteComment :execrows
DELETE FROM comments WHERE id = $1`

func (q *Queries) DeleteComment(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteComment, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
