package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"hanlove.church/site/pkg/utils/passwords"
)

const userColumns = `id, username, name, email, password, role, title, email_verified, created_at, updated_at, sessions_invalidated_at`

func scanUser(row pgx.Row) (*User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.UserName,
		&i.Name,
		&i.Email,
		&i.Password,
		&i.Role,
		&i.Title,
		&i.EmailVerified,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.SessionsInvalidatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const countUsers = `-- name: CountUsers :one
SELECT count(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countUsers).Scan(&count)
	return count, err
}

const lockAdmins = `-- name: LockAdmins :one
SELECT count(*) FROM (SELECT id FROM users WHERE role = 'admin' FOR UPDATE) AS admins`

// LockAdmins counts the admins and row-locks them until the transaction
// ends, so concurrent demotions or deletions cannot both see a spare admin.
func (q *Queries) LockAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, lockAdmins).Scan(&count)
	return count, err
}

const lockUsersForSignup = `-- name: LockUsersForSignup :exec
LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`

// LockUsersForSignup serializes registrations for the rest of the
// transaction. Readers are not blocked.
func (q *Queries) LockUsersForSignup(ctx context.Context) error {
	_, err := q.db.Exec(ctx, lockUsersForSignup)
	return err
}

const usernameTaken = `-- name: UsernameTaken :one
SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

func (q *Queries) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, usernameTaken, username).Scan(&exists)
	return exists, err
}

const emailRegistered = `-- name: EmailRegistered :one
SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

func (q *Queries) EmailRegistered(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, emailRegistered, email).Scan(&exists)
	return exists, err
}

const emailRegisteredToOther = `-- name: EmailRegisteredToOther :one
SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`

func (q *Queries) EmailRegisteredToOther(ctx context.Context, email string, id pgtype.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, emailRegisteredToOther, email, id).Scan(&exists)
	return exists, err
}

const insertUser = `-- name: insertUser :one
INSERT INTO users (id, username, name, email, password, role, email_verified)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

type insertUserParams struct {
	ID            pgtype.UUID
	UserName      string
	Name          string
	Email         string
	Password      passwords.Password
	Role          UserRole
	EmailVerified bool
}

func (q *Queries) insertUser(ctx context.Context, arg *insertUserParams) (*User, error) {
	row := q.db.QueryRow(ctx, insertUser,
		arg.ID,
		arg.UserName,
		arg.Name,
		arg.Email,
		arg.Password,
		arg.Role,
		arg.EmailVerified,
	)
	return scanUser(row)
}

const selectUserByID = `-- name: SelectUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) SelectUserByID(ctx context.Context, id pgtype.UUID) (*User, error) {
	return scanUser(q.db.QueryRow(ctx, selectUserByID, id))
}

const selectUserByUserName = `-- name: SelectUserByUserName :one
SELECT ` + userColumns + ` FROM users WHERE username = $1`

func (q *Queries) SelectUserByUserName(ctx context.Context, username string) (*User, error) {
	return scanUser(q.db.QueryRow(ctx, selectUserByUserName, username))
}

const selectUserByEmail = `-- name: SelectUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) SelectUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(q.db.QueryRow(ctx, selectUserByEmail, email))
}

const listAllUsers = `-- name: ListAllUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

func (q *Queries) ListAllUsers(ctx context.Context) ([]*User, error) {
	rows, err := q.db.Query(ctx, listAllUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*User{}
	for rows.Next() {
		i, err := scanUser(rows)
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

const updateUserInfo = `-- name: UpdateUserInfo :execrows
UPDATE users SET name = $2, email = $3, updated_at = now() WHERE id = $1`

type UpdateUserInfoParams struct {
	ID    pgtype.UUID
	Name  string
	Email string
}

func (q *Queries) UpdateUserInfo(ctx context.Context, arg *UpdateUserInfoParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateUserInfo, arg.ID, arg.Name, arg.Email)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setUserPassword = `-- name: SetUserPassword :execrows
UPDATE users SET password = $2, updated_at = now() WHERE id = $1`

type SetUserPasswordParams struct {
	ID       pgtype.UUID
	Password passwords.Password
}

func (q *Queries) SetUserPassword(ctx context.Context, arg *SetUserPasswordParams) (int64, error) {
	result, err := q.db.Exec(ctx, setUserPassword, arg.ID, arg.Password)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setUserRole = `-- name: SetUserRole :execrows
UPDATE users SET role = $2, updated_at = now() WHERE id = $1`

type SetUserRoleParams struct {
	ID   pgtype.UUID
	Role UserRole
}

func (q *Queries) SetUserRole(ctx context.Context, arg *SetUserRoleParams) (int64, error) {
	result, err := q.db.Exec(ctx, setUserRole, arg.ID, arg.Role)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setUserTitle = `-- name: SetUserTitle :execrows
UPDATE users SET title = $2, updated_at = now() WHERE id = $1`

type SetUserTitleParams struct {
	ID    pgtype.UUID
	Title pgtype.Text
}

func (q *Queries) SetUserTitle(ctx context.Context, arg *SetUserTitleParams) (int64, error) {
	result, err := q.db.Exec(ctx, setUserTitle, arg.ID, arg.Title)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const invalidateUserSessions = `-- name: InvalidateUserSessions :exec
UPDATE users SET sessions_invalidated_at = now() WHERE id = $1`

func (q *Queries) InvalidateUserSessions(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, invalidateUserSessions, id)
	return err
}

const getSessionInvalidation = `-- name: GetSessionInvalidation :one
SELECT sessions_invalidated_at FROM users WHERE id = $1`

func (q *Queries) GetSessionInvalidation(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
	var at pgtype.Timestamptz
	err := q.db.QueryRow(ctx, getSessionInvalidation, id).Scan(&at)
	return at, err
}

const deleteUser = `-- name: DeleteUser :execrows
DELETE FROM users WHERE id = $1`

func (q *Queries) DeleteUser(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
