package db

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"hanlove.church/site/pkg/utils/markdown"
	"hanlove.church/site/pkg/utils/passwords"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (e *UserRole) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = UserRole(s)
	case string:
		*e = UserRole(s)
	default:
		return fmt.Errorf("unsupported scan type for UserRole: %T", src)
	}
	return nil
}

// Valid reports whether e is one of the declared roles.
func (e UserRole) Valid() bool {
	switch e {
	case UserRoleUser, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                    pgtype.UUID
	UserName              string
	Name                  string
	Email                 string
	Password              passwords.Password
	Role                  UserRole
	Title                 pgtype.Text
	EmailVerified         bool
	CreatedAt             pgtype.Timestamptz
	UpdatedAt             pgtype.Timestamptz
	SessionsInvalidatedAt pgtype.Timestamptz
}

type Title struct {
	Title     string
	CreatedAt pgtype.Timestamptz
}

type InstanceSetting struct {
	RegistrationEnabled bool
	UpdatedAt           pgtype.Timestamptz
}

type Post struct {
	ID           pgtype.UUID
	Title        string
	Content      string
	AuthorID     pgtype.UUID
	AuthorName   string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
	CommentCount int64
}

type Comment struct {
	ID         pgtype.UUID
	PostID     pgtype.UUID
	Text       string
	AuthorID   pgtype.UUID
	AuthorName string
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

type Sermon struct {
	ID         pgtype.UUID
	Filename   string
	ImageURL   string
	StorageKey string
	SizeBytes  int64
	UploaderID pgtype.UUID
	UploadedAt pgtype.Timestamptz
}

type ContentPage struct {
	PageName  string
	Title     string
	Body      markdown.Markdown
	UpdatedBy pgtype.UUID
	UpdatedAt pgtype.Timestamptz
}
