package db

import (
	"context"

	"hanlove.church/site/pkg/utils/identity"
	"hanlove.church/site/pkg/utils/passwords"
)

// NewUserParams contains the parameters for creating a new user
type NewUserParams struct {
	Username      string
	Name          string
	Email         string
	Password      string // plaintext password
	Role          UserRole
	EmailVerified bool
}

// NewUser hashes the password, folds the identifiers and inserts the user.
func (q *Queries) NewUser(ctx context.Context, params NewUserParams) (*User, error) {
	hashedPassword, err := passwords.NewPassword(passwords.PasswordInput{
		Password: params.Password,
	})
	if err != nil {
		return nil, err
	}

	role := params.Role
	if role == "" {
		role = UserRoleUser
	}

	return q.insertUser(ctx, &insertUserParams{
		ID:            NewID(),
		UserName:      identity.Username(params.Username),
		Name:          identity.DisplayName(params.Name),
		Email:         identity.Email(params.Email),
		Password:      hashedPassword,
		Role:          role,
		EmailVerified: params.EmailVerified,
	})
}

// SelectUserByLogin looks the user up by email when login looks like one and
// by username otherwise.
func (q *Queries) SelectUserByLogin(ctx context.Context, login string) (*User, error) {
	if identity.LooksLikeEmail(login) {
		return q.SelectUserByEmail(ctx, identity.Email(login))
	}
	return q.SelectUserByUserName(ctx, identity.Username(login))
}
