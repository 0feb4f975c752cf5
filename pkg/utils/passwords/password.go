// Package passwords hashes member passwords with argon2id. Hashes carried
// over from the previous site are bcrypt; those still verify and are flagged
// for rehashing on the next successful login.
package passwords

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

type Password string

var (
	params = &argon2id.Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: uint8(2),
		SaltLength:  16,
		KeyLength:   32,
	}

	validate = validator.New()
)

const (
	// MinPasswordLength is the minimum password length
	MinPasswordLength = 8
	// MaxPasswordLength is the maximum password length
	MaxPasswordLength = 512
)

var (
	ErrInvalidPassword = errors.New("password must be between 8 and 512 characters")
	ErrUnknownHash     = errors.New("unrecognized password hash format")
)

// PasswordInput is a struct for validating password inputs
type PasswordInput struct {
	Password string `validate:"required,min=8,max=512"`
}

// NewPassword creates a new password hash, while enforcing the length rules.
func NewPassword(input PasswordInput) (Password, error) {
	if err := validate.Struct(input); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}

	hash, err := argon2id.CreateHash(input.Password, params)
	if err != nil {
		return "", err
	}

	return Password(hash), nil
}

// ComparePasswordAndHash compares the input to the password hash.
func (p *Password) ComparePasswordAndHash(input PasswordInput) (bool, error) {
	switch {
	case IsArgonEncoded(string(*p)):
		return argon2id.ComparePasswordAndHash(input.Password, string(*p))
	case IsBcryptEncoded(string(*p)):
		err := bcrypt.CompareHashAndPassword([]byte(*p), []byte(input.Password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	default:
		return false, ErrUnknownHash
	}
}

// NeedsRehash reports whether the hash predates argon2id.
func (p Password) NeedsRehash() bool {
	return !IsArgonEncoded(string(p))
}

// String returns the string representation of the password
func (p *Password) String() string {
	return string(*p)
}

// Scan implements database/sql.Scanner.
func (p *Password) Scan(src any) error {
	if src == nil {
		*p = ""
		return nil
	}

	switch v := src.(type) {
	case string:
		*p = Password(v)
		return nil
	case []byte:
		*p = Password(string(v))
		return nil
	default:
		return fmt.Errorf("passwords.Password.Scan: expected string or []byte, got %T", src)
	}
}

// Value implements driver.Valuer.
func (p Password) Value() (driver.Value, error) {
	return string(p), nil
}

// ScanText implements the pgtype.TextScanner interface for pgx v5.
func (p *Password) ScanText(v pgtype.Text) error {
	if !v.Valid {
		*p = ""
		return nil
	}
	*p = Password(v.String)
	return nil
}

// TextValue implements the pgtype.TextValuer interface for pgx v5.
func (p Password) TextValue() (pgtype.Text, error) {
	return pgtype.Text{String: string(p), Valid: true}, nil
}

// IsArgonEncoded returns true if the input is an argon2id hash
func IsArgonEncoded(input string) bool {
	return strings.HasPrefix(input, "$argon2id$")
}

// IsBcryptEncoded returns true for $2a$, $2b$ and $2y$ hashes.
func IsBcryptEncoded(input string) bool {
	return strings.HasPrefix(input, "$2a$") || strings.HasPrefix(input, "$2b$") || strings.HasPrefix(input, "$2y$")
}
