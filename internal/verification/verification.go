// Package verification issues the six-digit codes mailed during sign-up and
// password recovery. Codes are kept server side and consumed on success.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// TTL is how long a mailed code stays valid.
const TTL = 5 * time.Minute

// MaxAttempts is how many wrong guesses a code survives. The last one
// discards it and the member has to request a new code.
const MaxAttempts = 5

type Purpose string

const (
	PurposeSignup        Purpose = "signup"
	PurposeResetPassword Purpose = "reset-password"
)

var (
	ErrNoCode   = errors.New("no verification code was requested")
	ErrExpired  = errors.New("verification code expired")
	ErrMismatch = errors.New("verification code does not match")
	// ErrTooManyAttempts means the code was discarded after MaxAttempts
	// wrong guesses.
	ErrTooManyAttempts = errors.New("too many wrong verification codes")
)

// Store keeps at most one code per purpose and subject.
type Store interface {
	Save(ctx context.Context, purpose Purpose, subject, code string, ttl time.Duration) error
	// Load returns ErrNoCode when nothing was saved and ErrExpired when the
	// code outlived its TTL.
	Load(ctx context.Context, purpose Purpose, subject string) (string, error)
	// Miss records a wrong guess against the current code and returns the
	// number of misses so far. Save resets the count and Delete drops it.
	Miss(ctx context.Context, purpose Purpose, subject string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, purpose Purpose, subject string) error
}

// NewCode returns a random code in 100000..999999.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Service pairs a Store with code generation and checking.
type Service struct {
	store Store
	ttl   time.Duration
}

func NewService(store Store) *Service {
	return &Service{store: store, ttl: TTL}
}

// Issue creates and stores a fresh code for subject, replacing any earlier one.
func (s *Service) Issue(ctx context.Context, purpose Purpose, subject string) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, purpose, subject, code, s.ttl); err != nil {
		return "", fmt.Errorf("save verification code: %w", err)
	}
	return code, nil
}

// Check compares code with the stored one and consumes it on a match. After
// MaxAttempts misses the code is deleted and ErrTooManyAttempts returned.
func (s *Service) Check(ctx context.Context, purpose Purpose, subject, code string) error {
	stored, err := s.store.Load(ctx, purpose, subject)
	if err != nil {
		if errors.Is(err, ErrExpired) {
			_ = s.store.Delete(ctx, purpose, subject)
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		misses, err := s.store.Miss(ctx, purpose, subject, s.ttl)
		if err != nil {
			return fmt.Errorf("record verification miss: %w", err)
		}
		if misses >= MaxAttempts {
			if err := s.store.Delete(ctx, purpose, subject); err != nil {
				return fmt.Errorf("discard verification code: %w", err)
			}
			return ErrTooManyAttempts
		}
		return ErrMismatch
	}
	return s.store.Delete(ctx, purpose, subject)
}

func key(purpose Purpose, subject string) string {
	return "verification:" + string(purpose) + ":" + subject
}

func missKey(purpose Purpose, subject string) string {
	return key(purpose, subject) + ":misses"
}
