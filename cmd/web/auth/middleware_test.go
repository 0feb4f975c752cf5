package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const memberID = "0190a5d4-5f0e-7b8a-9c1d-2e3f4a5b6c7d"

func memberCookie(t *testing.T, sm *SessionManager) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.SaveSession(rr, req, SessionUser{ID: memberID, Username: "alice", AccessLevel: AccessUser}))
	return sessionCookie(t, rr)
}

// serveWhoami runs one request through Middleware and reports who the
// downstream handler saw.
func serveWhoami(t *testing.T, sm *SessionManager, lookup RevocationLookup, cookie *http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	e.Use(sm.Middleware(lookup))

	var seen string
	e.GET("/whoami", func(c echo.Context) error {
		if u, ok := CurrentUser(c); ok {
			seen = u.Username
		}
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	return rec, seen
}

func clearedCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestMiddleware_ValidSession(t *testing.T) {
	sm := NewSessionManager("test-secret")
	lookup := func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{}, nil
	}

	rec, seen := serveWhoami(t, sm, lookup, memberCookie(t, sm))
	require.Equal(t, "alice", seen)
	require.False(t, clearedCookie(rec))
}

func TestMiddleware_Anonymous(t *testing.T) {
	sm := NewSessionManager("test-secret")
	called := false
	lookup := func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		called = true
		return pgtype.Timestamptz{}, nil
	}

	_, seen := serveWhoami(t, sm, lookup, nil)
	require.Empty(t, seen)
	require.False(t, called)
}

func TestMiddleware_DeletedMemberIsSignedOut(t *testing.T) {
	sm := NewSessionManager("test-secret")
	lookup := func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{}, pgx.ErrNoRows
	}

	rec, seen := serveWhoami(t, sm, lookup, memberCookie(t, sm))
	require.Empty(t, seen)
	require.True(t, clearedCookie(rec))
}

func TestMiddleware_RevokedSessionIsSignedOut(t *testing.T) {
	sm := NewSessionManager("test-secret")
	lookup := func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{Time: time.Now().Add(time.Hour), Valid: true}, nil
	}

	rec, seen := serveWhoami(t, sm, lookup, memberCookie(t, sm))
	require.Empty(t, seen)
	require.True(t, clearedCookie(rec))
}

func TestMiddleware_LookupFailureServesAnonymously(t *testing.T) {
	sm := NewSessionManager("test-secret")
	lookup := func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{}, errors.New("connection refused")
	}

	rec, seen := serveWhoami(t, sm, lookup, memberCookie(t, sm))
	require.Empty(t, seen, "a member whose session could not be checked must not be served as signed in")
	require.False(t, clearedCookie(rec), "the cookie survives a transient database failure")
}
