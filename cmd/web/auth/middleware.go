package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/ctxkeys"
	"hanlove.church/site/internal/db"
)

// RevocationLookup returns when a member's sessions were last revoked.
// pgx.ErrNoRows means the member no longer exists.
type RevocationLookup func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error)

// DBRevocations reads users.sessions_invalidated_at.
func DBRevocations(dbc *db.DatabaseConnection) RevocationLookup {
	return func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return dbc.Queries(ctx).GetSessionInvalidation(ctx, id)
	}
}

// WithUser stores the validated member on ctx.
func WithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, ctxkeys.SessionUser, u)
}

// UserFromContext returns the member stored by Middleware.
func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(ctxkeys.SessionUser).(*SessionUser)
	return u, ok && u != nil
}

// CurrentUser is UserFromContext for the request behind c.
func CurrentUser(c echo.Context) (*SessionUser, bool) {
	return UserFromContext(c.Request().Context())
}

// Middleware resolves the signed-in member once per request and stores it on
// the request context; handlers read it from there, never from the cookie.
// Sessions of deleted members, and sessions older than the member's last
// revocation, are cleared. When the lookup itself fails the request is
// served anonymously and the cookie is kept.
func (sm *SessionManager) Middleware(lookup RevocationLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := sm.GetSession(c.Request())
			if err == nil {
				if user = sm.validate(c, lookup, user); user != nil {
					c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), user)))
				}
			}
			return next(c)
		}
	}
}

func (sm *SessionManager) validate(c echo.Context, lookup RevocationLookup, user *SessionUser) *SessionUser {
	req := c.Request()
	clear := func(reason string) *SessionUser {
		slog.Info("session cleared", "user_id", user.ID, "reason", reason)
		if err := sm.ClearSession(c.Response().Writer, req); err != nil {
			slog.Warn("failed to clear session", "error", err)
		}
		return nil
	}

	var uid pgtype.UUID
	if err := uid.Scan(user.ID); err != nil {
		return clear("malformed user id")
	}
	revokedAt, err := lookup(req.Context(), uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return clear("member deleted")
		}
		slog.Warn("session revocation check failed", "user_id", user.ID, "error", err)
		return nil
	}
	// Both sides carry microseconds, the precision of timestamptz.
	if revokedAt.Valid && !user.CreatedAt.IsZero() && revokedAt.Time.After(user.CreatedAt) {
		return clear("sessions revoked")
	}
	return user
}
