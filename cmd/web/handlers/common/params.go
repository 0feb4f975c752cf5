package common

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/auth"
)

// RequireUUIDParam extracts a UUID route parameter. A malformed id cannot
// name an existing row, so it is reported as 404 with msg.
func RequireUUIDParam(c echo.Context, param, msg string) (pgtype.UUID, error) {
	var u pgtype.UUID
	if err := u.Scan(c.Param(param)); err != nil {
		return u, ErrNotFound(msg)
	}
	return u, nil
}

// RequireSessionUser returns the validated member of the request and their id.
// Returns 401 if not authenticated, 500 if the session user ID is corrupt.
func RequireSessionUser(c echo.Context) (*auth.SessionUser, pgtype.UUID, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, pgtype.UUID{}, ErrUnauthorized()
	}
	var u pgtype.UUID
	if err := u.Scan(user.ID); err != nil {
		return nil, pgtype.UUID{}, echo.NewHTTPError(http.StatusInternalServerError, "invalid session")
	}
	return user, u, nil
}

// IDString renders a UUID for JSON, "" when null.
func IDString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return u.String()
}

// RequireAdminUser is RequireSessionUser plus a 403 for non-admins.
func RequireAdminUser(c echo.Context) (*auth.SessionUser, pgtype.UUID, error) {
	user, id, err := RequireSessionUser(c)
	if err != nil {
		return nil, id, err
	}
	if !user.IsAdmin() {
		return nil, id, ErrForbidden("admin only")
	}
	return user, id, nil
}
