package admin

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
)

const (
	currentUserKey     = "currentUser"
	currentUserUUIDKey = "currentUserUUID"
)

// RequireAdmin guards the admin site and must run after the session
// middleware. Anonymous visitors opening the dashboard are sent to the login
// page; every other request gets a 403.
func RequireAdmin(dashboardPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := auth.CurrentUser(c)
			if !ok {
				req := c.Request()
				if req.Method == http.MethodGet && req.URL.Path == dashboardPath {
					return c.Redirect(http.StatusFound, "/login.html")
				}
				return common.ErrForbidden("admin only")
			}
			if !user.IsAdmin() {
				return common.ErrForbidden("admin only")
			}

			var userUUID pgtype.UUID
			if err := userUUID.Scan(user.ID); err != nil {
				return common.ErrInternal("invalid session")
			}
			c.Set(currentUserKey, user)
			c.Set(currentUserUUIDKey, userUUID)
			return next(c)
		}
	}
}

func currentUserUUID(c echo.Context) pgtype.UUID {
	id, _ := c.Get(currentUserUUIDKey).(pgtype.UUID)
	return id
}

func currentUsername(c echo.Context) string {
	if u, ok := c.Get(currentUserKey).(*auth.SessionUser); ok {
		return u.Username
	}
	return ""
}

// targetID parses the "_id" field of admin request bodies.
func targetID(raw string) (pgtype.UUID, error) {
	if common.Blank(raw) {
		return pgtype.UUID{}, common.ErrBadRequest("user id is required")
	}
	var id pgtype.UUID
	if err := id.Scan(raw); err != nil {
		return id, common.ErrNotFound("user not found")
	}
	return id, nil
}
