package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
)

func HandleLogout(sm *webauth.SessionManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := sm.ClearSession(c.Response().Writer, c.Request()); err != nil {
			return common.Internal("failed to clear session", err)
		}
		return common.JSONMessage(c, http.StatusOK, "logged out")
	}
}

// HandleLogoutRedirect serves the nav bar's plain link.
func HandleLogoutRedirect(sm *webauth.SessionManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		_ = sm.ClearSession(c.Response().Writer, c.Request())
		return c.Redirect(http.StatusFound, "/")
	}
}
