package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/templates"
	"hanlove.church/site/internal/db"
)

func HandleLoginPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := webauth.CurrentUser(c); ok {
			return c.Redirect(http.StatusFound, "/")
		}
		return templates.Login().Render(c.Request().Context(), c.Response())
	}
}

func HandleRegisterPage(sc *db.SettingsCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := webauth.CurrentUser(c); ok {
			return c.Redirect(http.StatusFound, "/")
		}
		return templates.Register(!sc.Get().RegistrationEnabled).Render(c.Request().Context(), c.Response())
	}
}

func HandleFindPasswordPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return templates.FindPassword().Render(c.Request().Context(), c.Response())
	}
}
