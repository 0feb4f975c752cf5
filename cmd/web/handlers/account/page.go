package account

import (
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/templates"
)

func HandleMyPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := webauth.CurrentUser(c); !ok {
			return c.Redirect(http.StatusFound, "/login.html")
		}
		return templates.MyPage().Render(c.Request().Context(), c.Response())
	}
}
