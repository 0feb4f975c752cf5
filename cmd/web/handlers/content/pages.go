package content

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/templates"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
)

// GreetingsPage is the content page shown at /greetings.html.
const GreetingsPage = "greetings"

func HandleGreetingsPage(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		page, err := dbc.Queries(ctx).GetContentPage(ctx, GreetingsPage)
		if err != nil && !db.IsNotFound(err) {
			return common.Internal("failed to load content page", err, "page", GreetingsPage)
		}
		return templates.Greetings(viewtypes.NewContentView(page)).Render(ctx, c.Response())
	}
}

func HandleNoticePage(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		posts, err := dbc.Queries(ctx).ListPosts(ctx)
		if err != nil {
			return common.Internal("failed to list posts", err)
		}
		return templates.Notice(summaries(time.Now(), posts, 0)).Render(ctx, c.Response())
	}
}

// HandleAdminRedirect keeps the old /admin.html bookmark working.
func HandleAdminRedirect(adminURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Redirect(http.StatusFound, adminURL)
	}
}
