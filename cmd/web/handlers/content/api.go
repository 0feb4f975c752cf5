package content

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
)

func HandleContent(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("pageName")
		if common.Blank(name) {
			return common.ErrNotFound("content not found")
		}

		ctx := c.Request().Context()
		page, err := dbc.Queries(ctx).GetContentPage(ctx, name)
		if err != nil {
			if db.IsNotFound(err) {
				return common.ErrNotFound("content not found")
			}
			return common.Internal("failed to load content page", err, "page", name)
		}
		return c.JSON(http.StatusOK, viewtypes.NewContentJSON(page))
	}
}
