package admin

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/markdown"
)

type contentUpdateRequest struct {
	PageName string `json:"pageName" validate:"notblank"`
	Title    string `json:"title" validate:"notblank"`
	Content  string `json:"content" validate:"notblank"`
}

type contentUpdateResponse struct {
	Message string                `json:"message"`
	Page    viewtypes.ContentJSON `json:"page"`
}

func HandleContentUpdate(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body contentUpdateRequest
		if err := common.BindAndValidate(c, &body, "all fields are required"); err != nil {
			return err
		}

		ctx := c.Request().Context()
		page, err := dbc.Queries(ctx).UpsertContentPage(ctx, &db.UpsertContentPageParams{
			PageName:  strings.TrimSpace(body.PageName),
			Title:     strings.TrimSpace(body.Title),
			Body:      *markdown.New(body.Content),
			UpdatedBy: currentUserUUID(c),
		})
		if err != nil {
			return common.Internal("failed to save content page", err)
		}
		return c.JSON(http.StatusOK, contentUpdateResponse{
			Message: "content saved",
			Page:    viewtypes.NewContentJSON(page),
		})
	}
}
