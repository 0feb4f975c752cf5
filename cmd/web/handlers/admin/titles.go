package admin

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
)

type titleRequest struct {
	Title string `json:"title" validate:"notblank"`
}

func bindTitle(c echo.Context) (string, error) {
	var body titleRequest
	if err := common.BindAndValidate(c, &body, "title is required"); err != nil {
		return "", err
	}
	return strings.TrimSpace(body.Title), nil
}

func HandleTitles(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		titles, err := dbc.Queries(ctx).ListTitles(ctx)
		if err != nil {
			return common.Internal("failed to list titles", err)
		}
		out := make([]string, 0, len(titles))
		for _, t := range titles {
			out = append(out, t.Title)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func HandleTitleAdd(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		title, err := bindTitle(c)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		if _, err := dbc.Queries(ctx).InsertTitle(ctx, title); err != nil {
			if db.IsUniqueViolation(err) {
				return common.ErrConflict("title already exists")
			}
			return common.Internal("failed to add title", err)
		}
		return common.JSONMessage(c, http.StatusCreated, "title added")
	}
}

// HandleTitleDelete removes a title; members holding it lose it.
func HandleTitleDelete(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		title, err := bindTitle(c)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		n, err := dbc.Queries(ctx).DeleteTitle(ctx, title)
		if err != nil {
			return common.Internal("failed to delete title", err)
		}
		if n == 0 {
			return common.ErrNotFound("title not found")
		}
		return common.JSONMessage(c, http.StatusOK, "title deleted")
	}
}
