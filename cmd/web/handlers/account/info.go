package account

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
)

type infoResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Title    string `json:"title"`
}

func HandleInfo(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		user, err := dbc.Queries(ctx).SelectUserByID(ctx, userID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.ErrNotFound("user not found")
			}
			return common.Internal("failed to load user", err)
		}

		return c.JSON(http.StatusOK, infoResponse{
			Username: user.UserName,
			Name:     user.Name,
			Email:    user.Email,
			Role:     string(user.Role),
			Title:    user.Title.String,
		})
	}
}
