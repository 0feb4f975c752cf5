package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
)

type statusResponse struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	Username   string `json:"username,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
}

func HandleStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := webauth.CurrentUser(c)
		if !ok {
			return c.JSON(http.StatusOK, statusResponse{})
		}
		return c.JSON(http.StatusOK, statusResponse{
			IsLoggedIn: true,
			Username:   user.Username,
			Name:       user.Name,
			Role:       string(user.AccessLevel),
		})
	}
}
