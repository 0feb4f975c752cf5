package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/passwords"
)

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"notblank"`
}

var errBadCredentials = echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")

// HandleLogin accepts a username or an email address.
func HandleLogin(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body loginRequest
		if err := common.BindAndValidate(c, &body, "username and password are required"); err != nil {
			return err
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)
		user, err := q.SelectUserByLogin(ctx, body.Username)
		if err != nil {
			if db.IsNotFound(err) {
				return errBadCredentials
			}
			return common.Internal("failed to look up user", err)
		}

		input := passwords.PasswordInput{Password: body.Password}
		matches, err := user.Password.ComparePasswordAndHash(input)
		if err != nil || !matches {
			return errBadCredentials
		}
		if !user.EmailVerified {
			return common.ErrForbidden("email verification is required")
		}

		if user.Password.NeedsRehash() {
			if hashed, err := passwords.NewPassword(input); err == nil {
				if _, err := q.SetUserPassword(ctx, &db.SetUserPasswordParams{ID: user.ID, Password: hashed}); err != nil {
					slog.Warn("failed to upgrade password hash", "user_id", user.ID.String(), "error", err)
				}
			}
		}

		if err := sm.SaveSession(c.Response().Writer, c.Request(), sessionUserFor(user)); err != nil {
			return common.Internal("failed to save session", err)
		}
		slog.Info("member logged in", "username", user.UserName)
		return common.JSONMessage(c, http.StatusOK, "logged in")
	}
}
