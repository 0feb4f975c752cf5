package account

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/identity"
	"hanlove.church/site/pkg/utils/passwords"
)

type updateInfoRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"notblank"`
}

// HandleUpdateInfo changes the member's name and email. The session keeps
// the new name so the nav bar follows.
func HandleUpdateInfo(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		var body updateInfoRequest
		if err := common.BindAndValidate(c, &body, "name and email are required"); err != nil {
			return err
		}
		email := identity.Email(body.Email)
		if !identity.LooksLikeEmail(email) {
			return common.ErrBadRequest("email is invalid")
		}
		name := identity.DisplayName(body.Name)

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)
		taken, err := q.EmailRegisteredToOther(ctx, email, userID)
		if err != nil {
			return common.Internal("failed to check email", err)
		}
		if taken {
			return common.ErrConflict("email already in use")
		}

		n, err := q.UpdateUserInfo(ctx, &db.UpdateUserInfoParams{ID: userID, Name: name, Email: email})
		switch {
		case db.IsUniqueViolation(err):
			return common.ErrConflict("email already in use")
		case err != nil:
			return common.Internal("failed to update user", err)
		case n == 0:
			return common.ErrNotFound("user not found")
		}

		if err := sm.SetName(c.Response().Writer, c.Request(), name); err != nil {
			slog.Warn("failed to refresh session name", "error", err)
		}
		return common.JSONMessage(c, http.StatusOK, "profile updated")
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func HandleChangePassword(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		var body changePasswordRequest
		if err := common.BindAndValidate(c, &body, "current and new password are required"); err != nil {
			return err
		}
		hashed, err := passwords.NewPassword(passwords.PasswordInput{Password: body.NewPassword})
		if err != nil {
			return common.ErrBadRequest(passwords.ErrInvalidPassword.Error())
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)
		user, err := q.SelectUserByID(ctx, userID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.ErrNotFound("user not found")
			}
			return common.Internal("failed to load user", err)
		}
		matches, err := user.Password.ComparePasswordAndHash(passwords.PasswordInput{Password: body.OldPassword})
		if err != nil || !matches {
			return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
		}

		if _, err := q.SetUserPassword(ctx, &db.SetUserPasswordParams{ID: userID, Password: hashed}); err != nil {
			return common.Internal("failed to change password", err)
		}
		return common.JSONMessage(c, http.StatusOK, "password changed")
	}
}
