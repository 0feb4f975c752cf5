package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/identity"
	"hanlove.church/site/pkg/utils/passwords"
)

type registerRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
	Email    string `json:"email" validate:"notblank"`
}

func validPasswordLength(pw string) bool {
	n := utf8.RuneCountInString(pw)
	return n >= passwords.MinPasswordLength && n <= passwords.MaxPasswordLength
}

// HandleRegister creates a member whose email was verified earlier in this
// session. The first member becomes an admin and may register even when
// registration is closed.
func HandleRegister(sm *webauth.SessionManager, dbc *db.DatabaseConnection, sc *db.SettingsCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body registerRequest
		if err := common.BindAndValidate(c, &body, "all fields are required"); err != nil {
			return err
		}
		if !validPasswordLength(body.Password) {
			return common.ErrBadRequest(passwords.ErrInvalidPassword.Error())
		}
		if !identity.ValidUsername(body.Username) {
			return common.ErrBadRequest(identity.ErrInvalidUsername.Error())
		}
		email := identity.Email(body.Email)
		if verified := sm.VerifiedEmail(c.Request()); verified == "" || verified != email {
			return common.ErrForbidden("verify your email first")
		}

		ctx := c.Request().Context()
		qtx, tx, err := dbc.NewWithTX(ctx)
		if err != nil {
			return common.Internal("failed to start transaction", err)
		}
		defer tx.Rollback(ctx)

		// Held until commit so only one registration can find the table empty.
		if err := qtx.LockUsersForSignup(ctx); err != nil {
			return common.Internal("failed to lock users", err)
		}
		userCount, err := qtx.CountUsers(ctx)
		if err != nil {
			return common.Internal("failed to count users", err)
		}

		role := db.UserRoleUser
		if userCount == 0 {
			role = db.UserRoleAdmin
		} else if !sc.Get().RegistrationEnabled {
			return common.ErrForbidden("registration is closed")
		}

		taken, err := qtx.UsernameTaken(ctx, identity.Username(body.Username))
		if err != nil {
			return common.Internal("failed to check username", err)
		}
		if taken {
			return common.ErrConflict("username already exists")
		}
		registered, err := qtx.EmailRegistered(ctx, email)
		if err != nil {
			return common.Internal("failed to check email", err)
		}
		if registered {
			return common.ErrConflict("email already in use")
		}

		user, err := qtx.NewUser(ctx, db.NewUserParams{
			Username:      body.Username,
			Name:          body.Name,
			Email:         email,
			Password:      body.Password,
			Role:          role,
			EmailVerified: true,
		})
		switch {
		case errors.Is(err, passwords.ErrInvalidPassword):
			return common.ErrBadRequest(passwords.ErrInvalidPassword.Error())
		case db.IsUniqueViolation(err):
			return common.ErrConflict("username or email already in use")
		case err != nil:
			return common.Internal("failed to create user", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return common.Internal("failed to commit registration", err)
		}

		if err := sm.ClearVerifiedEmail(c.Response().Writer, c.Request()); err != nil {
			slog.Warn("failed to clear verified email", "error", err)
		}
		slog.Info("member registered", "username", user.UserName, "role", user.Role)
		return common.JSONMessage(c, http.StatusCreated, "registration complete")
	}
}
