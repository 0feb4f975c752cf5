package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/mail"
	"hanlove.church/site/internal/verification"
	"hanlove.church/site/pkg/utils/passwords"
)

type findPasswordRequest struct {
	UsernameEmail string `json:"username_email" validate:"notblank"`
	Code          string `json:"code"`
}

// HandleFindPasswordSendCode mails a reset code to the member's address.
func HandleFindPasswordSendCode(dbc *db.DatabaseConnection, codes *verification.Service, mailer mail.Mailer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body findPasswordRequest
		if err := common.BindAndValidate(c, &body, "username or email is required"); err != nil {
			return err
		}

		ctx := c.Request().Context()
		user, err := dbc.Queries(ctx).SelectUserByLogin(ctx, body.UsernameEmail)
		if err != nil {
			if db.IsNotFound(err) {
				return common.ErrNotFound("no matching member")
			}
			return common.Internal("failed to look up user", err)
		}

		code, err := codes.Issue(ctx, verification.PurposeResetPassword, user.ID.String())
		if err != nil {
			return common.Internal("failed to issue reset code", err)
		}
		msg, err := mail.PasswordResetCode(ctx, user.Email, user.Name, code)
		if err != nil {
			return common.Internal("failed to render reset mail", err)
		}
		if err := mailer.Send(ctx, msg); err != nil {
			return common.Internal("failed to send reset mail", err, "user_id", user.ID.String())
		}
		return common.JSONMessage(c, http.StatusOK, "verification code sent")
	}
}

// HandleFindPasswordVerifyCode marks the session as allowed to reset the
// member's password.
func HandleFindPasswordVerifyCode(sm *webauth.SessionManager, dbc *db.DatabaseConnection, codes *verification.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body findPasswordRequest
		if err := common.BindAndValidate(c, &body, "username or email and code are required"); err != nil {
			return err
		}
		if common.Blank(body.Code) {
			return common.ErrBadRequest("username or email and code are required")
		}

		ctx := c.Request().Context()
		user, err := dbc.Queries(ctx).SelectUserByLogin(ctx, body.UsernameEmail)
		if err != nil {
			if db.IsNotFound(err) {
				return codeError(verification.ErrNoCode)
			}
			return common.Internal("failed to look up user", err)
		}

		if err := codes.Check(ctx, verification.PurposeResetPassword, user.ID.String(), body.Code); err != nil {
			return codeError(err)
		}
		if err := sm.SetPasswordReset(c.Response().Writer, c.Request(), user.ID.String()); err != nil {
			return common.Internal("failed to save reset state", err)
		}
		return common.JSONMessage(c, http.StatusOK, "verified, enter a new password")
	}
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

// HandleResetPassword sets the new password and signs the member out
// everywhere.
func HandleResetPassword(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		resetID := sm.PasswordResetUser(c.Request())
		if resetID == "" {
			return common.ErrForbidden("complete email verification first")
		}
		var body resetPasswordRequest
		if err := common.BindAndValidate(c, &body, "new password is required"); err != nil {
			return err
		}
		if !validPasswordLength(body.NewPassword) {
			return common.ErrBadRequest(passwords.ErrInvalidPassword.Error())
		}
		userID, err := db.ParseID(resetID)
		if err != nil {
			return common.ErrForbidden("complete email verification first")
		}

		hashed, err := passwords.NewPassword(passwords.PasswordInput{Password: body.NewPassword})
		if err != nil {
			return common.ErrBadRequest(passwords.ErrInvalidPassword.Error())
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)
		n, err := q.SetUserPassword(ctx, &db.SetUserPasswordParams{ID: userID, Password: hashed})
		if err != nil {
			return common.Internal("failed to reset password", err)
		}
		if n == 0 {
			return common.ErrNotFound("user not found")
		}
		if err := q.InvalidateUserSessions(ctx, userID); err != nil {
			slog.Warn("failed to invalidate sessions after reset", "user_id", resetID, "error", err)
		}
		if err := sm.ClearPasswordReset(c.Response().Writer, c.Request()); err != nil {
			slog.Warn("failed to clear reset state", "error", err)
		}
		slog.Info("password reset", "user_id", resetID)
		return common.JSONMessage(c, http.StatusOK, "password reset, please log in")
	}
}
