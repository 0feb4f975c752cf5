package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/mail"
	"hanlove.church/site/internal/verification"
	"hanlove.church/site/pkg/utils/identity"
)

type sendCodeRequest struct {
	Email string `json:"email" validate:"notblank"`
}

// HandleSendCode mails a signup code to an email that is not yet registered.
func HandleSendCode(dbc *db.DatabaseConnection, codes *verification.Service, mailer mail.Mailer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body sendCodeRequest
		if err := common.BindAndValidate(c, &body, "email is required"); err != nil {
			return err
		}
		email := identity.Email(body.Email)
		if !identity.LooksLikeEmail(email) {
			return common.ErrBadRequest("email is invalid")
		}

		ctx := c.Request().Context()
		registered, err := dbc.Queries(ctx).EmailRegistered(ctx, email)
		if err != nil {
			return common.Internal("failed to check email", err)
		}
		if registered {
			return common.ErrConflict("email already in use")
		}

		code, err := codes.Issue(ctx, verification.PurposeSignup, email)
		if err != nil {
			return common.Internal("failed to issue signup code", err)
		}
		msg, err := mail.SignupCode(ctx, email, code)
		if err != nil {
			return common.Internal("failed to render signup mail", err)
		}
		if err := mailer.Send(ctx, msg); err != nil {
			return common.Internal("failed to send signup mail", err, "email", email)
		}

		return common.JSONMessage(c, http.StatusOK, "verification code sent")
	}
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"notblank"`
	Code  string `json:"code" validate:"notblank"`
}

// HandleVerifyCode checks a signup code and remembers the verified email in
// the session until registration.
func HandleVerifyCode(sm *webauth.SessionManager, codes *verification.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body verifyCodeRequest
		if err := common.BindAndValidate(c, &body, "email and code are required"); err != nil {
			return err
		}
		email := identity.Email(body.Email)

		if err := codes.Check(c.Request().Context(), verification.PurposeSignup, email, body.Code); err != nil {
			return codeError(err)
		}
		if err := sm.SetVerifiedEmail(c.Response().Writer, c.Request(), email); err != nil {
			return common.Internal("failed to save verified email", err)
		}
		return common.JSONMessage(c, http.StatusOK, "email verified")
	}
}

func codeError(err error) error {
	switch {
	case errors.Is(err, verification.ErrNoCode):
		return common.ErrBadRequest("request a verification code first")
	case errors.Is(err, verification.ErrExpired):
		return common.ErrBadRequest("verification code expired, request a new one")
	case errors.Is(err, verification.ErrMismatch):
		return common.ErrBadRequest("verification code is incorrect")
	case errors.Is(err, verification.ErrTooManyAttempts):
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many incorrect codes, request a new one")
	default:
		return common.Internal("failed to check verification code", err)
	}
}
