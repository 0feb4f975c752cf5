package common

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/internal/storage"
)

// Message is the body of every plain JSON reply.
type Message struct {
	Message string `json:"message"`
}

// JSONMessage replies {"message": msg} with status.
func JSONMessage(c echo.Context, status int, msg string) error {
	return c.JSON(status, Message{Message: msg})
}

// ErrBadRequest returns a 400 Bad Request error.
func ErrBadRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ErrNotFound returns a 404 Not Found error.
func ErrNotFound(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, msg)
}

// ErrUnauthorized returns a 401 Unauthorized error.
func ErrUnauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, "login required")
}

// ErrForbidden returns a 403 Forbidden error.
func ErrForbidden(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusForbidden, msg)
}

// ErrConflict returns a 409 Conflict error.
func ErrConflict(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusConflict, msg)
}

// ErrInternal returns a 500 Internal Server Error.
func ErrInternal(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

// Internal logs err with msg and args and returns a 500 that hides it.
func Internal(msg string, err error, args ...any) *echo.HTTPError {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	return ErrInternal("server error")
}

// UploadError maps storage rejections to client errors.
func UploadError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return ErrBadRequest("unsupported file type")
	case errors.Is(err, storage.ErrTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	default:
		return Internal("failed to store upload", err)
	}
}

// HTTPErrorHandler renders every error as {"message": ...}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = http.StatusText(code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	} else {
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = JSONMessage(c, code, msg)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
