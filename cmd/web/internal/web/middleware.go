package web

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/ctxkeys"
	"hanlove.church/site/internal/db"
)

const jsonBodyLimit = "2M"

// useCommonMiddleware installs the stack shared by the public and admin
// sites. Requests whose path is in uploadPaths may carry up to uploadLimit
// bytes; everything else is capped at jsonBodyLimit.
func useCommonMiddleware(e *echo.Echo, uploadLimit int64, uploadPaths ...string) {
	e.HideBanner = true
	e.HidePort = true

	uploads := map[string]struct{}{}
	for _, p := range uploadPaths {
		uploads[p] = struct{}{}
	}
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Skipper: func(c echo.Context) bool {
			_, ok := uploads[c.Request().URL.Path]
			return ok
		},
		Limit: jsonBodyLimit,
	}))
	if len(uploads) > 0 {
		e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			Skipper: func(c echo.Context) bool {
				_, ok := uploads[c.Request().URL.Path]
				return !ok
			},
			Limit: fmt.Sprintf("%dB", uploadLimit),
		}))
	}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))
}

// sessionContext validates the signed-in member and publishes the access
// level and registration setting to templates.
func sessionContext(sm *auth.SessionManager, lookup auth.RevocationLookup, sc *db.SettingsCache) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{sm.Middleware(lookup), templateContext(sc)}
}

func templateContext(sc *db.SettingsCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			level := auth.AccessUnauthenticated
			if user, ok := auth.CurrentUser(c); ok {
				level = user.AccessLevel
			}

			ctx := context.WithValue(c.Request().Context(), ctxkeys.AccessLevel, string(level))
			ctx = context.WithValue(ctx, ctxkeys.RegistrationEnabled, sc.Get().RegistrationEnabled)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
