package admin

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
)

type settingsRequest struct {
	RegistrationEnabled *bool `json:"registrationEnabled" validate:"required"`
}

func HandleSettings(dbc *db.DatabaseConnection, sc *db.SettingsCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body settingsRequest
		if err := common.BindAndValidate(c, &body, "registrationEnabled is required"); err != nil {
			return err
		}

		ctx := c.Request().Context()
		row, err := dbc.Queries(ctx).UpsertRegistrationEnabled(ctx, *body.RegistrationEnabled)
		if err != nil {
			return common.Internal("failed to update settings", err)
		}
		sc.Set(row)
		slog.Info("instance settings updated", "admin", currentUsername(c), "registration_enabled", row.RegistrationEnabled)
		return common.JSONMessage(c, http.StatusOK, "settings saved")
	}
}
