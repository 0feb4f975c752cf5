package admin

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/templates"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
)

func HandleDashboard(dbc *db.DatabaseConnection, sc *db.SettingsCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		q := dbc.Queries(ctx)

		overview, err := q.GetDashboardOverview(ctx)
		if err != nil {
			slog.Error("failed to get dashboard overview", "error", err)
			overview = &db.DashboardOverview{}
		}
		titles, err := q.ListTitles(ctx)
		if err != nil {
			slog.Error("failed to list titles", "error", err)
		}

		view := viewtypes.NewDashboardView(overview, sc.Get(), titles)
		return templates.AdminDashboard(view).Render(ctx, c.Response())
	}
}
