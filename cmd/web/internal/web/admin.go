package web

import (
	"strings"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/admin"
	"hanlove.church/site/cmd/web/handlers/common"
)

// AdminSite is the administrative site mounted under AdminPrefix. It sees
// the full request path, so its routes carry the prefix too.
type AdminSite struct {
	*echo.Echo
	svc Services
}

func NewAdminSite(svc Services) *AdminSite {
	site := &AdminSite{Echo: echo.New(), svc: svc}
	site.HTTPErrorHandler = common.HTTPErrorHandler

	useCommonMiddleware(site.Echo, 0)
	site.Use(sessionContext(svc.Sessions, auth.DBRevocations(svc.DB), svc.Settings)...)
	site.registerRoutes()
	return site
}

func (a *AdminSite) registerRoutes() {
	dbc, sc := a.svc.DB, a.svc.Settings
	dashboard := "/" + AdminPrefix

	g := a.Group("/"+strings.TrimSuffix(AdminPrefix, "/"), admin.RequireAdmin(dashboard))
	g.GET("/", admin.HandleDashboard(dbc, sc))
	g.GET("/users", admin.HandleUsers(dbc))
	g.POST("/users/update", admin.HandleUserUpdate(dbc))
	g.POST("/users/reset-password", admin.HandleUserResetPassword(dbc))
	g.POST("/users/delete", admin.HandleUserDelete(dbc))
	g.GET("/titles", admin.HandleTitles(dbc))
	g.POST("/titles/add", admin.HandleTitleAdd(dbc))
	g.POST("/titles/delete", admin.HandleTitleDelete(dbc))
	g.POST("/content/update", admin.HandleContentUpdate(dbc))
	g.POST("/settings", admin.HandleSettings(dbc, sc))
}
