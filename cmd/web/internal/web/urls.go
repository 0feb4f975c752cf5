package web

import (
	"net/http"

	"hanlove.church/site/internal/urls"
)

// AdminPrefix is where the administrative site is mounted.
const AdminPrefix = "admin/"

// NewMainTable routes the public site. The health check is matched before
// the site's catch-all.
func NewMainTable(site, health http.Handler) *urls.Table {
	return urls.New("main",
		urls.Path("healthz", health, "healthz"),
		urls.Path("", site, "site"),
	)
}

// NewRootTable is the process-wide route table: the admin site first, then
// everything else through the main table.
func NewRootTable(adminSite http.Handler, main *urls.Table) *urls.Table {
	return urls.New("root",
		urls.Path(AdminPrefix, adminSite, "admin"),
		urls.Include("", main),
	)
}

// NewRouter wires both sites behind the root table.
func NewRouter(svc Services) (*urls.Table, error) {
	site, err := NewWebserver(svc)
	if err != nil {
		return nil, err
	}
	return NewRootTable(NewAdminSite(svc), NewMainTable(site, health(svc.DB))), nil
}
