package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/ctxkeys"
	"hanlove.church/site/cmd/web/handlers/account"
	"hanlove.church/site/cmd/web/handlers/admin"
	"hanlove.church/site/cmd/web/handlers/board"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
)

const memberID = "6f1c1d2e-0a5b-4c3d-9e8f-112233445566"

type stub string

func (s stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Handler", string(s))
	w.WriteHeader(http.StatusOK)
}

func testServices() Services {
	return Services{
		Sessions: auth.NewSessionManager("test-secret"),
		Settings: db.NewStaticSettingsCache(db.InstanceSetting{RegistrationEnabled: true}),
	}
}

func TestRootTable_Shape(t *testing.T) {
	build := func() []string {
		root := NewRootTable(stub("admin"), NewMainTable(stub("site"), stub("health")))
		var prefixes []string
		for _, p := range root.Patterns() {
			prefixes = append(prefixes, p.Prefix())
		}
		return prefixes
	}

	first := build()
	require.Equal(t, []string{"admin/", ""}, first)
	require.Equal(t, first, build())

	root := NewRootTable(stub("admin"), NewMainTable(stub("site"), stub("health")))
	ps := root.Patterns()
	require.False(t, ps[0].IsInclude())
	require.True(t, ps[1].IsInclude())
	require.Equal(t, "main", ps[1].Included().Name())

	u, ok := root.Reverse("admin")
	require.True(t, ok)
	require.Equal(t, "/admin/", u)
}

func TestRootTable_Dispatch(t *testing.T) {
	root := NewRootTable(stub("admin"), NewMainTable(stub("site"), stub("health")))

	cases := map[string]string{
		"/admin/":             "admin",
		"/admin/users":        "admin",
		"/":                   "site",
		"/notice.html":        "site",
		"/api/posts":          "site",
		"/administrators":     "site",
		"/healthz":            "health",
		"/static/dist/app.js": "site",
	}
	for path, want := range cases {
		rr := httptest.NewRecorder()
		root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.Equal(t, want, rr.Header().Get("X-Handler"), path)
	}

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusMovedPermanently, rr.Code)
	require.Equal(t, "/admin/", rr.Header().Get(echo.HeaderLocation))
}

func TestAdminSite_AnonymousDashboardRedirects(t *testing.T) {
	svc := testServices()
	root := NewRootTable(NewAdminSite(svc), NewMainTable(stub("site"), stub("health")))

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, "/login.html", rr.Header().Get(echo.HeaderLocation))

	rr = httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestWebserver_PublicRoutesWithoutSession(t *testing.T) {
	ws, err := NewWebserver(testServices())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	ws.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/dist/main.css", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("ETag"))

	rr = httptest.NewRecorder()
	ws.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login.html", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "<form")

	rr = httptest.NewRecorder()
	ws.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"isLoggedIn":false}`, rr.Body.String())

	rr = httptest.NewRecorder()
	ws.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin.html", nil))
	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, "/admin/", rr.Header().Get(echo.HeaderLocation))
}

func sessionCookies(t *testing.T, sm *auth.SessionManager) []*http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveSession(rr, httptest.NewRequest(http.MethodGet, "/", nil), auth.SessionUser{
		ID:          memberID,
		Username:    "deacon",
		Name:        "김집사",
		AccessLevel: auth.AccessUser,
	}))
	return rr.Result().Cookies()
}

func runSessionContext(t *testing.T, lookup auth.RevocationLookup) (*httptest.ResponseRecorder, string) {
	t.Helper()
	svc := testServices()
	e := echo.New()
	e.Use(sessionContext(svc.Sessions, lookup, svc.Settings)...)

	var seen string
	e.GET("/", func(c echo.Context) error {
		seen, _ = c.Request().Context().Value(ctxkeys.AccessLevel).(string)
		require.True(t, c.Request().Context().Value(ctxkeys.RegistrationEnabled).(bool))
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range sessionCookies(t, svc.Sessions) {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr, seen
}

func clearedCookie(rr *httptest.ResponseRecorder) bool {
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == auth.SessionName && ck.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestSessionContext_ValidSession(t *testing.T) {
	rr, level := runSessionContext(t, func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{}, nil
	})
	require.Equal(t, "user", level)
	require.False(t, clearedCookie(rr))
}

func TestSessionContext_DeletedMember(t *testing.T) {
	rr, level := runSessionContext(t, func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{}, pgx.ErrNoRows
	})
	require.Equal(t, "unauthenticated", level)
	require.True(t, clearedCookie(rr))
}

func TestSessionContext_RevokedSession(t *testing.T) {
	rr, level := runSessionContext(t, func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{Time: time.Now().Add(time.Minute), Valid: true}, nil
	})
	require.Equal(t, "unauthenticated", level)
	require.True(t, clearedCookie(rr))
}

func TestSessionContext_DatabaseErrorKeepsCookie(t *testing.T) {
	rr, level := runSessionContext(t, func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{}, errors.New("connection refused")
	})
	require.Equal(t, "unauthenticated", level)
	require.False(t, clearedCookie(rr))
}

func TestSessionContext_DatabaseErrorDeniesMemberRoutes(t *testing.T) {
	svc := testServices()
	failing := func(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
		return pgtype.Timestamptz{}, errors.New("connection refused")
	}

	e := echo.New()
	e.HTTPErrorHandler = common.HTTPErrorHandler
	e.Use(sessionContext(svc.Sessions, failing, svc.Settings)...)
	e.GET("/api/user/info", account.HandleInfo(nil))
	e.POST("/api/upload", board.HandleUpload(nil))
	adminGroup := e.Group("/admin", admin.RequireAdmin("/admin/"))
	adminGroup.GET("/users", admin.HandleUsers(nil))

	adminCookies := func() []*http.Cookie {
		rr := httptest.NewRecorder()
		require.NoError(t, svc.Sessions.SaveSession(rr, httptest.NewRequest(http.MethodGet, "/", nil), auth.SessionUser{
			ID:          memberID,
			Username:    "pastor",
			AccessLevel: auth.AccessAdmin,
		}))
		return rr.Result().Cookies()
	}()

	for _, tc := range []struct {
		method, target string
		cookies        []*http.Cookie
		want           int
	}{
		{http.MethodGet, "/api/user/info", sessionCookies(t, svc.Sessions), http.StatusUnauthorized},
		{http.MethodPost, "/api/upload", sessionCookies(t, svc.Sessions), http.StatusUnauthorized},
		{http.MethodGet, "/admin/users", adminCookies, http.StatusForbidden},
	} {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		for _, ck := range tc.cookies {
			req.AddCookie(ck)
		}
		rr := httptest.NewRecorder()
		e.ServeHTTP(rr, req)
		require.Equal(t, tc.want, rr.Code, tc.target)
	}
}

func TestServeUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notices"), 0o755))
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notices", "20260101-000000-photo.gif"), gif, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(dir), "outside.txt"), []byte("secret"), 0o644))

	e := echo.New()
	e.GET("/uploads/*", serveUploads(dir))

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/notices/20260101-000000-photo.gif", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/gif", rr.Header().Get(echo.HeaderContentType))
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Contains(t, rr.Header().Get("Content-Security-Policy"), "sandbox")

	for _, target := range []string{"/uploads/", "/uploads/../outside.txt", "/uploads/notices/missing.gif"} {
		rr := httptest.NewRecorder()
		e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusNotFound, rr.Code, target)
	}
}
