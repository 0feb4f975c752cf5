package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
)

const (
	adminID  = "0b6e4f7a-1c2d-4e3f-8a9b-aabbccddeeff"
	memberID = "6f1c1d2e-0a5b-4c3d-9e8f-112233445566"
)

type fixture struct {
	e      *echo.Echo
	admin  []*http.Cookie
	member []*http.Cookie
}

func login(t *testing.T, sm *auth.SessionManager, u auth.SessionUser) []*http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveSession(rr, httptest.NewRequest(http.MethodGet, "/", nil), u))
	return rr.Result().Cookies()
}

func neverRevoked(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
	return pgtype.Timestamptz{}, nil
}

func setup(t *testing.T) fixture {
	t.Helper()
	sm := auth.NewSessionManager("test-secret")
	sc := db.NewStaticSettingsCache(db.InstanceSetting{RegistrationEnabled: true})

	e := echo.New()
	e.HTTPErrorHandler = common.HTTPErrorHandler
	e.Use(sm.Middleware(neverRevoked))
	g := e.Group("/admin", RequireAdmin("/admin/"))
	g.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "dashboard") })
	g.POST("/users/update", HandleUserUpdate(nil))
	g.POST("/users/reset-password", HandleUserResetPassword(nil))
	g.POST("/users/delete", HandleUserDelete(nil))
	g.POST("/titles/add", HandleTitleAdd(nil))
	g.POST("/titles/delete", HandleTitleDelete(nil))
	g.POST("/content/update", HandleContentUpdate(nil))
	g.POST("/settings", HandleSettings(nil, sc))

	return fixture{
		e:      e,
		admin:  login(t, sm, auth.SessionUser{ID: adminID, Username: "pastor", Name: "목사", AccessLevel: auth.AccessAdmin}),
		member: login(t, sm, auth.SessionUser{ID: memberID, Username: "deacon", Name: "김집사", AccessLevel: auth.AccessUser}),
	}
}

func (f fixture) do(method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	f.e.ServeHTTP(rr, req)
	return rr
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["message"]
}

func TestRequireAdmin_Anonymous(t *testing.T) {
	f := setup(t)

	rr := f.do(http.MethodGet, "/admin/", "", nil)
	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, "/login.html", rr.Header().Get(echo.HeaderLocation))

	rr = f.do(http.MethodPost, "/admin/settings", `{"registrationEnabled":false}`, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "admin only", message(t, rr))
}

func TestRequireAdmin_Member(t *testing.T) {
	f := setup(t)

	rr := f.do(http.MethodGet, "/admin/", "", f.member)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodPost, "/admin/users/delete", `{"_id":"`+adminID+`"}`, f.member)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireAdmin_Admin(t *testing.T) {
	f := setup(t)

	rr := f.do(http.MethodGet, "/admin/", "", f.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "dashboard", rr.Body.String())
}

func TestUserUpdate_Validation(t *testing.T) {
	f := setup(t)

	cases := []struct {
		name, body string
		status     int
		msg        string
	}{
		{"missing id", `{"newRole":"admin"}`, http.StatusBadRequest, "user id is required"},
		{"malformed id", `{"_id":"nope","newRole":"admin"}`, http.StatusNotFound, "user not found"},
		{"nothing", `{"_id":"` + memberID + `"}`, http.StatusBadRequest, "nothing to update"},
		{"bad role", `{"_id":"` + memberID + `","newRole":"owner"}`, http.StatusBadRequest, "invalid role"},
		{"self demotion", `{"_id":"` + adminID + `","newRole":"user"}`, http.StatusBadRequest, "you cannot demote yourself"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(http.MethodPost, "/admin/users/update", tc.body, f.admin)
			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, tc.msg, message(t, rr))
		})
	}
}

func TestUserResetPassword_Validation(t *testing.T) {
	f := setup(t)

	rr := f.do(http.MethodPost, "/admin/users/reset-password", `{"_id":"`+memberID+`"}`, f.admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/admin/users/reset-password", `{"_id":"`+memberID+`","newPassword":"short"}`, f.admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, message(t, rr), "between 8 and 512")
}

func TestUserDelete_NotSelf(t *testing.T) {
	f := setup(t)

	rr := f.do(http.MethodPost, "/admin/users/delete", `{"_id":"`+adminID+`"}`, f.admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "you cannot delete yourself", message(t, rr))

	rr = f.do(http.MethodPost, "/admin/users/delete", `{}`, f.admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTitles_RequireTitle(t *testing.T) {
	f := setup(t)

	for _, path := range []string{"/admin/titles/add", "/admin/titles/delete"} {
		rr := f.do(http.MethodPost, path, `{"title":"   "}`, f.admin)
		require.Equal(t, http.StatusBadRequest, rr.Code, path)
		require.Equal(t, "title is required", message(t, rr))
	}
}

func TestContentUpdate_RequiresAllFields(t *testing.T) {
	f := setup(t)

	rr := f.do(http.MethodPost, "/admin/content/update", `{"pageName":"greetings","title":"인사말"}`, f.admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "all fields are required", message(t, rr))
}

func TestSettings_RequiresFlag(t *testing.T) {
	f := setup(t)

	rr := f.do(http.MethodPost, "/admin/settings", `{}`, f.admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "registrationEnabled is required", message(t, rr))
}
