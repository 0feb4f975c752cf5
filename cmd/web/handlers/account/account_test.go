package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
)

func neverRevoked(ctx context.Context, id pgtype.UUID) (pgtype.Timestamptz, error) {
	return pgtype.Timestamptz{}, nil
}

func setup(t *testing.T) (*echo.Echo, []*http.Cookie) {
	t.Helper()
	sm := webauth.NewSessionManager("test-secret")
	e := echo.New()
	e.HTTPErrorHandler = common.HTTPErrorHandler
	e.Use(sm.Middleware(neverRevoked))
	e.GET("/api/user/info", HandleInfo(nil))
	e.POST("/api/user/update-info", HandleUpdateInfo(sm, nil))
	e.POST("/api/user/change-password", HandleChangePassword(nil))
	e.POST("/api/user/delete-account", HandleDeleteAccount(sm, nil))
	e.GET("/mypage.html", HandleMyPage())

	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveSession(rr, httptest.NewRequest(http.MethodGet, "/", nil), webauth.SessionUser{
		ID:          "6f1c1d2e-0a5b-4c3d-9e8f-112233445566",
		Username:    "deacon",
		AccessLevel: webauth.AccessUser,
	}))
	return e, rr.Result().Cookies()
}

func send(e *echo.Echo, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestAccount_LoginRequired(t *testing.T) {
	e, _ := setup(t)
	for _, r := range []struct{ method, target string }{
		{http.MethodGet, "/api/user/info"},
		{http.MethodPost, "/api/user/update-info"},
		{http.MethodPost, "/api/user/change-password"},
		{http.MethodPost, "/api/user/delete-account"},
	} {
		rr := send(e, r.method, r.target, `{}`, nil)
		require.Equal(t, http.StatusUnauthorized, rr.Code, r.target)
		require.JSONEq(t, `{"message":"login required"}`, rr.Body.String())
	}
}

func TestUpdateInfo_Validation(t *testing.T) {
	e, cookies := setup(t)

	rr := send(e, http.MethodPost, "/api/user/update-info", `{"name":"김집사"}`, cookies)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = send(e, http.MethodPost, "/api/user/update-info", `{"name":"김집사","email":"nope"}`, cookies)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestChangePassword_Validation(t *testing.T) {
	e, cookies := setup(t)

	rr := send(e, http.MethodPost, "/api/user/change-password", `{"oldPassword":"old-password"}`, cookies)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = send(e, http.MethodPost, "/api/user/change-password", `{"oldPassword":"old-password","newPassword":"short"}`, cookies)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMyPage(t *testing.T) {
	e, cookies := setup(t)

	rr := send(e, http.MethodGet, "/mypage.html", ``, nil)
	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, "/login.html", rr.Header().Get(echo.HeaderLocation))

	rr = send(e, http.MethodGet, "/mypage.html", ``, cookies)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `data-form="change-password"`)
}
