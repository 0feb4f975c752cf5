package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/db/dbtest"
)

func signIn(t *testing.T, sm *webauth.SessionManager, u *db.User) []*http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveSession(rr, httptest.NewRequest(http.MethodGet, "/", nil), webauth.SessionUser{
		ID:          u.ID.String(),
		Username:    u.UserName,
		AccessLevel: webauth.AccessLevel(u.Role),
	}))
	return rr.Result().Cookies()
}

func TestDeleteAccount_LastAdminStays(t *testing.T) {
	dbc := dbtest.Open(t)
	sm := webauth.NewSessionManager("test-secret")
	e := echo.New()
	e.HTTPErrorHandler = common.HTTPErrorHandler
	e.Use(sm.Middleware(webauth.DBRevocations(dbc)))
	e.POST("/api/user/delete-account", HandleDeleteAccount(sm, dbc))

	pastor := dbtest.CreateUser(t, dbc, "pastor", db.UserRoleAdmin)
	deacon := dbtest.CreateUser(t, dbc, "deacon", db.UserRoleUser)
	ctx := context.Background()

	rr := send(e, http.MethodPost, "/api/user/delete-account", `{}`, signIn(t, sm, pastor))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"message":"you cannot delete the last admin"}`, rr.Body.String())
	_, err := dbc.Queries(ctx).SelectUserByID(ctx, pastor.ID)
	require.NoError(t, err)

	rr = send(e, http.MethodPost, "/api/user/delete-account", `{}`, signIn(t, sm, deacon))
	require.Equal(t, http.StatusOK, rr.Code)
	_, err = dbc.Queries(ctx).SelectUserByID(ctx, deacon.ID)
	require.True(t, db.IsNotFound(err))

	// With a second admin the first may leave.
	dbtest.CreateUser(t, dbc, "elder", db.UserRoleAdmin)
	rr = send(e, http.MethodPost, "/api/user/delete-account", `{}`, signIn(t, sm, pastor))
	require.Equal(t, http.StatusOK, rr.Code)
	var cleared bool
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == webauth.SessionName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}
