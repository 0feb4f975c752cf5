package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/db/dbtest"
)

type registrar struct {
	e  *echo.Echo
	sm *webauth.SessionManager
}

func newRegistrar(dbc *db.DatabaseConnection, open bool) registrar {
	sm := webauth.NewSessionManager("test-secret")
	e := newEcho()
	e.POST("/register", HandleRegister(sm, dbc, db.NewStaticSettingsCache(db.InstanceSetting{RegistrationEnabled: open})))
	return registrar{e: e, sm: sm}
}

// request builds a registration whose email was verified in the same session.
func (r registrar) request(t *testing.T, username string) *http.Request {
	t.Helper()
	email := username + "@example.com"
	vrr := httptest.NewRecorder()
	require.NoError(t, r.sm.SetVerifiedEmail(vrr, httptest.NewRequest(http.MethodGet, "/", nil), email))
	body := fmt.Sprintf(`{"name":"%s","username":"%s","password":"long-enough","email":"%s"}`, username, username, email)
	return jsonRequest(http.MethodPost, "/register", body, vrr.Result().Cookies()...)
}

func roleOf(t *testing.T, dbc *db.DatabaseConnection, username string) db.UserRole {
	t.Helper()
	ctx := context.Background()
	u, err := dbc.Queries(ctx).SelectUserByUserName(ctx, username)
	require.NoError(t, err)
	return u.Role
}

func TestRegister_FirstMemberBecomesAdmin(t *testing.T) {
	dbc := dbtest.Open(t)
	r := newRegistrar(dbc, true)

	require.Equal(t, http.StatusCreated, do(r.e, r.request(t, "pastor")).Code)
	require.Equal(t, http.StatusCreated, do(r.e, r.request(t, "deacon")).Code)

	require.Equal(t, db.UserRoleAdmin, roleOf(t, dbc, "pastor"))
	require.Equal(t, db.UserRoleUser, roleOf(t, dbc, "deacon"))

	rr := do(r.e, r.request(t, "deacon"))
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "username already exists", message(t, rr))
}

func TestRegister_Closed(t *testing.T) {
	dbc := dbtest.Open(t)
	r := newRegistrar(dbc, false)

	// The first member is let in even while registration is closed.
	require.Equal(t, http.StatusCreated, do(r.e, r.request(t, "pastor")).Code)
	require.Equal(t, db.UserRoleAdmin, roleOf(t, dbc, "pastor"))

	rr := do(r.e, r.request(t, "deacon"))
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "registration is closed", message(t, rr))
}

func TestRegister_ConcurrentFirstMembers(t *testing.T) {
	dbc := dbtest.Open(t)
	r := newRegistrar(dbc, true)

	const n = 8
	reqs := make([]*http.Request, n)
	for i := range reqs {
		reqs[i] = r.request(t, fmt.Sprintf("founder%d", i))
	}

	codes := make([]int, n)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = do(r.e, req).Code
		}()
	}
	wg.Wait()

	for _, code := range codes {
		require.Equal(t, http.StatusCreated, code)
	}
	ctx := context.Background()
	admins, err := dbc.Queries(ctx).LockAdmins(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, admins)
}
