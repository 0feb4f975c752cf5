package board

import (
	"encoding/json"
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

type member struct {
	user    *db.User
	cookies []*http.Cookie
}

func boardWithDB(t *testing.T) (*echo.Echo, map[string]member) {
	t.Helper()
	dbc := dbtest.Open(t)
	sm := webauth.NewSessionManager("test-secret")

	e := echo.New()
	e.HTTPErrorHandler = common.HTTPErrorHandler
	e.Use(sm.Middleware(webauth.DBRevocations(dbc)))
	e.GET("/api/posts/:id", HandleShowPost(dbc))
	e.POST("/api/posts", HandleCreatePost(dbc))
	e.PUT("/api/posts/:id", HandleUpdatePost(dbc))
	e.DELETE("/api/posts/:id", HandleDeletePost(dbc))
	e.POST("/api/posts/:id/comments", HandleCreateComment(dbc))
	e.PUT("/api/posts/:id/comments/:commentId", HandleUpdateComment(dbc))
	e.DELETE("/api/posts/:id/comments/:commentId", HandleDeleteComment(dbc))

	members := map[string]member{}
	for name, role := range map[string]db.UserRole{"pastor": db.UserRoleAdmin, "deacon": db.UserRoleUser, "kim": db.UserRoleUser} {
		u := dbtest.CreateUser(t, dbc, name, role)
		rr := httptest.NewRecorder()
		require.NoError(t, sm.SaveSession(rr, httptest.NewRequest(http.MethodGet, "/", nil), webauth.SessionUser{
			ID:          u.ID.String(),
			Username:    u.UserName,
			Name:        u.Name,
			AccessLevel: webauth.AccessLevel(u.Role),
		}))
		members[name] = member{user: u, cookies: rr.Result().Cookies()}
	}
	return e, members
}

func as(e *echo.Echo, m member, method, target, body string) *httptest.ResponseRecorder {
	req := jsonReq(method, target, body)
	for _, ck := range m.cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestPosts_AuthorOrAdmin(t *testing.T) {
	e, m := boardWithDB(t)

	rr := as(e, m["deacon"], http.MethodPost, "/api/posts", `{"title":"주일 안내","content":"<p>예배는 11시</p>"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created createPostResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, m["deacon"].user.ID.String(), created.Post.AuthorID)
	post := "/api/posts/" + created.Post.ID

	rr = as(e, m["kim"], http.MethodPut, post, `{"title":"바꿈","content":"<p>x</p>"}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	rr = as(e, m["kim"], http.MethodDelete, post, ``)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = as(e, m["deacon"], http.MethodPut, post, `{"title":"주일 안내 (수정)","content":"<p>예배는 11시 30분</p>"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = as(e, m["pastor"], http.MethodPut, post, `{"title":"주일 안내","content":"<p>관리자 수정</p>"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = as(e, m["kim"], http.MethodGet, post, ``)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "관리자 수정")

	rr = as(e, m["pastor"], http.MethodDelete, post, ``)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = as(e, m["deacon"], http.MethodGet, post, ``)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestComments_AuthorOrAdmin(t *testing.T) {
	e, m := boardWithDB(t)

	rr := as(e, m["deacon"], http.MethodPost, "/api/posts", `{"title":"기도 제목","content":"<p>함께 기도해요</p>"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created createPostResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	post := "/api/posts/" + created.Post.ID

	rr = as(e, m["kim"], http.MethodPost, post+"/comments", `{"commentText":"아멘"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var comment createCommentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &comment))
	target := post + "/comments/" + comment.NewComment.ID

	// The post's author does not own its comments.
	rr = as(e, m["deacon"], http.MethodPut, target, `{"newText":"수정"}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	rr = as(e, m["deacon"], http.MethodDelete, target, ``)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = as(e, m["kim"], http.MethodPut, target, `{"newText":"아멘 아멘"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	// A comment is addressed through its own post.
	rr = as(e, m["kim"], http.MethodPut, "/api/posts/"+m["kim"].user.ID.String()+"/comments/"+comment.NewComment.ID, `{"newText":"x"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = as(e, m["pastor"], http.MethodDelete, target, ``)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = as(e, m["kim"], http.MethodDelete, target, ``)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
