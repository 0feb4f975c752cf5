package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"
	"hanlove.church/site/cmd/web/ctxkeys"
	"hanlove.church/site/cmd/web/viewtypes"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(ctx, &b))
	return b.String()
}

func asLevel(level string, registration bool) context.Context {
	ctx := context.WithValue(context.Background(), ctxkeys.AccessLevel, level)
	return context.WithValue(ctx, ctxkeys.RegistrationEnabled, registration)
}

func TestPageTitle(t *testing.T) {
	require.Equal(t, "한사랑교회", PageTitle(""))
	require.Equal(t, "주보 | 한사랑교회", PageTitle("주보"))
}

func TestLayout_NavigationFollowsAccessLevel(t *testing.T) {
	anon := render(t, asLevel("unauthenticated", true), Login())
	require.Contains(t, anon, `href="/login.html"`)
	require.Contains(t, anon, `href="/register.html"`)
	require.NotContains(t, anon, `href="/admin/"`)

	closed := render(t, asLevel("unauthenticated", false), Login())
	require.NotContains(t, closed, `href="/register.html"`)

	user := render(t, asLevel("user", true), Login())
	require.Contains(t, user, `href="/mypage.html"`)
	require.Contains(t, user, `href="/logout"`)
	require.NotContains(t, user, `href="/admin/"`)

	admin := render(t, asLevel("admin", true), Login())
	require.Contains(t, admin, `href="/admin/"`)
}

func TestHome_EscapesPostFields(t *testing.T) {
	out := render(t, context.Background(), Home([]viewtypes.PostSummary{{
		ID:           "p1",
		Title:        "<script>x</script>",
		AuthorName:   "홍길동",
		CreatedAgo:   "3일 전",
		CommentCount: "2",
	}}, nil))
	require.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;")
	require.NotContains(t, out, "<script>x</script>")
	require.Contains(t, out, "홍길동 · 3일 전 · 댓글 2")
	require.Contains(t, out, "등록된 주보가 없습니다.")
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
}

func TestSermon_UploadFormOnlyForAdmins(t *testing.T) {
	cards := []viewtypes.SermonCard{{Filename: "주보.png", ImageURL: "/uploads/a.png", Date: "2024.03.10"}}

	out := render(t, asLevel("user", true), Sermon(cards))
	require.NotContains(t, out, `name="sermonFiles"`)
	require.Contains(t, out, `src="/uploads/a.png"`)
	require.Contains(t, out, "2024.03.10 · 주보.png")

	out = render(t, asLevel("admin", true), Sermon(cards))
	require.Contains(t, out, `name="sermonFiles"`)
}

func TestNotice_ComposeFormOnlyWhenLoggedIn(t *testing.T) {
	require.NotContains(t, render(t, asLevel("unauthenticated", true), Notice(nil)), `data-form="new-post"`)
	require.Contains(t, render(t, asLevel("user", true), Notice(nil)), `data-form="new-post"`)
}

func TestGreetings(t *testing.T) {
	out := render(t, context.Background(), Greetings(viewtypes.ContentView{}))
	require.Contains(t, out, "<title>인사말 | 한사랑교회</title>")
	require.Contains(t, out, "아직 등록된 내용이 없습니다.")

	out = render(t, context.Background(), Greetings(viewtypes.ContentView{
		Title:   "담임목사 인사말",
		HTML:    "<p><strong>환영</strong>합니다</p>",
		Updated: "2024.01.01",
		Found:   true,
	}))
	require.Contains(t, out, "<p><strong>환영</strong>합니다</p>")
	require.Contains(t, out, "최종 수정 2024.01.01")
}

func TestRegister_Closed(t *testing.T) {
	out := render(t, context.Background(), Register(true))
	require.Contains(t, out, "현재 회원가입이 중단되었습니다.")
	require.NotContains(t, out, `data-form="register"`)
}

func TestAdminDashboard(t *testing.T) {
	out := render(t, asLevel("admin", true), AdminDashboard(viewtypes.DashboardView{
		Users:               "1,204",
		RegistrationEnabled: true,
		Titles:              []string{"집사", "권사"},
	}))
	require.Contains(t, out, "<strong>1,204</strong>")
	require.Contains(t, out, `name="registrationEnabled" checked>`)
	require.Contains(t, out, `data-title="권사"`)
}
