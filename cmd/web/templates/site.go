package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"context"

	"hanlove.church/site/cmd/web/ctxkeys"
	"hanlove.church/site/cmd/web/viewtypes"
)

const SiteName = "한사랑교회"

func accessLevel(ctx context.Context) string {
	level, _ := ctx.Value(ctxkeys.AccessLevel).(string)
	return level
}

func isLoggedIn(ctx context.Context) bool {
	level := accessLevel(ctx)
	return level == "user" || level == "admin"
}

func isAdmin(ctx context.Context) bool {
	return accessLevel(ctx) == "admin"
}

func registrationEnabled(ctx context.Context) bool {
	enabled, ok := ctx.Value(ctxkeys.RegistrationEnabled).(bool)
	return !ok || enabled
}

// PageTitle appends the church name unless title is empty.
func PageTitle(title string) string {
	if title == "" {
		return SiteName
	}
	return title + " | " + SiteName
}

func contentTitle(v viewtypes.ContentView) string {
	if v.Title == "" {
		return "인사말"
	}
	return v.Title
}

type stat struct {
	Label string
	Value string
}

func dashboardStats(v viewtypes.DashboardView) []stat {
	return []stat{
		{"회원", v.Users},
		{"관리자", v.Admins},
		{"게시글", v.Posts},
		{"댓글", v.Comments},
		{"주보", v.Sermons},
		{"주보 용량", v.SermonBytes},
	}
}

func postMeta(p viewtypes.PostSummary) string {
	return p.AuthorName + " · " + p.CreatedAgo + " · 댓글 " + p.CommentCount
}
