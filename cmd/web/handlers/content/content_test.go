package content

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"hanlove.church/site/internal/db"
)

func TestSummaries_Limit(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	var posts []*db.Post
	for i := 0; i < 8; i++ {
		posts = append(posts, &db.Post{
			ID:        db.NewID(),
			Title:     "공지",
			Content:   "<p>본문</p>",
			CreatedAt: pgtype.Timestamptz{Time: now.Add(-time.Hour), Valid: true},
		})
	}

	require.Len(t, summaries(now, posts, homePostCount), homePostCount)
	require.Len(t, summaries(now, posts, 0), 8)
	require.Len(t, summaries(now, posts[:2], homePostCount), 2)
	require.Equal(t, "본문", summaries(now, posts, 1)[0].Excerpt)
}

func TestAdminRedirect(t *testing.T) {
	e := echo.New()
	e.GET("/admin.html", HandleAdminRedirect("/admin/"))

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin.html", nil))
	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, "/admin/", rr.Header().Get(echo.HeaderLocation))
}
