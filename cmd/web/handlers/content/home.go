package content

import (
	"time"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/templates"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
)

// homePostCount is how many notices the front page lists.
const homePostCount = 5

func summaries(now time.Time, posts []*db.Post, limit int) []viewtypes.PostSummary {
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	out := make([]viewtypes.PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, viewtypes.NewPostSummary(now, p))
	}
	return out
}

func HandleHomePage(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		q := dbc.Queries(ctx)

		posts, err := q.ListPosts(ctx)
		if err != nil {
			return common.Internal("failed to list posts", err)
		}
		sermons, err := q.ListSermons(ctx)
		if err != nil {
			return common.Internal("failed to list sermons", err)
		}

		var latest *viewtypes.SermonCard
		if len(sermons) > 0 {
			card := viewtypes.NewSermonCard(sermons[0])
			latest = &card
		}
		return templates.Home(summaries(time.Now(), posts, homePostCount), latest).Render(ctx, c.Response())
	}
}
