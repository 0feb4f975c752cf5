package viewtypes

import (
	"time"

	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/format"
	"hanlove.church/site/pkg/utils/richtext"
)

// PostSummary is one row of the notice board list.
type PostSummary struct {
	ID           string
	Title        string
	AuthorName   string
	Excerpt      string
	CreatedAgo   string
	CommentCount string
}

func NewPostSummary(now time.Time, p *db.Post) PostSummary {
	return PostSummary{
		ID:           p.ID.String(),
		Title:        p.Title,
		AuthorName:   p.AuthorName,
		Excerpt:      format.Truncate(richtext.PlainText(p.Content), 80),
		CreatedAgo:   format.TimeAgo(now, p.CreatedAt.Time),
		CommentCount: format.Count(p.CommentCount),
	}
}

// SermonCard is one uploaded bulletin.
type SermonCard struct {
	Filename string
	ImageURL string
	Date     string
	Size     string
}

func NewSermonCard(s *db.Sermon) SermonCard {
	return SermonCard{
		Filename: s.Filename,
		ImageURL: s.ImageURL,
		Date:     format.Date(s.UploadedAt.Time),
		Size:     format.Bytes(s.SizeBytes),
	}
}

// ContentView is an editable page such as the pastor's greeting.
type ContentView struct {
	PageName string
	Title    string
	HTML     string
	Updated  string
	Found    bool
}

func NewContentView(p *db.ContentPage) ContentView {
	if p == nil {
		return ContentView{}
	}
	return ContentView{
		PageName: p.PageName,
		Title:    p.Title,
		HTML:     string(p.Body.HTML()),
		Updated:  format.Date(p.UpdatedAt.Time),
		Found:    true,
	}
}

// DashboardView feeds the admin dashboard.
type DashboardView struct {
	Users               string
	Admins              string
	Posts               string
	Comments            string
	Sermons             string
	SermonBytes         string
	RegistrationEnabled bool
	Titles              []string
}

func NewDashboardView(o *db.DashboardOverview, settings db.InstanceSetting, titles []*db.Title) DashboardView {
	v := DashboardView{
		Users:               format.Count(o.Users),
		Admins:              format.Count(o.Admins),
		Posts:               format.Count(o.Posts),
		Comments:            format.Count(o.Comments),
		Sermons:             format.Count(o.Sermons),
		SermonBytes:         format.Bytes(o.SermonBytes),
		RegistrationEnabled: settings.RegistrationEnabled,
	}
	for _, t := range titles {
		v.Titles = append(v.Titles, t.Title)
	}
	return v
}
