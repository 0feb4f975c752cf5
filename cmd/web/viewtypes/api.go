package viewtypes

import (
	"time"

	"hanlove.church/site/internal/db"
)

// JSON shapes of the /api and /admin endpoints. Ids are exposed as "_id".

type UserJSON struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserJSON(u *db.User) UserJSON {
	return UserJSON{
		ID:        idString(u.ID.Valid, u.ID.String),
		Username:  u.UserName,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Title:     u.Title.String,
		CreatedAt: u.CreatedAt.Time,
	}
}

type CommentJSON struct {
	ID         string    `json:"_id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewCommentJSON(c *db.Comment) CommentJSON {
	return CommentJSON{
		ID:         idString(c.ID.Valid, c.ID.String),
		Text:       c.Text,
		AuthorID:   idString(c.AuthorID.Valid, c.AuthorID.String),
		AuthorName: c.AuthorName,
		CreatedAt:  c.CreatedAt.Time,
		UpdatedAt:  c.UpdatedAt.Time,
	}
}

type PostJSON struct {
	ID           string        `json:"_id"`
	Title        string        `json:"title"`
	ContentHTML  string        `json:"contentHtml"`
	AuthorID     string        `json:"authorId"`
	AuthorName   string        `json:"authorName"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	CommentCount int64         `json:"commentCount"`
	Comments     []CommentJSON `json:"comments,omitempty"`
}

// NewPostJSON renders p. Content is stored sanitized.
func NewPostJSON(p *db.Post, comments []*db.Comment) PostJSON {
	out := PostJSON{
		ID:           idString(p.ID.Valid, p.ID.String),
		Title:        p.Title,
		ContentHTML:  p.Content,
		AuthorID:     idString(p.AuthorID.Valid, p.AuthorID.String),
		AuthorName:   p.AuthorName,
		CreatedAt:    p.CreatedAt.Time,
		UpdatedAt:    p.UpdatedAt.Time,
		CommentCount: p.CommentCount,
	}
	if comments != nil {
		out.Comments = make([]CommentJSON, 0, len(comments))
		for _, c := range comments {
			out.Comments = append(out.Comments, NewCommentJSON(c))
		}
	}
	return out
}

type SermonJSON struct {
	ID         string    `json:"_id"`
	Filename   string    `json:"filename"`
	ImageURL   string    `json:"imageUrl"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func NewSermonJSON(s *db.Sermon) SermonJSON {
	return SermonJSON{
		ID:         idString(s.ID.Valid, s.ID.String),
		Filename:   s.Filename,
		ImageURL:   s.ImageURL,
		Size:       s.SizeBytes,
		UploadedAt: s.UploadedAt.Time,
	}
}

type ContentJSON struct {
	PageName    string    `json:"pageName"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewContentJSON(p *db.ContentPage) ContentJSON {
	return ContentJSON{
		PageName:    p.PageName,
		Title:       p.Title,
		Content:     p.Body.Source,
		ContentHTML: string(p.Body.HTML()),
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func idString(valid bool, s func() string) string {
	if !valid {
		return ""
	}
	return s()
}
