package board

import (
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/richtext"
)

const maxTitleLength = 200

type postRequest struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

// clean validates a post body and returns the title and sanitized content.
func (r postRequest) clean() (string, string, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" || richtext.IsBlank(r.Content) {
		return "", "", common.ErrBadRequest("title and content are required")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", "", common.ErrBadRequest("title is too long")
	}
	content := richtext.Post(r.Content)
	if richtext.IsBlank(content) {
		return "", "", common.ErrBadRequest("title and content are required")
	}
	return title, content, nil
}

func HandleListPosts(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		posts, err := dbc.Queries(ctx).ListPosts(ctx)
		if err != nil {
			return common.Internal("failed to list posts", err)
		}
		out := make([]viewtypes.PostJSON, 0, len(posts))
		for _, p := range posts {
			out = append(out, viewtypes.NewPostJSON(p, nil))
		}
		return c.JSON(http.StatusOK, out)
	}
}

func HandleShowPost(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		postID, err := common.RequireUUIDParam(c, "id", "post not found")
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)
		post, err := q.GetPost(ctx, postID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.ErrNotFound("post not found")
			}
			return common.Internal("failed to load post", err)
		}
		comments, err := q.ListCommentsByPost(ctx, postID)
		if err != nil {
			return common.Internal("failed to list comments", err)
		}
		if comments == nil {
			comments = []*db.Comment{}
		}
		return c.JSON(http.StatusOK, viewtypes.NewPostJSON(post, comments))
	}
}

type createPostResponse struct {
	Message string             `json:"message"`
	Post    viewtypes.PostJSON `json:"post"`
}

func HandleCreatePost(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		var body postRequest
		if err := common.BindAndValidate(c, &body, "title and content are required"); err != nil {
			return err
		}
		title, content, err := body.clean()
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		post, err := dbc.Queries(ctx).InsertPost(ctx, &db.InsertPostParams{
			ID:         db.NewID(),
			Title:      title,
			Content:    content,
			AuthorID:   userID,
			AuthorName: authorName(user),
		})
		if err != nil {
			return common.Internal("failed to create post", err)
		}
		return c.JSON(http.StatusCreated, createPostResponse{
			Message: "post created",
			Post:    viewtypes.NewPostJSON(post, nil),
		})
	}
}

// loadOwnPost fetches the post named by the id param and checks that user
// may change it.
func loadOwnPost(c echo.Context, dbc *db.DatabaseConnection, user *webauth.SessionUser, userID pgtype.UUID) (*db.Post, error) {
	postID, err := common.RequireUUIDParam(c, "id", "post not found")
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	post, err := dbc.Queries(ctx).GetPost(ctx, postID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, common.ErrNotFound("post not found")
		}
		return nil, common.Internal("failed to load post", err)
	}
	if !canModify(user, userID, post.AuthorID) {
		return nil, common.ErrForbidden("not allowed to change this post")
	}
	return post, nil
}

func HandleUpdatePost(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		var body postRequest
		if err := common.BindAndValidate(c, &body, "title and content are required"); err != nil {
			return err
		}
		post, err := loadOwnPost(c, dbc, user, userID)
		if err != nil {
			return err
		}
		title, content, err := body.clean()
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		n, err := dbc.Queries(ctx).UpdatePost(ctx, &db.UpdatePostParams{ID: post.ID, Title: title, Content: content})
		if err != nil {
			return common.Internal("failed to update post", err)
		}
		if n == 0 {
			return common.ErrNotFound("post not found")
		}
		return common.JSONMessage(c, http.StatusOK, "post updated")
	}
}

func HandleDeletePost(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		post, err := loadOwnPost(c, dbc, user, userID)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		n, err := dbc.Queries(ctx).DeletePost(ctx, post.ID)
		if err != nil {
			return common.Internal("failed to delete post", err)
		}
		if n == 0 {
			return common.ErrNotFound("post not found")
		}
		return common.JSONMessage(c, http.StatusOK, "post deleted")
	}
}
