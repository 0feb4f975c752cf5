package board

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/richtext"
)

type createCommentRequest struct {
	CommentText string `json:"commentText" validate:"notblank"`
}

type createCommentResponse struct {
	Message    string                `json:"message"`
	NewComment viewtypes.CommentJSON `json:"newComment"`
}

func HandleCreateComment(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		postID, err := common.RequireUUIDParam(c, "id", "post not found")
		if err != nil {
			return err
		}
		var body createCommentRequest
		if err := common.BindAndValidate(c, &body, "comment text is required"); err != nil {
			return err
		}
		text := richtext.Comment(body.CommentText)
		if text == "" {
			return common.ErrBadRequest("comment text is required")
		}

		ctx := c.Request().Context()
		comment, err := dbc.Queries(ctx).InsertComment(ctx, &db.InsertCommentParams{
			ID:         db.NewID(),
			PostID:     postID,
			Text:       text,
			AuthorID:   userID,
			AuthorName: authorName(user),
		})
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return common.ErrNotFound("post not found")
			}
			return common.Internal("failed to create comment", err)
		}
		return c.JSON(http.StatusCreated, createCommentResponse{
			Message:    "comment created",
			NewComment: viewtypes.NewCommentJSON(comment),
		})
	}
}

func loadOwnComment(c echo.Context, dbc *db.DatabaseConnection, user *webauth.SessionUser, userID pgtype.UUID) (*db.Comment, error) {
	postID, err := common.RequireUUIDParam(c, "id", "comment not found")
	if err != nil {
		return nil, err
	}
	commentID, err := common.RequireUUIDParam(c, "commentId", "comment not found")
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	comment, err := dbc.Queries(ctx).GetComment(ctx, commentID, postID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, common.ErrNotFound("comment not found")
		}
		return nil, common.Internal("failed to load comment", err)
	}
	if !canModify(user, userID, comment.AuthorID) {
		return nil, common.ErrForbidden("not allowed to change this comment")
	}
	return comment, nil
}

type updateCommentRequest struct {
	NewText string `json:"newText" validate:"notblank"`
}

func HandleUpdateComment(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		var body updateCommentRequest
		if err := common.BindAndValidate(c, &body, "comment text is required"); err != nil {
			return err
		}
		comment, err := loadOwnComment(c, dbc, user, userID)
		if err != nil {
			return err
		}
		text := richtext.Comment(body.NewText)
		if text == "" {
			return common.ErrBadRequest("comment text is required")
		}

		ctx := c.Request().Context()
		if _, err := dbc.Queries(ctx).UpdateComment(ctx, comment.ID, text); err != nil {
			return common.Internal("failed to update comment", err)
		}
		return common.JSONMessage(c, http.StatusOK, "comment updated")
	}
}

func HandleDeleteComment(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}
		comment, err := loadOwnComment(c, dbc, user, userID)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		if _, err := dbc.Queries(ctx).DeleteComment(ctx, comment.ID); err != nil {
			return common.Internal("failed to delete comment", err)
		}
		return common.JSONMessage(c, http.StatusOK, "comment deleted")
	}
}
