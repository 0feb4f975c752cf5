package sermons

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/templates"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/storage"
)

const formField = "sermonFiles"

func HandleList(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		rows, err := dbc.Queries(ctx).ListSermons(ctx)
		if err != nil {
			return common.Internal("failed to list sermons", err)
		}
		out := make([]viewtypes.SermonJSON, 0, len(rows))
		for _, s := range rows {
			out = append(out, viewtypes.NewSermonJSON(s))
		}
		return c.JSON(http.StatusOK, out)
	}
}

func HandlePage(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		rows, err := dbc.Queries(ctx).ListSermons(ctx)
		if err != nil {
			return common.Internal("failed to list sermons", err)
		}
		cards := make([]viewtypes.SermonCard, 0, len(rows))
		for _, s := range rows {
			cards = append(cards, viewtypes.NewSermonCard(s))
		}
		return templates.Sermon(cards).Render(ctx, c.Response())
	}
}

type uploadResponse struct {
	Message string                 `json:"message"`
	Sermons []viewtypes.SermonJSON `json:"sermons"`
}

// HandleUpload stores every submitted bulletin and then records them in one
// transaction. Nothing is recorded when any file fails, and stored objects
// are removed again.
func HandleUpload(dbc *db.DatabaseConnection, uploader *storage.Uploader) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, uploaderID, err := common.RequireAdminUser(c)
		if err != nil {
			return err
		}
		form, err := c.MultipartForm()
		if err != nil || len(form.File[formField]) == 0 {
			return common.ErrBadRequest("no files to upload")
		}
		files := form.File[formField]

		ctx := c.Request().Context()
		stored := make([]*storage.Object, 0, len(files))
		for _, fh := range files {
			obj, err := uploader.Save(ctx, fh, storage.FolderSermons, storage.Bulletins)
			if err != nil {
				discard(ctx, uploader.Storage, stored)
				return common.UploadError(err)
			}
			stored = append(stored, obj)
		}

		qtx, tx, err := dbc.NewWithTX(ctx)
		if err != nil {
			discard(ctx, uploader.Storage, stored)
			return common.Internal("failed to start transaction", err)
		}
		defer tx.Rollback(ctx)

		out := make([]viewtypes.SermonJSON, 0, len(stored))
		for i, obj := range stored {
			row, err := qtx.InsertSermon(ctx, &db.InsertSermonParams{
				ID:         db.NewID(),
				Filename:   files[i].Filename,
				ImageURL:   obj.URL,
				StorageKey: obj.Key,
				SizeBytes:  obj.Size,
				UploaderID: uploaderID,
			})
			if err != nil {
				discard(ctx, uploader.Storage, stored)
				return common.Internal("failed to record sermon", err)
			}
			out = append(out, viewtypes.NewSermonJSON(row))
		}
		if err := tx.Commit(ctx); err != nil {
			discard(ctx, uploader.Storage, stored)
			return common.Internal("failed to commit sermons", err)
		}

		slog.Info("sermons uploaded", "count", len(out))
		return c.JSON(http.StatusOK, uploadResponse{Message: "bulletins uploaded", Sermons: out})
	}
}

func discard(ctx context.Context, s storage.Storage, objs []*storage.Object) {
	for _, obj := range objs {
		if err := s.Delete(context.WithoutCancel(ctx), obj.Key); err != nil {
			slog.Warn("failed to remove orphaned upload", "key", obj.Key, "error", err)
		}
	}
}
