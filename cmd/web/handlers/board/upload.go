package board

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/storage"
)

type uploadResponse struct {
	URL string `json:"url"`
}

// HandleUpload stores an image inserted into a post from the editor.
func HandleUpload(uploader *storage.Uploader) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, _, err := common.RequireSessionUser(c); err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return common.ErrBadRequest("no file to upload")
		}

		obj, err := uploader.Save(c.Request().Context(), fh, storage.FolderNotices, storage.Images)
		if err != nil {
			return common.UploadError(err)
		}
		return c.JSON(http.StatusOK, uploadResponse{URL: obj.URL})
	}
}
