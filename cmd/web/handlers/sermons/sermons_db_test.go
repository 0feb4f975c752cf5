package sermons

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/db/dbtest"
	"hanlove.church/site/internal/storage"
)

const rejectFilenameTrigger = `
CREATE OR REPLACE FUNCTION reject_bulletin() RETURNS trigger AS $$
BEGIN
    IF NEW.filename = 'rejected.png' THEN
        RAISE EXCEPTION 'bulletin rejected';
    END IF;
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;
CREATE TRIGGER reject_bulletin BEFORE INSERT ON sermons
    FOR EACH ROW EXECUTE FUNCTION reject_bulletin();`

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	require.NoError(t, filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			files = append(files, path)
		}
		return err
	}))
	return files
}

func TestUpload_BatchIsAllOrNothing(t *testing.T) {
	dbc := dbtest.Open(t)
	ctx := context.Background()
	_, err := dbc.Exec(ctx, rejectFilenameTrigger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = dbc.Exec(context.Background(), `DROP TRIGGER IF EXISTS reject_bulletin ON sermons; DROP FUNCTION IF EXISTS reject_bulletin()`)
	})

	sm := webauth.NewSessionManager("test-secret")
	dir := t.TempDir()
	uploader := storage.NewUploader(storage.NewLocalStorage(dir, "/uploads"), 1<<20)

	e := echo.New()
	e.HTTPErrorHandler = common.HTTPErrorHandler
	e.Use(sm.Middleware(webauth.DBRevocations(dbc)))
	e.POST("/api/sermons/upload", HandleUpload(dbc, uploader))

	pastor := dbtest.CreateUser(t, dbc, "pastor", db.UserRoleAdmin)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveSession(rr, httptest.NewRequest(http.MethodGet, "/", nil), webauth.SessionUser{
		ID:          pastor.ID.String(),
		Username:    pastor.UserName,
		AccessLevel: webauth.AccessAdmin,
	}))
	cookies := rr.Result().Cookies()

	upload := func(files map[string][]byte) *httptest.ResponseRecorder {
		req := multipartRequest(t, files)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		rr := httptest.NewRecorder()
		e.ServeHTTP(rr, req)
		return rr
	}

	// The database refuses one row: nothing is recorded and the stored
	// objects are removed again.
	rr = upload(map[string][]byte{"3월 첫째주.png": pngBytes, "rejected.png": pngBytes})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	rows, err := dbc.Queries(ctx).ListSermons(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Empty(t, storedFiles(t, dir))

	rr = upload(map[string][]byte{"3월 첫째주.png": pngBytes, "3월 둘째주.png": pngBytes})
	require.Equal(t, http.StatusOK, rr.Code)
	var body uploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Sermons, 2)

	rows, err = dbc.Queries(ctx).ListSermons(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, storedFiles(t, dir), 2)
	for _, row := range rows {
		require.Equal(t, pastor.ID, row.UploaderID)
	}
}
