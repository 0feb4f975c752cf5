package static

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"testing/fstest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	assets "hanlove.church/site/static"
)

var started = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewCache_EmbeddedAssets(t *testing.T) {
	cache, err := NewCache(assets.FS, started)
	require.NoError(t, err)

	ci, ok := cache.Lookup("dist/main.css")
	require.True(t, ok, "expected dist/main.css to be embedded")
	require.True(t, regexp.MustCompile(`^"[0-9a-f]{64}"$`).MatchString(ci.ETag))
	require.Positive(t, ci.Size)
	require.Equal(t, started, ci.LastModified)

	_, ok = cache.Lookup("dist/app.js")
	require.True(t, ok)
}

func serve(t *testing.T, cache *Cache, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/static/*", cache.Serve("/static/"))
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestServe(t *testing.T) {
	fsys := fstest.MapFS{
		"dist/app.js":  {Data: []byte("console.log(1)")},
		"img/logo.png": {Data: []byte("png"), ModTime: started.Add(time.Hour)},
	}
	cache, err := NewCache(fsys, started)
	require.NoError(t, err)

	rr := serve(t, cache, httptest.NewRequest(http.MethodGet, "/static/dist/app.js", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "console.log(1)", rr.Body.String())
	require.Equal(t, "no-cache, must-revalidate", rr.Header().Get(echo.HeaderCacheControl))
	require.Contains(t, rr.Header().Get(echo.HeaderContentType), "javascript")
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/static/dist/app.js", nil)
	req.Header.Set("If-None-Match", etag)
	rr = serve(t, cache, req)
	require.Equal(t, http.StatusNotModified, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/static/img/logo.png", nil)
	req.Header.Set(echo.HeaderIfModifiedSince, started.Add(2*time.Hour).Format(http.TimeFormat))
	rr = serve(t, cache, req)
	require.Equal(t, http.StatusNotModified, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/static/img/logo.png", nil)
	req.Header.Set(echo.HeaderIfModifiedSince, started.Format(http.TimeFormat))
	rr = serve(t, cache, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "public, max-age=31536000, stale-while-revalidate=86400", rr.Header().Get(echo.HeaderCacheControl))

	rr = serve(t, cache, httptest.NewRequest(http.MethodGet, "/static/missing.css", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
