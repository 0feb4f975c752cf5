package static

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Entry holds the cache validators for one embedded asset.
type Entry struct {
	ETag         string
	Size         int64
	LastModified time.Time
}

// Cache serves an embedded filesystem with ETag and Last-Modified
// validators computed once at startup. It is read-only after construction.
type Cache struct {
	entries map[string]Entry
	fs      fs.FS
}

// NewCache hashes every file in fsys. startedAt stands in for the zero
// modification times that embed.FS reports.
func NewCache(fsys fs.FS, startedAt time.Time) (*Cache, error) {
	c := &Cache{
		entries: make(map[string]Entry),
		fs:      fsys,
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		modTime := info.ModTime()
		if modTime.IsZero() {
			modTime = startedAt
		}

		c.entries[p] = Entry{
			ETag:         fmt.Sprintf("%q", fmt.Sprintf("%x", h.Sum(nil))),
			Size:         info.Size(),
			LastModified: modTime.UTC().Truncate(time.Second),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index static assets: %w", err)
	}
	return c, nil
}

// Lookup returns the validators for an asset path relative to the cache root.
func (s *Cache) Lookup(name string) (Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

func cacheControl(name string) string {
	ext := path.Ext(name)
	// dist assets are not fingerprinted.
	if strings.HasPrefix(name, "dist/") && (ext == ".css" || ext == ".js") {
		return "no-cache, must-revalidate"
	}
	switch ext {
	case ".css", ".js":
		return "public, max-age=86400, stale-while-revalidate=3600"
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".woff", ".woff2":
		return "public, max-age=31536000, stale-while-revalidate=86400"
	default:
		return "public, max-age=3600, stale-while-revalidate=300"
	}
}

// Serve returns a handler for the assets mounted under prefix ("/static/").
func (s *Cache) Serve(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := strings.TrimPrefix(c.Request().URL.Path, prefix)
		e, ok := s.entries[name]
		if !ok {
			return echo.ErrNotFound
		}

		req := c.Request()
		if inm := req.Header.Get("If-None-Match"); inm != "" && inm == e.ETag {
			return c.NoContent(http.StatusNotModified)
		}
		if ims := req.Header.Get(echo.HeaderIfModifiedSince); ims != "" {
			if t, err := http.ParseTime(ims); err == nil && !e.LastModified.After(t) {
				return c.NoContent(http.StatusNotModified)
			}
		}

		f, err := s.fs.Open(name)
		if err != nil {
			return echo.ErrNotFound
		}
		defer f.Close()

		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, cacheControl(name))
		h.Set("ETag", e.ETag)
		h.Set(echo.HeaderLastModified, e.LastModified.Format(http.TimeFormat))

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = echo.MIMEOctetStream
		}
		return c.Stream(http.StatusOK, contentType, f)
	}
}
