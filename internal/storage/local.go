package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes uploads below a directory that the web server also
// serves at BaseURL.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(uploadDir, baseURL string) *LocalStorage {
	return &LocalStorage{dir: uploadDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (ls *LocalStorage) Dir() string { return ls.dir }

func (ls *LocalStorage) path(key string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(ls.dir, filepath.FromSlash(key)), nil
}

func (ls *LocalStorage) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (*Object, error) {
	dstPath, err := ls.path(key)
	if err != nil {
		return nil, err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	n, err := io.Copy(dst, body)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &Object{
		Key:         key,
		URL:         ls.baseURL + "/" + key,
		ContentType: contentType,
		Size:        n,
	}, nil
}

func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	p, err := ls.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
