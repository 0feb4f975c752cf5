// Package storage keeps uploaded files on local disk or in an S3-compatible
// bucket and hands back the public URL for each.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"hanlove.church/site/pkg/utils/filename"
)

// Upload folders.
const (
	FolderSermons = "church_sermons"
	FolderNotices = "church_notices"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrInvalidKey      = errors.New("invalid storage key")
)

// Object describes a stored file.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

type Storage interface {
	// Put stores body under key. body is rewound before it is read.
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// Accept decides whether a sniffed content type may be stored.
type Accept func(m *mimetype.MIME) bool

// imageTypes are the raster formats browsers render inline. SVG is left
// out because it can carry script.
var imageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp"}

// Images accepts raster images only.
func Images(m *mimetype.MIME) bool {
	return mimetype.EqualsAny(m.String(), imageTypes...)
}

// Bulletins accepts images and PDF.
func Bulletins(m *mimetype.MIME) bool {
	return Images(m) || m.Is("application/pdf")
}

// Uploader stores multipart uploads after sniffing their content.
type Uploader struct {
	Storage  Storage
	MaxBytes int64
	Now      func() time.Time
}

func NewUploader(s Storage, maxBytes int64) *Uploader {
	return &Uploader{Storage: s, MaxBytes: maxBytes, Now: time.Now}
}

// Save stores fh below folder when accept allows its sniffed type.
func (u *Uploader) Save(ctx context.Context, fh *multipart.FileHeader, folder string, accept Accept) (*Object, error) {
	if u.MaxBytes > 0 && fh.Size > u.MaxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	m, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff uploaded file: %w", err)
	}
	if accept != nil && !accept(m) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, m.String())
	}

	// The extension follows the sniffed type so the object is always served
	// as what it was accepted as.
	key := filename.StorageKey(folder, fh.Filename, m.Extension(), u.Now())
	obj, err := u.Storage.Put(ctx, key, src, fh.Size, m.String())
	if err != nil {
		return nil, err
	}
	slog.Info("stored upload", "original", fh.Filename, "key", obj.Key, "type", obj.ContentType, "size", obj.Size)
	return obj, nil
}
