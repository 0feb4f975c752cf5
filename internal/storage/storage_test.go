package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gabriel-vasile/mimetype"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
}

func TestLocalStorage_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir, "/uploads/")

	obj, err := ls.Put(context.Background(), "a/b/c.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	require.Equal(t, "/uploads/a/b/c.txt", obj.URL)
	require.Equal(t, int64(5), obj.Size)

	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	require.NoError(t, ls.Delete(context.Background(), "a/b/c.txt"))
	_, err = os.Stat(filepath.Join(dir, "a", "b", "c.txt"))
	require.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	require.NoError(t, ls.Delete(context.Background(), "a/b/c.txt"))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	ls := NewLocalStorage(t.TempDir(), "/uploads")
	for _, key := range []string{"../x", "/etc/passwd", ""} {
		_, err := ls.Put(context.Background(), key, strings.NewReader("x"), 1, "text/plain")
		require.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestUploader_SavesImages(t *testing.T) {
	dir := t.TempDir()
	u := NewUploader(NewLocalStorage(dir, "/uploads"), 1<<20)
	u.Now = fixedNow

	obj, err := u.Save(context.Background(), fileHeader(t, "주보 3월.png", pngBytes), FolderSermons, Bulletins)
	require.NoError(t, err)
	require.Equal(t, "image/png", obj.ContentType)
	require.True(t, strings.HasPrefix(obj.Key, "church_sermons/20240310/"), obj.Key)
	require.True(t, strings.HasSuffix(obj.Key, "-주보-3월.png"), obj.Key)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	require.Equal(t, pngBytes, data)
}

func TestUploader_RejectsUnsupportedTypes(t *testing.T) {
	u := NewUploader(NewLocalStorage(t.TempDir(), "/uploads"), 1<<20)

	_, err := u.Save(context.Background(), fileHeader(t, "evil.png", []byte("just text")), FolderNotices, Images)
	require.ErrorIs(t, err, ErrUnsupportedType)

	// PDF is a bulletin but not an image.
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	_, err = u.Save(context.Background(), fileHeader(t, "bulletin.pdf", pdf), FolderNotices, Images)
	require.ErrorIs(t, err, ErrUnsupportedType)
	_, err = u.Save(context.Background(), fileHeader(t, "bulletin.pdf", pdf), FolderSermons, Bulletins)
	require.NoError(t, err)
}

func TestUploader_ExtensionFollowsContent(t *testing.T) {
	dir := t.TempDir()
	u := NewUploader(NewLocalStorage(dir, "/uploads"), 1<<20)

	polyglot := []byte("GIF89a<html><script>alert(document.cookie)</script></html>")
	for _, accept := range []Accept{Images, Bulletins} {
		obj, err := u.Save(context.Background(), fileHeader(t, "evil.html", polyglot), FolderNotices, accept)
		require.NoError(t, err)
		require.Equal(t, "image/gif", obj.ContentType)
		require.True(t, strings.HasSuffix(obj.Key, "-evil.gif"), obj.Key)
		require.NotContains(t, obj.Key, ".html")
	}
}

func TestUploader_RejectsSVG(t *testing.T) {
	u := NewUploader(NewLocalStorage(t.TempDir(), "/uploads"), 1<<20)

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)
	_, err := u.Save(context.Background(), fileHeader(t, "logo.svg", svg), FolderNotices, Images)
	require.ErrorIs(t, err, ErrUnsupportedType)
	_, err = u.Save(context.Background(), fileHeader(t, "logo.png", svg), FolderSermons, Bulletins)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploader_RejectsLargeFiles(t *testing.T) {
	u := NewUploader(NewLocalStorage(t.TempDir(), "/uploads"), 4)
	_, err := u.Save(context.Background(), fileHeader(t, "a.png", pngBytes), FolderNotices, Images)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestAcceptors(t *testing.T) {
	require.True(t, Images(mimetype.Detect(pngBytes)))
	require.False(t, Images(mimetype.Detect([]byte("plain"))))
	require.True(t, Bulletins(mimetype.Detect([]byte("%PDF-1.7\n"))))
}

type fakeS3 struct {
	s3iface.S3API
	put     *s3.PutObjectInput
	body    []byte
	deleted string
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.put = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(ctx aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = aws.StringValue(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_PutAndDelete(t *testing.T) {
	fake := &fakeS3{}
	ss := newS3Storage(fake, "church", "https://cdn.example.com/")

	body := strings.NewReader("bulletin")
	_, _ = body.Seek(3, io.SeekStart)

	obj, err := ss.Put(context.Background(), "church_sermons/x.png", body, 8, "image/png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/church_sermons/x.png", obj.URL)
	require.Equal(t, "church", aws.StringValue(fake.put.Bucket))
	require.Equal(t, "image/png", aws.StringValue(fake.put.ContentType))
	require.Equal(t, s3.ObjectCannedACLPublicRead, aws.StringValue(fake.put.ACL))
	require.Equal(t, "bulletin", string(fake.body))

	require.NoError(t, ss.Delete(context.Background(), "church_sermons/x.png"))
	require.Equal(t, "church_sermons/x.png", fake.deleted)

	_, err = ss.Put(context.Background(), "/abs", strings.NewReader(""), 0, "")
	require.ErrorIs(t, err, ErrInvalidKey)
}
