package filename

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	require.Equal(t, "2024-주보-3월", Sanitize("  2024 주보: 3월  ", 0))
	require.Equal(t, "a-b", Sanitize("a///b", 0))
	require.Equal(t, "hidden", Sanitize("..hidden..", 0))
	require.Equal(t, "", Sanitize("   ", 0))
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	out := Sanitize(strings.Repeat("한", 50), 10)
	require.True(t, utf8.ValidString(out))
	require.LessOrEqual(t, len(out), 10)
	require.Equal(t, "한한한", out)
}

func TestStorageKey(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	key := StorageKey("church_sermons", "3월 둘째주 주보.JPG", ".JPG", now)
	require.True(t, strings.HasPrefix(key, "church_sermons/20240310/"), key)
	require.True(t, strings.HasSuffix(key, "-3월-둘째주-주보.jpg"), key)

	other := StorageKey("church_sermons", "3월 둘째주 주보.JPG", ".jpg", now)
	require.NotEqual(t, key, other)

	key = StorageKey("church_notices", `C:\Users\me\../../etc/passwd`, "", now)
	require.True(t, strings.HasPrefix(key, "church_notices/20240310/"), key)
	require.NotContains(t, key, "..")
	require.True(t, strings.HasSuffix(key, "-passwd"), key)
}

func TestStorageKey_ExtensionComesFromCaller(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	key := StorageKey("church_notices", "photo.html", ".gif", now)
	require.True(t, strings.HasSuffix(key, "-photo.gif"), key)
	require.NotContains(t, key, ".html")

	for _, ext := range []string{"gif", ".a/b", ".toolongextension"} {
		key = StorageKey("church_notices", "photo.png", ext, now)
		require.True(t, strings.HasSuffix(key, "-photo"), key)
	}
}
