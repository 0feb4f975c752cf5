package format

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// TimeAgo renders how long ago t was, in Korean ("3일 전"). Months are 30
// days and years 365.
func TimeAgo(now, t time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	steps := []struct {
		size int64
		unit string
	}{
		{31536000, "년"},
		{2592000, "달"},
		{86400, "일"},
		{3600, "시간"},
		{60, "분"},
	}
	for _, s := range steps {
		if n := seconds / s.size; n >= 1 && seconds > s.size {
			return strconv.FormatInt(n, 10) + s.unit + " 전"
		}
	}
	return "방금 전"
}

// Date formats t as the bulletin date shown under each upload.
func Date(t time.Time) string {
	return t.Format("2006.01.02")
}

// Bytes returns a human-readable size (e.g. "1.5 MB").
func Bytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.Bytes(uint64(b))
}

// Count formats a dashboard counter with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Truncate returns s cut to max runes with "..." appended.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}
