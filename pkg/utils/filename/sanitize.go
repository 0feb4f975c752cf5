// Package filename turns uploaded file names into safe storage keys.
package filename

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// invalidCharsRe matches characters not safe for filenames or object keys.
var invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*#%&{}$!'@+=` + "`" + `\x00-\x1f]`)

var multiDash = regexp.MustCompile(`[-_]{2,}`)

// Sanitize converts an arbitrary name into a filename-safe slug. Hangul and
// other letters are kept; whitespace and reserved characters become dashes.
// The result is at most maxLen bytes (120 when maxLen <= 0) and never splits
// a multi-byte character.
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 120
	}

	s := strings.TrimSpace(name)
	s = invalidCharsRe.ReplaceAllString(s, "-")
	s = strings.Join(strings.Fields(s), "-")
	s = multiDash.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")

	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !startsRune(s[cut]) {
			cut--
		}
		s = strings.TrimRight(s[:cut], "-.")
	}
	return s
}

func startsRune(b byte) bool {
	return b&0xC0 != 0x80
}

// StorageKey builds a unique key for an upload: folder/YYYYMMDD/<uuid>-<name><ext>.
// ext comes from the detected content type; the client's extension is dropped.
func StorageKey(folder, original, ext string, now time.Time) string {
	ext = strings.ToLower(ext)
	if len(ext) > 10 || !strings.HasPrefix(ext, ".") || invalidCharsRe.MatchString(ext) {
		ext = ""
	}
	base := Sanitize(strings.TrimSuffix(path.Base(strings.ReplaceAll(original, `\`, "/")), path.Ext(original)), 60)
	if base == "" {
		base = "file"
	}
	id := uuid.NewString()[:8]
	return path.Join(folder, now.UTC().Format("20060102"), id+"-"+base+ext)
}
