// Package richtext sanitizes member-supplied HTML from the notice board
// editor and strips markup from comments.
package richtext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	postPolicy    = newPostPolicy()
	commentPolicy = bluemonday.StrictPolicy()
)

// The editor emits ql-* classes for alignment, indentation and sizes, and
// inline color styles.
var editorClass = regexp.MustCompile(`^(ql-[a-z0-9-]+)( ql-[a-z0-9-]+)*$`)

func newPostPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(editorClass).Globally()
	p.AllowStyles("color", "background-color").Globally()
	p.AllowStyles("text-align").MatchingEnum("left", "right", "center", "justify").Globally()
	p.AllowElements("s", "u", "sub", "sup")
	p.AllowAttrs("spellcheck").OnElements("pre")
	return p
}

// Post sanitizes notice board HTML.
func Post(unsafe string) string {
	return strings.TrimSpace(postPolicy.Sanitize(unsafe))
}

// Comment removes all markup. The result is plain text, HTML-escaped.
func Comment(unsafe string) string {
	return strings.TrimSpace(commentPolicy.Sanitize(unsafe))
}

// IsBlank reports whether s has no visible text once markup is removed.
// The editor submits "<p><br></p>" for an empty document.
func IsBlank(s string) bool {
	if strings.Contains(s, "<img") {
		return false
	}
	text := html.UnescapeString(commentPolicy.Sanitize(s))
	return strings.TrimSpace(text) == ""
}

// PlainText returns the visible text of s with whitespace collapsed, for
// list excerpts.
func PlainText(s string) string {
	spaced := strings.NewReplacer("</p>", "</p> ", "<br>", " ", "<br/>", " ").Replace(s)
	return strings.Join(strings.Fields(html.UnescapeString(commentPolicy.Sanitize(spaced))), " ")
}
