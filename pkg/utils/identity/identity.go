// Package identity canonicalizes the identifiers members sign in with.
package identity

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var fold = cases.Fold()

var ErrInvalidUsername = errors.New("username cannot contain @")

// Email returns the comparison form of an email address.
func Email(s string) string {
	return fold.String(norm.NFC.String(strings.TrimSpace(s)))
}

// Username returns the comparison form of a login id.
func Username(s string) string {
	return fold.String(norm.NFKC.String(strings.TrimSpace(s)))
}

// DisplayName normalizes a member's name for storage without changing case.
// Names typed on some keyboards arrive as decomposed jamo.
func DisplayName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// LooksLikeEmail is the cheap test used to decide whether a login id was
// given as an email address.
func LooksLikeEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

// ValidUsername reports whether s can be used as a login id. An "@" would
// send the login to the email lookup, so it is refused in any width.
func ValidUsername(s string) bool {
	return !strings.ContainsRune(Username(s), '@')
}
