package board

import (
	"github.com/jackc/pgx/v5/pgtype"
	webauth "hanlove.church/site/cmd/web/auth"
)

// canModify reports whether user may edit or delete content by authorID.
// Content of deleted members has no author and is left to admins.
func canModify(user *webauth.SessionUser, userID, authorID pgtype.UUID) bool {
	if user.IsAdmin() {
		return true
	}
	return authorID.Valid && authorID == userID
}

func authorName(user *webauth.SessionUser) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Username
}
