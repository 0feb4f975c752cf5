package auth

import (
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/internal/db"
)

// sessionUserFor maps a member row to the cookie payload.
func sessionUserFor(user *db.User) webauth.SessionUser {
	accessLevel := webauth.AccessUser
	if user.Role == db.UserRoleAdmin {
		accessLevel = webauth.AccessAdmin
	}
	return webauth.SessionUser{
		ID:          user.ID.String(),
		Username:    user.UserName,
		Name:        user.Name,
		AccessLevel: accessLevel,
	}
}
