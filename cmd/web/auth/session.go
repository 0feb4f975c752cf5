package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	SessionName       = "hanlove_session"
	UserIDKey         = "user_id"
	UsernameKey       = "username"
	NameKey           = "name"
	AccessLevelKey    = "access_level"
	SessionCreatedKey = "created_at"
	VerifiedEmailKey  = "verified_email"
	ResetUserIDKey    = "reset_user_id"

	// SessionMaxAge matches the hour-long login of the old site.
	SessionMaxAge = 60 * 60
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
)

// SessionUser is what the cookie remembers about a signed-in member.
type SessionUser struct {
	ID          string
	Username    string
	Name        string
	AccessLevel AccessLevel
	CreatedAt   time.Time
}

func (u *SessionUser) IsAdmin() bool {
	return u != nil && u.AccessLevel == AccessAdmin
}

type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager signs cookies with secret and encrypts them with a key
// derived from it, so verification state never reaches the browser in clear.
func NewSessionManager(secret string) *SessionManager {
	if secret == "" {
		slog.Warn("SESSION_SECRET not set, sessions will not survive a restart")
		secret = generateSecret()
	}
	blockKey := sha256.Sum256([]byte("block:" + secret))
	return &SessionManager{
		store: sessions.NewCookieStore([]byte(secret), blockKey[:]),
	}
}

func generateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

func (sm *SessionManager) options(r *http.Request) *sessions.Options {
	isHTTPS := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
	return &sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isHTTPS,
	}
}

// update applies fn to the session values and saves the cookie.
func (sm *SessionManager) update(w http.ResponseWriter, r *http.Request, fn func(values map[interface{}]interface{})) error {
	session, _ := sm.store.Get(r, SessionName)
	fn(session.Values)
	session.Options = sm.options(r)
	return session.Save(r, w)
}

func (sm *SessionManager) values(r *http.Request) (map[interface{}]interface{}, error) {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		_, cookieErr := r.Cookie(SessionName)
		slog.Warn("failed to decode session", "error", err, "host", r.Host, "has_cookie", cookieErr == nil)
		return nil, err
	}
	return session.Values, nil
}

// SaveSession signs the member in. Earlier verification state is dropped.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, r *http.Request, user SessionUser) error {
	return sm.update(w, r, func(values map[interface{}]interface{}) {
		for k := range values {
			delete(values, k)
		}
		values[UserIDKey] = user.ID
		values[UsernameKey] = user.Username
		values[NameKey] = user.Name
		values[AccessLevelKey] = string(user.AccessLevel)
		values[SessionCreatedKey] = time.Now().UnixMicro()
	})
}

func (sm *SessionManager) GetSession(r *http.Request) (*SessionUser, error) {
	values, err := sm.values(r)
	if err != nil {
		return nil, err
	}

	uid, ok := values[UserIDKey].(string)
	if !ok || uid == "" {
		return nil, ErrNotAuthenticated
	}
	uname, ok := values[UsernameKey].(string)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	name, _ := values[NameKey].(string)

	user := &SessionUser{
		ID:          uid,
		Username:    uname,
		Name:        name,
		AccessLevel: accessLevel(values),
	}
	if micros, ok := values[SessionCreatedKey].(int64); ok {
		user.CreatedAt = time.UnixMicro(micros)
	}
	return user, nil
}

func accessLevel(values map[interface{}]interface{}) AccessLevel {
	str, ok := values[AccessLevelKey].(string)
	if !ok {
		return AccessUnauthenticated
	}
	level := AccessLevel(str)
	switch level {
	case AccessUser, AccessAdmin:
		return level
	default:
		return AccessUnauthenticated
	}
}

// SetName refreshes the display name after a profile edit.
func (sm *SessionManager) SetName(w http.ResponseWriter, r *http.Request, name string) error {
	return sm.update(w, r, func(values map[interface{}]interface{}) {
		values[NameKey] = name
	})
}

// SetVerifiedEmail records that the visitor proved ownership of email.
func (sm *SessionManager) SetVerifiedEmail(w http.ResponseWriter, r *http.Request, email string) error {
	return sm.update(w, r, func(values map[interface{}]interface{}) {
		values[VerifiedEmailKey] = email
	})
}

// VerifiedEmail returns the address proven in this session, or "".
func (sm *SessionManager) VerifiedEmail(r *http.Request) string {
	values, err := sm.values(r)
	if err != nil {
		return ""
	}
	email, _ := values[VerifiedEmailKey].(string)
	return email
}

func (sm *SessionManager) ClearVerifiedEmail(w http.ResponseWriter, r *http.Request) error {
	return sm.update(w, r, func(values map[interface{}]interface{}) {
		delete(values, VerifiedEmailKey)
	})
}

// SetPasswordReset allows this session to set a new password for userID.
func (sm *SessionManager) SetPasswordReset(w http.ResponseWriter, r *http.Request, userID string) error {
	return sm.update(w, r, func(values map[interface{}]interface{}) {
		values[ResetUserIDKey] = userID
	})
}

// PasswordResetUser returns the user id verified for a password reset, or "".
func (sm *SessionManager) PasswordResetUser(r *http.Request) string {
	values, err := sm.values(r)
	if err != nil {
		return ""
	}
	uid, _ := values[ResetUserIDKey].(string)
	return uid
}

func (sm *SessionManager) ClearPasswordReset(w http.ResponseWriter, r *http.Request) error {
	return sm.update(w, r, func(values map[interface{}]interface{}) {
		delete(values, ResetUserIDKey)
	})
}

func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := sm.store.Get(r, SessionName)
	for k := range session.Values {
		delete(session.Values, k)
	}
	session.Options = sm.options(r)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

type AccessLevel string

const (
	AccessUnauthenticated AccessLevel = "unauthenticated"
	AccessUser            AccessLevel = "user"
	AccessAdmin           AccessLevel = "admin"
)
