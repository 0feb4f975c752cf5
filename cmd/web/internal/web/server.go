package web

import (
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/account"
	authhandlers "hanlove.church/site/cmd/web/handlers/auth"
	"hanlove.church/site/cmd/web/handlers/board"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/handlers/content"
	"hanlove.church/site/cmd/web/handlers/sermons"
	staticpkg "hanlove.church/site/cmd/web/internal/web/utils/static"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/mail"
	"hanlove.church/site/internal/storage"
	"hanlove.church/site/internal/verification"
	assets "hanlove.church/site/static"
)

const (
	boardUploadPath  = "/api/upload"
	sermonUploadPath = "/api/sermons/upload"

	// maxSermonFiles bounds the request size of a bulletin batch.
	maxSermonFiles = 20
)

// Services are the dependencies shared by the public and admin sites.
type Services struct {
	DB       *db.DatabaseConnection
	Sessions *auth.SessionManager
	Settings *db.SettingsCache
	Codes    *verification.Service
	Mailer   mail.Mailer
	Uploader *storage.Uploader
	// UploadDir is served at /uploads when uploads are kept on local disk.
	UploadDir      string
	MaxUploadBytes int64
}

// Webserver is the public church site: pages, auth, the notice board and
// sermon bulletins.
type Webserver struct {
	*echo.Echo
	svc         Services
	staticCache *staticpkg.Cache
}

func NewWebserver(svc Services) (*Webserver, error) {
	staticCache, err := staticpkg.NewCache(assets.FS, time.Now())
	if err != nil {
		return nil, err
	}

	webserver := &Webserver{
		Echo:        echo.New(),
		svc:         svc,
		staticCache: staticCache,
	}
	webserver.HTTPErrorHandler = common.HTTPErrorHandler

	webserver.setupMiddleware()
	webserver.registerRoutes()

	return webserver, nil
}

func (s *Webserver) setupMiddleware() {
	useCommonMiddleware(s.Echo, s.svc.MaxUploadBytes*maxSermonFiles, boardUploadPath, sermonUploadPath)
	s.Use(sessionContext(s.svc.Sessions, auth.DBRevocations(s.svc.DB), s.svc.Settings)...)
}

func (s *Webserver) registerRoutes() {
	sm, dbc, sc := s.svc.Sessions, s.svc.DB, s.svc.Settings

	s.GET("/static/*", s.staticCache.Serve("/static/"))
	if s.svc.UploadDir != "" {
		s.GET("/uploads/*", serveUploads(s.svc.UploadDir))
	} else {
		slog.Info("uploads are served by the object store")
	}

	// Pages
	s.GET("/", content.HandleHomePage(dbc))
	s.GET("/index.html", content.HandleHomePage(dbc))
	s.GET("/login.html", authhandlers.HandleLoginPage())
	s.GET("/register.html", authhandlers.HandleRegisterPage(sc))
	s.GET("/findpassword.html", authhandlers.HandleFindPasswordPage())
	s.GET("/greetings.html", content.HandleGreetingsPage(dbc))
	s.GET("/notice.html", content.HandleNoticePage(dbc))
	s.GET("/sermon.html", sermons.HandlePage(dbc))
	s.GET("/mypage.html", account.HandleMyPage())
	s.GET("/admin.html", content.HandleAdminRedirect("/"+AdminPrefix))

	// Authentication
	s.POST("/login", authhandlers.HandleLogin(sm, dbc))
	s.POST("/register", authhandlers.HandleRegister(sm, dbc, sc))
	s.POST("/logout", authhandlers.HandleLogout(sm))
	s.GET("/logout", authhandlers.HandleLogoutRedirect(sm))

	authGroup := s.Group("/api/auth")
	authGroup.GET("/status", authhandlers.HandleStatus())
	authGroup.POST("/send-code", authhandlers.HandleSendCode(dbc, s.svc.Codes, s.svc.Mailer))
	authGroup.POST("/verify-code", authhandlers.HandleVerifyCode(sm, s.svc.Codes))
	authGroup.POST("/find-password/send-code", authhandlers.HandleFindPasswordSendCode(dbc, s.svc.Codes, s.svc.Mailer))
	authGroup.POST("/find-password/verify-code", authhandlers.HandleFindPasswordVerifyCode(sm, dbc, s.svc.Codes))
	authGroup.POST("/reset-password", authhandlers.HandleResetPassword(sm, dbc))

	// Account
	userGroup := s.Group("/api/user")
	userGroup.GET("/info", account.HandleInfo(dbc))
	userGroup.POST("/update-info", account.HandleUpdateInfo(sm, dbc))
	userGroup.POST("/change-password", account.HandleChangePassword(dbc))
	userGroup.POST("/delete-account", account.HandleDeleteAccount(sm, dbc))

	// Notice board
	postsGroup := s.Group("/api/posts")
	postsGroup.GET("", board.HandleListPosts(dbc))
	postsGroup.POST("", board.HandleCreatePost(dbc))
	postsGroup.GET("/:id", board.HandleShowPost(dbc))
	postsGroup.PUT("/:id", board.HandleUpdatePost(dbc))
	postsGroup.DELETE("/:id", board.HandleDeletePost(dbc))
	postsGroup.POST("/:id/comments", board.HandleCreateComment(dbc))
	postsGroup.PUT("/:id/comments/:commentId", board.HandleUpdateComment(dbc))
	postsGroup.DELETE("/:id/comments/:commentId", board.HandleDeleteComment(dbc))
	s.POST(boardUploadPath, board.HandleUpload(s.svc.Uploader))

	// Sermons and content pages
	s.GET("/api/sermons", sermons.HandleList(dbc))
	s.POST(sermonUploadPath, sermons.HandleUpload(dbc, s.svc.Uploader))
	s.GET("/api/content/:pageName", content.HandleContent(dbc))
}

// serveUploads serves member uploads from dir. Responses are sandboxed and
// never content-sniffed, so a stored file cannot run script on this origin.
func serveUploads(dir string) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox")
		name := path.Clean("/" + c.Param("*"))
		if name == "/" {
			return echo.ErrNotFound
		}
		return c.File(filepath.Join(dir, filepath.FromSlash(name)))
	}
}

// health answers load balancer health checks; it fails while the database is
// unreachable.
func health(dbc *db.DatabaseConnection) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := dbc.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
		_, _ = w.Write([]byte("ok"))
	})
}
