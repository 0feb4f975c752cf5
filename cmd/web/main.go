package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/internal/web"
	"hanlove.church/site/internal/application"
	"hanlove.church/site/internal/config"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/internal/storage"
	"hanlove.church/site/internal/verification"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if conf.DatabaseRetries <= 0 {
		conf.DatabaseRetries = 10
	}

	pool, err := application.OpenDBPoolWithRetry(ctx, *conf)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	dbc, err := db.NewDatabaseConnection(ctx, pool)
	if err != nil {
		slog.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer dbc.Close()

	if err := dbc.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	settingsCache, err := db.NewSettingsCache(ctx, dbc)
	if err != nil {
		slog.Error("failed to load instance settings", "error", err)
		os.Exit(1)
	}

	codeStore, closeCodes, err := application.OpenVerificationStore(ctx, *conf)
	if err != nil {
		slog.Error("failed to open verification store", "error", err)
		os.Exit(1)
	}
	defer closeCodes()

	store, uploadDir, err := application.NewStorage(*conf)
	if err != nil {
		slog.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}
	maxUpload, err := conf.MaxUploadBytes()
	if err != nil {
		slog.Error("invalid upload limit", "error", err)
		os.Exit(1)
	}

	router, err := web.NewRouter(web.Services{
		DB:             dbc,
		Sessions:       auth.NewSessionManager(conf.SessionSecret),
		Settings:       settingsCache,
		Codes:          verification.NewService(codeStore),
		Mailer:         application.NewMailer(*conf),
		Uploader:       storage.NewUploader(store, maxUpload),
		UploadDir:      uploadDir,
		MaxUploadBytes: maxUpload,
	})
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(conf.WebServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
