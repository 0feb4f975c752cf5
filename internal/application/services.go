package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"hanlove.church/site/internal/config"
	"hanlove.church/site/internal/mail"
	"hanlove.church/site/internal/storage"
	"hanlove.church/site/internal/verification"
)

// OpenVerificationStore returns a Redis-backed store when REDIS_ADDR is set
// and an in-memory one otherwise. The returned close func is never nil.
func OpenVerificationStore(ctx context.Context, conf config.Config) (verification.Store, func() error, error) {
	if conf.RedisAddr == "" {
		slog.Warn("REDIS_ADDR not set, verification codes are kept in memory")
		return verification.NewMemoryStore(), func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Username: conf.RedisUsername,
		Password: conf.RedisPassword,
		DB:       0,
	})

	var err error
	for i := 0; i < conf.DatabaseRetries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			slog.Info("connected to redis", "addr", conf.RedisAddr)
			return verification.NewRedisStore(rdb), rdb.Close, nil
		}
		wait := backoff(i)
		slog.Warn("redis ping failed", "error", err, "retry_in", wait)
		if serr := sleep(ctx, wait); serr != nil {
			_ = rdb.Close()
			return nil, nil, serr
		}
	}
	_ = rdb.Close()
	return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", conf.RedisAddr, err)
}

// NewMailer returns a Mailgun mailer, or a logging one without an API key.
func NewMailer(conf config.Config) mail.Mailer {
	if conf.MailgunAPIKey == "" {
		slog.Warn("MAILGUN_API_KEY not set, outgoing mail is logged only")
		return mail.LogMailer{}
	}
	return mail.NewMailgunMailer(conf.MailgunDomain, conf.MailgunAPIKey, conf.MailSenderName)
}

// NewStorage builds the configured upload backend. The second result is the
// local directory to serve at /uploads, empty for remote backends.
func NewStorage(conf config.Config) (storage.Storage, string, error) {
	switch conf.StorageBackend {
	case "s3":
		s, err := storage.NewS3Storage(storage.S3Options{
			Endpoint:  conf.S3Endpoint,
			Region:    conf.S3Region,
			Bucket:    conf.S3Bucket,
			PublicURL: conf.S3PublicURL,
			AccessKey: conf.S3AccessKey,
			SecretKey: conf.S3SecretKey,
		})
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	case "local", "":
		ls := storage.NewLocalStorage(conf.UploadDir, "/uploads")
		return ls, ls.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", conf.StorageBackend)
	}
}
