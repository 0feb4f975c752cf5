// Package dbtest runs tests against the Postgres database named by
// TEST_DATABASE_URL. Tests are skipped when it is unset.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"hanlove.church/site/internal/db"
)

// lockKey serializes test packages that share the database; go test runs
// packages in parallel.
const lockKey = 0x68616e6c6f7665

const resetSQL = `TRUNCATE comments, posts, sermons, content_pages, users, titles, instance_settings`

// Open migrates the test database, empties it and returns a connection.
// The database is held exclusively until the test ends.
func Open(t testing.TB) *db.DatabaseConnection {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", lockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockKey)
		conn.Release()
	})

	dbc := &db.DatabaseConnection{Pool: pool}
	require.NoError(t, dbc.Migrate(ctx))
	_, err = pool.Exec(ctx, resetSQL)
	require.NoError(t, err)
	return dbc
}

// CreateUser inserts a verified member with password "password123".
func CreateUser(t testing.TB, dbc *db.DatabaseConnection, username string, role db.UserRole) *db.User {
	t.Helper()
	ctx := context.Background()
	u, err := dbc.Queries(ctx).NewUser(ctx, db.NewUserParams{
		Username:      username,
		Name:          username,
		Email:         username + "@example.com",
		Password:      "password123",
		Role:          role,
		EmailVerified: true,
	})
	require.NoError(t, err)
	return u
}
