package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestErrorClassifiers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsUniqueViolation(fk))
	require.True(t, IsForeignKeyViolation(fk))
	require.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	require.False(t, IsNotFound(errors.New("boom")))
}

func TestIDs(t *testing.T) {
	id := NewID()
	require.True(t, id.Valid)

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = ParseID("not-a-uuid")
	require.Error(t, err)
}

func TestUserRole(t *testing.T) {
	var r UserRole
	require.NoError(t, r.Scan("admin"))
	require.Equal(t, UserRoleAdmin, r)
	require.NoError(t, r.Scan([]byte("user")))
	require.True(t, r.Valid())
	require.False(t, UserRole("owner").Valid())
	require.Error(t, r.Scan(1))
}
