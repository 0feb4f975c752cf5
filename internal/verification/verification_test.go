package verification

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	for range 200 {
		code, err := NewCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestService_IssueAndCheck(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	code, err := svc.Issue(ctx, PurposeSignup, "member@example.com")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "member@example.com", "000000x"), ErrMismatch)
	// A mismatch leaves the code in place.
	require.NoError(t, svc.Check(ctx, PurposeSignup, "member@example.com", code))
	// A code is consumed on success.
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "member@example.com", code), ErrNoCode)
}

func TestService_PurposesAreSeparate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	code, err := svc.Issue(ctx, PurposeResetPassword, "member@example.com")
	require.NoError(t, err)
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "member@example.com", code), ErrNoCode)
	require.NoError(t, svc.Check(ctx, PurposeResetPassword, "member@example.com", code))
}

func TestService_ReissueReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)

	require.NoError(t, store.Save(ctx, PurposeSignup, "a@b.c", "111111", TTL))
	require.NoError(t, store.Save(ctx, PurposeSignup, "a@b.c", "222222", TTL))
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "111111"), ErrMismatch)
	require.NoError(t, svc.Check(ctx, PurposeSignup, "a@b.c", "222222"))
}

func TestService_DiscardsCodeAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	require.NoError(t, store.Save(ctx, PurposeSignup, "a@b.c", "123456", TTL))

	for range MaxAttempts - 1 {
		require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "654321"), ErrMismatch)
	}
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "654321"), ErrTooManyAttempts)
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "123456"), ErrNoCode)
}

func TestService_ReissueResetsAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	require.NoError(t, store.Save(ctx, PurposeSignup, "a@b.c", "123456", TTL))
	for range MaxAttempts - 1 {
		require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "654321"), ErrMismatch)
	}

	require.NoError(t, store.Save(ctx, PurposeSignup, "a@b.c", "111111", TTL))
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "654321"), ErrMismatch)
	require.NoError(t, svc.Check(ctx, PurposeSignup, "a@b.c", "111111"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	svc := NewService(store)

	require.NoError(t, store.Save(ctx, PurposeSignup, "a@b.c", "123456", TTL))

	now = now.Add(TTL - time.Second)
	got, err := store.Load(ctx, PurposeSignup, "a@b.c")
	require.NoError(t, err)
	require.Equal(t, "123456", got)

	now = now.Add(time.Second)
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "123456"), ErrExpired)
	// Expired codes are dropped.
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, "a@b.c", "123456"), ErrNoCode)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subject := strconv.Itoa(i) + "@example.com"
			code, err := svc.Issue(ctx, PurposeSignup, subject)
			require.NoError(t, err)
			require.NoError(t, svc.Check(ctx, PurposeSignup, subject, code))
		}()
	}
	wg.Wait()
}
