package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Resilience tests verify that the auth subsystem handles failure scenarios
// gracefully. These tests use the TestResilience_ prefix for easy filtering:
//
//	go test -run TestResilience -race ./internal/auth/...

// TestResilience_ConcurrentLogout verifies that when several requests revoke
// the same refresh token at once, exactly one succeeds.
func TestResilience_ConcurrentLogout(t *testing.T) {
	svc, db := testService(t)
	seedTestUser(t, db, "race@example.com")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "race@example.com", "test-password")
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	var succeeded, notFound atomic.Int32

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Logout(ctx, pair.RefreshToken)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrSessionNotFound):
				notFound.Add(1)
			default:
				assert.NoError(t, err, "unexpected Logout error")
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load(), "successful logouts")
	assert.EqualValues(t, workers-1, notFound.Load(), "not-found logouts")
}

// TestResilience_ConcurrentRegistration verifies that a race on the same
// email yields one account and ErrEmailExists for everyone else.
func TestResilience_ConcurrentRegistration(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	const workers = 6
	var wg sync.WaitGroup
	var created, conflicts atomic.Int32

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "same@example.com", "longenough")
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrEmailExists):
				conflicts.Add(1)
			default:
				assert.NoError(t, err, "unexpected Register error")
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, created.Load(), "accounts created")
	assert.EqualValues(t, workers-1, conflicts.Load(), "email conflicts")
}

// TestResilience_ContextCancellation_RepositoryOps verifies that repository
// operations respect context cancellation and return clean errors.
func TestResilience_ContextCancellation_RepositoryOps(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	sessions := NewSessionRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := users.GetByEmail(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound, "GetByEmail should surface the context error")

	assert.Error(t, users.Create(ctx, &User{Email: "cancel@example.com", PasswordHash: "x"}))

	err = sessions.Revoke(ctx, "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound, "Revoke should surface the context error")
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	_, ok := IdentityFromContext(ctx)
	require.False(t, ok, "empty context should carry no identity")

	ctx = WithIdentity(ctx, Identity{UserID: "usr-1", Email: "a@b.co"})
	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "usr-1", id.UserID)
}
