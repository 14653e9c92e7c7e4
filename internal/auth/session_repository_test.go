package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)
	user := seedTestUser(t, db, "jo@example.com")
	ctx := context.Background()

	session := &Session{UserID: user.ID, RefreshToken: "rt-lifecycle"}
	require.NoError(t, repo.Create(ctx, session))
	assert.Regexp(t, `^ses-[0-9a-f-]{36}$`, session.ID)

	active, err := repo.GetByToken(ctx, "rt-lifecycle", true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, active.UserID)
	assert.False(t, active.Revoked)

	require.NoError(t, repo.Revoke(ctx, "rt-lifecycle"))

	_, err = repo.GetByToken(ctx, "rt-lifecycle", true)
	assert.ErrorIs(t, err, ErrSessionNotFound, "active lookup after revoke")

	revoked, err := repo.GetByToken(ctx, "rt-lifecycle", false)
	require.NoError(t, err)
	assert.True(t, revoked.Revoked)
	assert.NotNil(t, revoked.RevokedAt)

	// Revocation is one-way and not repeatable.
	assert.ErrorIs(t, repo.Revoke(ctx, "rt-lifecycle"), ErrSessionNotFound)
}

func TestSessionRepository_UnknownToken(t *testing.T) {
	repo := NewSessionRepository(testDB(t))

	assert.ErrorIs(t, repo.Revoke(context.Background(), "nope"), ErrSessionNotFound)
}

func TestSessionRepository_Constraints(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)
	user := seedTestUser(t, db, "jo@example.com")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{UserID: user.ID, RefreshToken: "same"}))

	err := repo.Create(ctx, &Session{UserID: user.ID, RefreshToken: "same"})
	assert.ErrorIs(t, err, database.ErrConstraintViolation, "duplicate token")

	err = repo.Create(ctx, &Session{UserID: "usr-ghost", RefreshToken: "orphan"})
	assert.ErrorIs(t, err, database.ErrConstraintViolation, "unknown user")
}
