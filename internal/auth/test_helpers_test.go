package auth

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
	_ "github.com/nerrad567/displayhub/migrations" // registers the schema
)

const testSecret = "test-secret-key-at-least-32-chars!"

// testDB creates a temporary SQLite database with the real schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err, "opening test db")
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(t.Context())
	require.NoError(t, err, "applying migrations")

	return db.DB
}

// testIssuer returns a token issuer with a fixed test secret.
func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, 15*time.Minute)
	require.NoError(t, err)
	return issuer
}

// testService wires a Service over a fresh database.
func testService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db := testDB(t)
	svc := NewService(ServiceDeps{
		Users:        NewUserRepository(db),
		Sessions:     NewSessionRepository(db),
		Hasher:       NewHasher(testParams),
		Tokens:       testIssuer(t),
		QueryTimeout: 5 * time.Second,
	})
	return svc, db
}

// seedTestUser inserts a test user with password "test-password" and returns it.
func seedTestUser(t *testing.T, db *sql.DB, email string) *User {
	t.Helper()

	hash, err := NewHasher(testParams).Hash("test-password")
	require.NoError(t, err, "hashing password")

	user := &User{Email: email, PasswordHash: hash}
	require.NoError(t, NewUserRepository(db).Create(t.Context(), user), "creating test user %s", email)
	return user
}
