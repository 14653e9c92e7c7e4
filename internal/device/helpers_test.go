package device

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
	_ "github.com/nerrad567/displayhub/migrations" // registers the schema
)

const testSecret = "firmware-secret"

// setupTestDB opens a temp-file database with the full schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "device-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(t.Context())
	require.NoError(t, err)

	return db.DB
}

// seedUser inserts a bare user row and returns its ID.
func seedUser(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(
		"INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, 'x', ?, ?)",
		id, id+"@example.com", now, now)
	require.NoError(t, err)
	return id
}

// recordingNotifier captures pairing notifications.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
	err    error
}

type notification struct {
	deviceID string
	paired   bool
}

func (n *recordingNotifier) PairingChanged(_ context.Context, deviceID string, paired bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{deviceID: deviceID, paired: paired})
	return n.err
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

var errNotifyFailed = errors.New("broker down")

// newTestService wires a Service over a fresh database.
func newTestService(t *testing.T) (*Service, *sql.DB, *recordingNotifier) {
	t.Helper()
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewService(ServiceDeps{
		Repository:         NewSQLiteRepository(db),
		RegistrationSecret: testSecret,
		Notifier:           notifier,
		QueryTimeout:       5 * time.Second,
	})
	return svc, db, notifier
}

func strPtr(s string) *string { return &s }
