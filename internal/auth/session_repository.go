package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
)

// SessionRepository defines the interface for refresh-token session persistence.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// GetByToken finds a session by its refresh token. With activeOnly set,
	// revoked sessions are reported as ErrSessionNotFound.
	GetByToken(ctx context.Context, token string, activeOnly bool) (*Session, error)
	// Revoke flips an active session to revoked in a single statement.
	// It returns ErrSessionNotFound if no active session holds the token.
	Revoke(ctx context.Context, token string) error
}

// SQLiteSessionRepository implements SessionRepository using SQLite.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite-backed session repository.
func NewSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Create inserts a new active session. The ID is generated if empty.
func (r *SQLiteSessionRepository) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = "ses-" + uuid.NewString()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	session.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	session.Revoked = false
	session.RevokedAt = nil

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, refresh_token, revoked, created_at)
		 VALUES (?, ?, ?, 0, ?)`,
		session.ID, session.UserID, session.RefreshToken, now,
	)
	if err != nil {
		if database.IsUniqueViolation(err) || database.IsForeignKeyViolation(err) {
			return fmt.Errorf("creating session: %w", database.ErrConstraintViolation)
		}
		return fmt.Errorf("creating session: %w", err)
	}

	return nil
}

// GetByToken finds a session by refresh token.
func (r *SQLiteSessionRepository) GetByToken(ctx context.Context, token string, activeOnly bool) (*Session, error) {
	query := `SELECT id, user_id, refresh_token, revoked, created_at, revoked_at
		FROM sessions WHERE refresh_token = ?`
	if activeOnly {
		query += " AND revoked = 0"
	}

	var s Session
	var revoked int
	var createdAt string
	var revokedAt sql.NullString

	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&s.ID, &s.UserID, &s.RefreshToken, &revoked, &createdAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	s.Revoked = revoked != 0
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	if revokedAt.Valid {
		t, _ := time.Parse(time.RFC3339, revokedAt.String) //nolint:errcheck // format is controlled
		s.RevokedAt = &t
	}

	return &s, nil
}

// Revoke marks the active session holding token as revoked.
func (r *SQLiteSessionRepository) Revoke(ctx context.Context, token string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked = 1, revoked_at = ? WHERE refresh_token = ? AND revoked = 0`,
		now, token,
	)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}
