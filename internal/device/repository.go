package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
)

// Repository defines the interface for device persistence operations.
// Every owner-scoped method matches on both device ID and user ID, so a
// device owned by someone else is reported as ErrDeviceNotFound.
type Repository interface {
	// Create inserts a new unpaired device.
	// Returns ErrPairingCodeTaken if the pairing code is already in use.
	Create(ctx context.Context, device *Device) error

	// GetByPairingCode finds a device by code regardless of pairing state.
	GetByPairingCode(ctx context.Context, code string) (*Device, error)

	// GetByIDForUser retrieves a device owned by userID.
	GetByIDForUser(ctx context.Context, id, userID string) (*Device, error)

	// ListForUser returns every device owned by userID, oldest first.
	ListForUser(ctx context.Context, userID string) ([]Device, error)

	// SetOwner assigns the device to userID, replacing any current owner.
	SetOwner(ctx context.Context, id, userID string) (*Device, error)

	// ClearOwner unpairs the device if, and only if, userID owns it.
	ClearOwner(ctx context.Context, id, userID string) (*Device, error)

	// Update applies a patch to a device owned by userID.
	Update(ctx context.Context, id, userID string, patch Patch) (*Device, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = "id, name, pairing_code, user_id, current_layout_id, created_at, updated_at"

// Create inserts a new device. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, device *Device) error {
	if device.ID == "" {
		device.ID = "dev-" + uuid.NewString()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	device.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	device.UpdatedAt = device.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, name, pairing_code, user_id, current_layout_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		device.ID, device.Name, device.PairingCode,
		nullable(device.UserID), nullable(device.CurrentLayoutID),
		now, now,
	)
	if err != nil {
		if database.IsUniqueViolationOn(err, "devices.pairing_code") {
			return fmt.Errorf("%w: %w", ErrPairingCodeTaken, database.ErrConstraintViolation)
		}
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("creating device: %w", database.ErrConstraintViolation)
		}
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

// GetByPairingCode finds a device by its pairing code.
func (r *SQLiteRepository) GetByPairingCode(ctx context.Context, code string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE pairing_code = ?", code)
	return scanDevice(row, "querying device by pairing code")
}

// GetByIDForUser retrieves a device owned by userID.
func (r *SQLiteRepository) GetByIDForUser(ctx context.Context, id, userID string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = ? AND user_id = ?", id, userID)
	return scanDevice(row, "querying device by id")
}

// ListForUser returns the devices owned by userID.
func (r *SQLiteRepository) ListForUser(ctx context.Context, userID string) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE user_id = ? ORDER BY created_at, rowid", userID)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows, "scanning device")
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// SetOwner assigns the device to userID in a single statement.
func (r *SQLiteRepository) SetOwner(ctx context.Context, id, userID string) (*Device, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	row := r.db.QueryRowContext(ctx,
		`UPDATE devices SET user_id = ?, updated_at = ? WHERE id = ?
		 RETURNING `+deviceColumns,
		userID, now, id)
	d, err := scanDevice(row, "pairing device")
	if err != nil && database.IsForeignKeyViolation(err) {
		return nil, fmt.Errorf("pairing device: %w", database.ErrConstraintViolation)
	}
	return d, err
}

// ClearOwner unpairs the device when userID owns it, in a single statement.
func (r *SQLiteRepository) ClearOwner(ctx context.Context, id, userID string) (*Device, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	row := r.db.QueryRowContext(ctx,
		`UPDATE devices SET user_id = NULL, updated_at = ? WHERE id = ? AND user_id = ?
		 RETURNING `+deviceColumns,
		now, id, userID)
	return scanDevice(row, "disconnecting device")
}

// Update applies patch to a device owned by userID. updated_at is always refreshed.
func (r *SQLiteRepository) Update(ctx context.Context, id, userID string, patch Patch) (*Device, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.SetLayout {
		sets = append(sets, "current_layout_id = ?")
		args = append(args, nullable(patch.CurrentLayoutID))
	}
	args = append(args, id, userID)

	// SET clause is assembled from fixed column names only.
	query := "UPDATE devices SET " + strings.Join(sets, ", ") + //nolint:gosec // no user input in SQL string
		" WHERE id = ? AND user_id = ? RETURNING " + deviceColumns

	return scanDevice(r.db.QueryRowContext(ctx, query, args...), "updating device")
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner, op string) (*Device, error) {
	var d Device
	var userID, layoutID sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&d.ID, &d.Name, &d.PairingCode, &userID, &layoutID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if userID.Valid {
		d.UserID = &userID.String
	}
	if layoutID.Valid {
		d.CurrentLayoutID = &layoutID.String
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &d, nil
}

// nullable maps a nil pointer to SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
