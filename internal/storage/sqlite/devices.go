package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/models"
)

// CreateDevice persists a new device credential record.
func (s *SQLiteStore) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.ID == "" {
		device.ID = uuid.New().String()
	}
	if device.CreatedAt == 0 {
		device.CreatedAt = time.Now().Unix()
	}
	if device.LastSeenAt == 0 {
		device.LastSeenAt = device.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO devices (id, identity_id, token_hash, name, created_at, last_seen_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		device.ID, device.IdentityID, device.TokenHash, device.Name,
		device.CreatedAt, device.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

// GetDeviceByTokenHash looks up a device credential by the hash of its token.
func (s *SQLiteStore) GetDeviceByTokenHash(ctx context.Context, tokenHash string) (*models.Device, error) {
	device := &models.Device{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, identity_id, token_hash, name, created_at, last_seen_at, revoked_at
		 FROM devices WHERE token_hash = ?`, tokenHash,
	).Scan(&device.ID, &device.IdentityID, &device.TokenHash, &device.Name,
		&device.CreatedAt, &device.LastSeenAt, &device.RevokedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("device: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return device, nil
}

// TouchDevice refreshes the last-seen timestamp after a successful validation.
func (s *SQLiteStore) TouchDevice(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE devices SET last_seen_at = ? WHERE id = ?`, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to touch device: %w", err)
	}
	return nil
}

// RevokeDeviceByTokenHash marks a credential revoked. Revoking an unknown or
// already-revoked token is not an error; logout is idempotent.
func (s *SQLiteStore) RevokeDeviceByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE devices SET revoked_at = ? WHERE token_hash = ? AND revoked_at = 0`,
		time.Now().Unix(), tokenHash)
	if err != nil {
		return fmt.Errorf("failed to revoke device: %w", err)
	}
	return nil
}
