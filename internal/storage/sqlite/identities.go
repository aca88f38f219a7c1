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

// CreateIdentity inserts a new identity. A duplicate phone number maps to
// apperr.ErrConflict via the unique constraint.
func (s *SQLiteStore) CreateIdentity(ctx context.Context, identity *models.Identity) error {
	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}
	if identity.CreatedAt == 0 {
		identity.CreatedAt = time.Now().Unix()
	}
	if identity.UpdatedAt == 0 {
		identity.UpdatedAt = identity.CreatedAt
	}
	if identity.Role == "" {
		identity.Role = models.RoleMember
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (id, name, phone, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		identity.ID, identity.Name, identity.Phone, identity.Role,
		identity.CreatedAt, identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("phone %s already registered: %w", identity.Phone, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// GetIdentity retrieves an identity by ID.
func (s *SQLiteStore) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	return s.scanIdentity(s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, role, created_at, updated_at FROM identities WHERE id = ?`, id))
}

// GetIdentityByPhone retrieves an identity by its unique phone number.
func (s *SQLiteStore) GetIdentityByPhone(ctx context.Context, phone string) (*models.Identity, error) {
	return s.scanIdentity(s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, role, created_at, updated_at FROM identities WHERE phone = ?`, phone))
}

func (s *SQLiteStore) scanIdentity(row *sql.Row) (*models.Identity, error) {
	identity := &models.Identity{}
	err := row.Scan(&identity.ID, &identity.Name, &identity.Phone, &identity.Role,
		&identity.CreatedAt, &identity.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("identity: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return identity, nil
}

// UpdateIdentityName updates the display name of an identity.
func (s *SQLiteStore) UpdateIdentityName(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE identities SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update identity name: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("identity %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// UpsertOTP stores the hashed one-time code for a phone, replacing any prior
// code and resetting the attempt counter.
func (s *SQLiteStore) UpsertOTP(ctx context.Context, phone, codeHash string, expiresAt int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO otp_codes (phone, code_hash, expires_at, attempts)
		 VALUES (?, ?, ?, 0)
		 ON CONFLICT(phone) DO UPDATE SET code_hash = excluded.code_hash,
		     expires_at = excluded.expires_at, attempts = 0`,
		phone, codeHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert otp: %w", err)
	}
	return nil
}

// GetOTP returns the stored code hash, expiry, and attempt count for a phone.
func (s *SQLiteStore) GetOTP(ctx context.Context, phone string) (string, int64, int, error) {
	var codeHash string
	var expiresAt int64
	var attempts int
	err := s.db.QueryRowContext(ctx,
		`SELECT code_hash, expires_at, attempts FROM otp_codes WHERE phone = ?`, phone,
	).Scan(&codeHash, &expiresAt, &attempts)
	if err == sql.ErrNoRows {
		return "", 0, 0, fmt.Errorf("otp for %s: %w", phone, apperr.ErrNotFound)
	}
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to get otp: %w", err)
	}
	return codeHash, expiresAt, attempts, nil
}

// IncrementOTPAttempts records a failed verification attempt.
func (s *SQLiteStore) IncrementOTPAttempts(ctx context.Context, phone string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE otp_codes SET attempts = attempts + 1 WHERE phone = ?`, phone)
	if err != nil {
		return fmt.Errorf("failed to increment otp attempts: %w", err)
	}
	return nil
}

// DeleteOTP removes the stored code for a phone.
func (s *SQLiteStore) DeleteOTP(ctx context.Context, phone string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE phone = ?`, phone)
	if err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}
