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

// CreateNotification persists a new notification record.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, identity_id, kind, title, message, contribution_id, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		n.ID, n.IdentityID, n.Kind, n.Title, n.Message, nullable(n.ContributionID), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *SQLiteStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	n := &models.Notification{}
	var contributionID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, identity_id, kind, title, message, contribution_id, read, created_at
		 FROM notifications WHERE id = ?`, id,
	).Scan(&n.ID, &n.IdentityID, &n.Kind, &n.Title, &n.Message, &contributionID, &n.Read, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	n.ContributionID = contributionID.String
	return n, nil
}

// ListNotifications retrieves all notifications addressed to an identity,
// newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, identityID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, identity_id, kind, title, message, contribution_id, read, created_at
		 FROM notifications WHERE identity_id = ? ORDER BY created_at DESC, id`,
		identityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var contributionID sql.NullString
		if err := rows.Scan(&n.ID, &n.IdentityID, &n.Kind, &n.Title, &n.Message,
			&contributionID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.ContributionID = contributionID.String
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead sets the read flag.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DeleteNotification hard-deletes the record.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
