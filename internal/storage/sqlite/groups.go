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

// CreateGroup persists a new group and the admin's membership row in one
// transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Privacy == "" {
		group.Privacy = models.PrivacyStandard
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, admin_id, privacy, created_at) VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.AdminID, group.Privacy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (group_id, identity_id, contributed_amount, status, joined_at)
		 VALUES (?, ?, '0', ?, ?)`,
		group.ID, group.AdminID, models.MembershipActive, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, admin_id, privacy, created_at FROM groups WHERE id = ?`, id,
	).Scan(&group.ID, &group.Name, &group.AdminID, &group.Privacy, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroupsForIdentity retrieves all groups the identity is an active member of.
func (s *SQLiteStore) ListGroupsForIdentity(ctx context.Context, identityID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.admin_id, g.privacy, g.created_at
		 FROM groups g
		 JOIN memberships m ON m.group_id = g.id
		 WHERE m.identity_id = ? AND m.status = ?
		 ORDER BY g.created_at DESC`,
		identityID, models.MembershipActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.AdminID, &group.Privacy, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// CreateMembership links an identity to a group. A duplicate pair maps to
// apperr.ErrConflict.
func (s *SQLiteStore) CreateMembership(ctx context.Context, membership *models.Membership) error {
	if membership.JoinedAt == 0 {
		membership.JoinedAt = time.Now().Unix()
	}
	if membership.Status == "" {
		membership.Status = models.MembershipActive
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (group_id, identity_id, contributed_amount, status, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		membership.GroupID, membership.IdentityID, membership.ContributedAmount,
		membership.Status, membership.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("already a member: %w", apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// GetMembership retrieves the membership for a (group, identity) pair.
func (s *SQLiteStore) GetMembership(ctx context.Context, groupID, identityID string) (*models.Membership, error) {
	membership := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		`SELECT group_id, identity_id, contributed_amount, status, joined_at
		 FROM memberships WHERE group_id = ? AND identity_id = ?`,
		groupID, identityID,
	).Scan(&membership.GroupID, &membership.IdentityID, &membership.ContributedAmount,
		&membership.Status, &membership.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("membership: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return membership, nil
}
