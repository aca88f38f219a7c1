package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/money"
)

// CreateContribution persists a new pending contribution.
func (s *SQLiteStore) CreateContribution(ctx context.Context, c *models.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	c.Status = models.ContributionPending

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contributions
		 (id, group_id, project_id, identity_id, amount, status, proof_ref, txn_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.GroupID, nullable(c.ProjectID), c.IdentityID, c.Amount, c.Status,
		nullable(c.ProofRef), nullable(c.TxnRef), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	return nil
}

// GetContribution retrieves a contribution by ID.
func (s *SQLiteStore) GetContribution(ctx context.Context, id string) (*models.Contribution, error) {
	return scanContribution(s.db.QueryRowContext(ctx, selectContribution+` WHERE id = ?`, id))
}

// ConfirmContribution performs the atomic pending->confirmed transition.
//
// The status flip is a conditional UPDATE guarded on status = 'pending'; its
// rows-affected count decides the race between two concurrent decisions, so a
// contribution can never be applied to the aggregates twice. The project
// collected total and the submitter's membership total are incremented in the
// same transaction; a partial update is never observable.
func (s *SQLiteStore) ConfirmContribution(ctx context.Context, id, adminID string) (*models.Contribution, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		`UPDATE contributions SET status = ?, decided_by = ?, decided_at = ?
		 WHERE id = ? AND status = ?`,
		models.ContributionConfirmed, adminID, now, id, models.ContributionPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm contribution: %w", err)
	}
	if err := s.checkTransitioned(ctx, tx, res, id); err != nil {
		return nil, err
	}

	c, err := scanContribution(tx.QueryRowContext(ctx, selectContribution+` WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if c.ProjectID != "" {
		if err := addToProject(ctx, tx, c.ProjectID, c.Amount); err != nil {
			return nil, err
		}
	}
	if err := addToMembership(ctx, tx, c.GroupID, c.IdentityID, c.Amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

// RejectContribution performs the atomic pending->rejected transition.
// No balance is touched.
func (s *SQLiteStore) RejectContribution(ctx context.Context, id, adminID, reason string) (*models.Contribution, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		`UPDATE contributions SET status = ?, decided_by = ?, decided_at = ?, reject_reason = ?
		 WHERE id = ? AND status = ?`,
		models.ContributionRejected, adminID, now, nullable(reason), id, models.ContributionPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reject contribution: %w", err)
	}
	if err := s.checkTransitioned(ctx, tx, res, id); err != nil {
		return nil, err
	}

	c, err := scanContribution(tx.QueryRowContext(ctx, selectContribution+` WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

// checkTransitioned distinguishes a missing contribution from one already in
// a terminal state when the conditional update matched no rows.
func (s *SQLiteStore) checkTransitioned(ctx context.Context, tx *sql.Tx, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM contributions WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("contribution %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check contribution status: %w", err)
	}
	return fmt.Errorf("contribution %s is already %s: %w", id, status, apperr.ErrInvalidTransition)
}

func addToProject(ctx context.Context, tx *sql.Tx, projectID string, amount money.Amount) error {
	var collected money.Amount
	err := tx.QueryRowContext(ctx,
		`SELECT collected_amount FROM projects WHERE id = ?`, projectID).Scan(&collected)
	if err == sql.ErrNoRows {
		return fmt.Errorf("project %s: %w", projectID, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read collected amount: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE projects SET collected_amount = ? WHERE id = ?`,
		collected.Add(amount), projectID)
	if err != nil {
		return fmt.Errorf("failed to update collected amount: %w", err)
	}
	return nil
}

func addToMembership(ctx context.Context, tx *sql.Tx, groupID, identityID string, amount money.Amount) error {
	var contributed money.Amount
	err := tx.QueryRowContext(ctx,
		`SELECT contributed_amount FROM memberships WHERE group_id = ? AND identity_id = ?`,
		groupID, identityID).Scan(&contributed)
	if err == sql.ErrNoRows {
		return fmt.Errorf("membership: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read contributed amount: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE memberships SET contributed_amount = ? WHERE group_id = ? AND identity_id = ?`,
		contributed.Add(amount), groupID, identityID)
	if err != nil {
		return fmt.Errorf("failed to update contributed amount: %w", err)
	}
	return nil
}

// ListContributionsByGroup retrieves all contributions in a group, newest first.
func (s *SQLiteStore) ListContributionsByGroup(ctx context.Context, groupID string) ([]*models.Contribution, error) {
	return s.listContributions(ctx, selectContribution+` WHERE group_id = ? ORDER BY created_at DESC`, groupID)
}

// ListContributionsBySubmitter retrieves one member's contributions in a group,
// newest first.
func (s *SQLiteStore) ListContributionsBySubmitter(ctx context.Context, groupID, identityID string) ([]*models.Contribution, error) {
	return s.listContributions(ctx,
		selectContribution+` WHERE group_id = ? AND identity_id = ? ORDER BY created_at DESC`,
		groupID, identityID)
}

const selectContribution = `
	SELECT id, group_id, project_id, identity_id, amount, status,
	       proof_ref, txn_ref, reject_reason, created_at, decided_at, decided_by
	FROM contributions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContribution(row rowScanner) (*models.Contribution, error) {
	c := &models.Contribution{}
	var projectID, proofRef, txnRef, rejectReason, decidedBy sql.NullString
	err := row.Scan(&c.ID, &c.GroupID, &projectID, &c.IdentityID, &c.Amount, &c.Status,
		&proofRef, &txnRef, &rejectReason, &c.CreatedAt, &c.DecidedAt, &decidedBy)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contribution: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contribution: %w", err)
	}
	c.ProjectID = projectID.String
	c.ProofRef = proofRef.String
	c.TxnRef = txnRef.String
	c.RejectReason = rejectReason.String
	c.DecidedBy = decidedBy.String
	return c, nil
}

func (s *SQLiteStore) listContributions(ctx context.Context, query string, args ...any) ([]*models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return contributions, nil
}

// nullable maps an empty string to NULL for optional TEXT columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
