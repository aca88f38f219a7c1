package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/metrics"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/money"
	"github.com/kontrib/kontrib/internal/storage"
)

// ContributionService owns the pending -> confirmed/rejected state machine.
// All balance effects flow through Confirm; nothing else mutates the
// collected/contributed aggregates.
type ContributionService struct {
	store    storage.Store
	notifier *NotificationService
}

// NewContributionService creates a ContributionService with the given storage
// backend and notification fan-out.
func NewContributionService(store storage.Store, notifier *NotificationService) *ContributionService {
	return &ContributionService{store: store, notifier: notifier}
}

// SubmitParams carries a member's contribution claim.
type SubmitParams struct {
	GroupID     string
	ProjectID   string // optional
	SubmitterID string
	Amount      money.Amount
	ProofRef    string // optional
	TxnRef      string // optional
}

// Submit validates and stores a new pending contribution, then notifies the
// group admin. No balance is touched at submit time.
func (s *ContributionService) Submit(ctx context.Context, p SubmitParams) (*models.Contribution, error) {
	slog.Info("Submit request received",
		"group_id", p.GroupID,
		"project_id", p.ProjectID,
		"identity_id", p.SubmitterID,
		"amount", p.Amount.String(),
	)

	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive: %w", apperr.ErrValidation)
	}

	group, err := s.store.GetGroup(ctx, p.GroupID)
	if err != nil {
		return nil, err
	}

	membership, err := s.store.GetMembership(ctx, p.GroupID, p.SubmitterID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("submitter is not a member of group %s: %w", p.GroupID, apperr.ErrForbidden)
		}
		return nil, err
	}
	if membership.Status != models.MembershipActive {
		return nil, fmt.Errorf("membership is %s: %w", membership.Status, apperr.ErrForbidden)
	}

	if p.ProjectID != "" {
		project, err := s.store.GetProject(ctx, p.ProjectID)
		if err != nil {
			return nil, err
		}
		if project.GroupID != p.GroupID {
			return nil, fmt.Errorf("project %s does not belong to group %s: %w",
				p.ProjectID, p.GroupID, apperr.ErrValidation)
		}
	}

	c := &models.Contribution{
		GroupID:    p.GroupID,
		ProjectID:  p.ProjectID,
		IdentityID: p.SubmitterID,
		Amount:     p.Amount,
		ProofRef:   p.ProofRef,
		TxnRef:     p.TxnRef,
	}
	if err := s.store.CreateContribution(ctx, c); err != nil {
		slog.Error("Submit failed", "error", err)
		return nil, err
	}
	metrics.ContributionsSubmitted.Inc()
	slog.Info("Contribution submitted", "contribution_id", c.ID, "group_id", c.GroupID)

	s.notifyTransition(ctx, group.AdminID, models.NotificationContributionSubmitted,
		"New contribution awaiting review",
		fmt.Sprintf("A contribution of %s was submitted to %s.", c.Amount, group.Name),
		c.ID)

	return c, nil
}

// Confirm transitions a pending contribution to confirmed and applies its
// amount to the project and membership aggregates, exactly once. The acting
// identity must be the owning group's admin.
func (s *ContributionService) Confirm(ctx context.Context, contributionID, actingID string) (*models.Contribution, error) {
	slog.Info("Confirm request received", "contribution_id", contributionID, "identity_id", actingID)

	if err := s.requireGroupAdmin(ctx, contributionID, actingID); err != nil {
		return nil, err
	}

	c, err := s.store.ConfirmContribution(ctx, contributionID, actingID)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidTransition) {
			metrics.InvalidTransitions.Inc()
		}
		slog.Warn("Confirm failed", "contribution_id", contributionID, "error", err)
		return nil, err
	}
	metrics.ContributionsDecided.WithLabelValues("confirmed").Inc()
	slog.Info("Contribution confirmed", "contribution_id", c.ID, "amount", c.Amount.String())

	s.notifyTransition(ctx, c.IdentityID, models.NotificationContributionConfirmed,
		"Contribution confirmed",
		fmt.Sprintf("Your contribution of %s was confirmed.", c.Amount),
		c.ID)

	return c, nil
}

// Reject transitions a pending contribution to rejected with an optional
// reason. No balance change.
func (s *ContributionService) Reject(ctx context.Context, contributionID, actingID, reason string) (*models.Contribution, error) {
	slog.Info("Reject request received", "contribution_id", contributionID, "identity_id", actingID)

	if err := s.requireGroupAdmin(ctx, contributionID, actingID); err != nil {
		return nil, err
	}

	c, err := s.store.RejectContribution(ctx, contributionID, actingID, reason)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidTransition) {
			metrics.InvalidTransitions.Inc()
		}
		slog.Warn("Reject failed", "contribution_id", contributionID, "error", err)
		return nil, err
	}
	metrics.ContributionsDecided.WithLabelValues("rejected").Inc()
	slog.Info("Contribution rejected", "contribution_id", c.ID)

	message := fmt.Sprintf("Your contribution of %s was rejected.", c.Amount)
	if reason != "" {
		message = fmt.Sprintf("Your contribution of %s was rejected: %s", c.Amount, reason)
	}
	s.notifyTransition(ctx, c.IdentityID, models.NotificationContributionRejected,
		"Contribution rejected", message, c.ID)

	return c, nil
}

// Get returns one contribution, enforcing group membership and the group's
// privacy mode: in private groups only the admin and the submitter may view.
func (s *ContributionService) Get(ctx context.Context, contributionID, viewerID string) (*models.Contribution, error) {
	c, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, c.GroupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMembership(ctx, c.GroupID, viewerID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("viewer is not a member: %w", apperr.ErrForbidden)
		}
		return nil, err
	}
	if group.Privacy == models.PrivacyPrivate && viewerID != group.AdminID && viewerID != c.IdentityID {
		return nil, fmt.Errorf("contribution detail is private: %w", apperr.ErrForbidden)
	}
	return c, nil
}

// ListForGroup returns the contributions a viewer may see in a group. In
// private groups, non-admin viewers only see their own submissions.
func (s *ContributionService) ListForGroup(ctx context.Context, groupID, viewerID string) ([]*models.Contribution, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMembership(ctx, groupID, viewerID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("viewer is not a member: %w", apperr.ErrForbidden)
		}
		return nil, err
	}
	if group.Privacy == models.PrivacyPrivate && viewerID != group.AdminID {
		return s.store.ListContributionsBySubmitter(ctx, groupID, viewerID)
	}
	return s.store.ListContributionsByGroup(ctx, groupID)
}

// requireGroupAdmin verifies that actingID is the admin of the contribution's
// owning group. Authority is relation-based; the identity role flag is never
// consulted.
func (s *ContributionService) requireGroupAdmin(ctx context.Context, contributionID, actingID string) error {
	c, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return err
	}
	group, err := s.store.GetGroup(ctx, c.GroupID)
	if err != nil {
		return err
	}
	if group.AdminID != actingID {
		return fmt.Errorf("identity %s is not the admin of group %s: %w",
			actingID, group.ID, apperr.ErrForbidden)
	}
	return nil
}

// notifyTransition fans out a lifecycle notification. Fan-out failure is
// logged, not propagated: the lifecycle transition already committed.
func (s *ContributionService) notifyTransition(ctx context.Context, targetID string, kind models.NotificationKind, title, message, contributionID string) {
	if _, err := s.notifier.Notify(ctx, targetID, kind, title, message, contributionID); err != nil {
		slog.Error("Notification fan-out failed",
			"identity_id", targetID,
			"contribution_id", contributionID,
			"error", err,
		)
	}
}
