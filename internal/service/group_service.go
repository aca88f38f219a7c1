package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/money"
	"github.com/kontrib/kontrib/internal/storage"
)

// GroupService manages groups, memberships, and projects.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the creator as its one admin. The admin's
// membership row is created alongside the group.
func (s *GroupService) CreateGroup(ctx context.Context, adminID, name string, privacy models.Privacy) (*models.Group, error) {
	slog.Info("CreateGroup request received", "identity_id", adminID, "name", name)

	if name == "" {
		return nil, fmt.Errorf("group name required: %w", apperr.ErrValidation)
	}
	switch privacy {
	case "", models.PrivacyStandard, models.PrivacyPrivate:
	default:
		return nil, fmt.Errorf("unknown privacy mode %q: %w", privacy, apperr.ErrValidation)
	}

	group := &models.Group{Name: name, AdminID: adminID, Privacy: privacy}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}
	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

// Join enrolls an identity in a group. Joining twice is a conflict.
func (s *GroupService) Join(ctx context.Context, groupID, identityID string) (*models.Membership, error) {
	slog.Info("Join request received", "group_id", groupID, "identity_id", identityID)

	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	membership := &models.Membership{GroupID: groupID, IdentityID: identityID}
	if err := s.store.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// Get returns a group to one of its members.
func (s *GroupService) Get(ctx context.Context, groupID, viewerID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListForIdentity returns all groups the identity belongs to.
func (s *GroupService) ListForIdentity(ctx context.Context, identityID string) ([]*models.Group, error) {
	return s.store.ListGroupsForIdentity(ctx, identityID)
}

// CreateProject adds a project to a group. Admin only. targetAmount is nil
// for open-ended collections.
func (s *GroupService) CreateProject(ctx context.Context, groupID, actingID, name string, targetAmount *money.Amount) (*models.Project, error) {
	slog.Info("CreateProject request received", "group_id", groupID, "identity_id", actingID, "name", name)

	if name == "" {
		return nil, fmt.Errorf("project name required: %w", apperr.ErrValidation)
	}
	if targetAmount != nil && !targetAmount.IsPositive() {
		return nil, fmt.Errorf("target amount must be positive: %w", apperr.ErrValidation)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.AdminID != actingID {
		return nil, fmt.Errorf("identity %s is not the admin of group %s: %w",
			actingID, groupID, apperr.ErrForbidden)
	}

	project := &models.Project{GroupID: groupID, Name: name, TargetAmount: targetAmount}
	if err := s.store.CreateProject(ctx, project); err != nil {
		slog.Error("CreateProject failed", "error", err)
		return nil, err
	}
	slog.Info("Project created", "project_id", project.ID, "group_id", groupID)
	return project, nil
}

// ListProjects returns a group's projects to one of its members.
func (s *GroupService) ListProjects(ctx context.Context, groupID, viewerID string) ([]*models.Project, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	return s.store.ListProjectsByGroup(ctx, groupID)
}

func (s *GroupService) requireMember(ctx context.Context, groupID, identityID string) error {
	_, err := s.store.GetMembership(ctx, groupID, identityID)
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("not a member of group %s: %w", groupID, apperr.ErrForbidden)
	}
	return err
}
