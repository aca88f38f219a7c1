// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/kontrib/kontrib/internal/models"
)

// Store defines the interface for Kontrib storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Lookup methods return an error wrapping apperr.ErrNotFound when the entity
// does not exist.
type Store interface {
	// Identities
	CreateIdentity(ctx context.Context, identity *models.Identity) error
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	GetIdentityByPhone(ctx context.Context, phone string) (*models.Identity, error)
	UpdateIdentityName(ctx context.Context, id, name string) error

	// One-time codes. At most one live code per phone number.
	UpsertOTP(ctx context.Context, phone, codeHash string, expiresAt int64) error
	GetOTP(ctx context.Context, phone string) (codeHash string, expiresAt int64, attempts int, err error)
	IncrementOTPAttempts(ctx context.Context, phone string) error
	DeleteOTP(ctx context.Context, phone string) error

	// Device credentials
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDeviceByTokenHash(ctx context.Context, tokenHash string) (*models.Device, error)
	TouchDevice(ctx context.Context, id string) error
	RevokeDeviceByTokenHash(ctx context.Context, tokenHash string) error

	// Groups and memberships
	// CreateGroup also creates the admin's membership row in the same
	// transaction.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroupsForIdentity(ctx context.Context, identityID string) ([]*models.Group, error)
	CreateMembership(ctx context.Context, membership *models.Membership) error
	GetMembership(ctx context.Context, groupID, identityID string) (*models.Membership, error)

	// Projects
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjectsByGroup(ctx context.Context, groupID string) ([]*models.Project, error)

	// Contributions. ConfirmContribution and RejectContribution perform the
	// atomic conditional pending->terminal transition; callers get
	// apperr.ErrInvalidTransition when the contribution was already decided.
	CreateContribution(ctx context.Context, c *models.Contribution) error
	GetContribution(ctx context.Context, id string) (*models.Contribution, error)
	ConfirmContribution(ctx context.Context, id, adminID string) (*models.Contribution, error)
	RejectContribution(ctx context.Context, id, adminID, reason string) (*models.Contribution, error)
	ListContributionsByGroup(ctx context.Context, groupID string) ([]*models.Contribution, error)
	ListContributionsBySubmitter(ctx context.Context, groupID, identityID string) ([]*models.Contribution, error)

	// Notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, identityID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
