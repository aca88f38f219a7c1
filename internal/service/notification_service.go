package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/metrics"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/push"
	"github.com/kontrib/kontrib/internal/storage"
)

// pushEnvelope is the wire shape of a live push message.
type pushEnvelope struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification"`
}

// NotificationService persists notifications and attempts live delivery.
type NotificationService struct {
	store storage.Store
	hub   *push.Hub
}

// NewNotificationService creates a NotificationService with the given storage
// backend and live push hub.
func NewNotificationService(store storage.Store, hub *push.Hub) *NotificationService {
	return &NotificationService{store: store, hub: hub}
}

// Notify persists a notification addressed to targetID, then attempts a live
// push to every open connection of the target. Push failure is non-fatal: the
// persisted record remains and is picked up on the next poll or reconnect.
func (s *NotificationService) Notify(ctx context.Context, targetID string, kind models.NotificationKind, title, message, contributionID string) (*models.Notification, error) {
	n := &models.Notification{
		IdentityID:     targetID,
		Kind:           kind,
		Title:          title,
		Message:        message,
		ContributionID: contributionID,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}
	metrics.NotificationsCreated.Inc()

	delivered := s.hub.Send(ctx, targetID, pushEnvelope{Type: "notification", Notification: n})
	slog.Debug("Notification created",
		"notification_id", n.ID,
		"identity_id", targetID,
		"kind", kind,
		"pushed", delivered,
	)
	return n, nil
}

// List returns all notifications addressed to the identity, newest first.
func (s *NotificationService) List(ctx context.Context, identityID string) ([]*models.Notification, error) {
	return s.store.ListNotifications(ctx, identityID)
}

// MarkRead sets the read flag. Fails with apperr.ErrForbidden when the
// requesting identity does not own the notification.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, requestingID string) error {
	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.IdentityID != requestingID {
		return fmt.Errorf("notification %s is not addressed to %s: %w",
			notificationID, requestingID, apperr.ErrForbidden)
	}
	return s.store.MarkNotificationRead(ctx, notificationID)
}

// Dismiss hard-deletes the notification after the same ownership check.
func (s *NotificationService) Dismiss(ctx context.Context, notificationID, requestingID string) error {
	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.IdentityID != requestingID {
		return fmt.Errorf("notification %s is not addressed to %s: %w",
			notificationID, requestingID, apperr.ErrForbidden)
	}
	return s.store.DeleteNotification(ctx, notificationID)
}
