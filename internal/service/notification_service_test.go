package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/push"
)

func TestNotificationOwnership(t *testing.T) {
	store := newTestStore(t)
	svc := NewNotificationService(store, push.NewHub())
	ctx := context.Background()

	owner := &models.Identity{Name: "Ada", Phone: "+2348000000001"}
	other := &models.Identity{Name: "Ben", Phone: "+2348000000002"}
	for _, id := range []*models.Identity{owner, other} {
		if err := store.CreateIdentity(ctx, id); err != nil {
			t.Fatalf("CreateIdentity failed: %v", err)
		}
	}

	n, err := svc.Notify(ctx, owner.ID, models.NotificationContributionConfirmed,
		"Contribution confirmed", "Your contribution of 5000 was confirmed.", "")
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	t.Run("only the owner may mark read", func(t *testing.T) {
		if err := svc.MarkRead(ctx, n.ID, other.ID); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if err := svc.MarkRead(ctx, n.ID, owner.ID); err != nil {
			t.Errorf("MarkRead failed: %v", err)
		}
	})

	t.Run("only the owner may dismiss", func(t *testing.T) {
		if err := svc.Dismiss(ctx, n.ID, other.ID); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if err := svc.Dismiss(ctx, n.ID, owner.ID); err != nil {
			t.Errorf("Dismiss failed: %v", err)
		}
		if _, err := svc.List(ctx, owner.ID); err != nil {
			t.Fatalf("List failed: %v", err)
		}
	})

	t.Run("dismissed notification is gone", func(t *testing.T) {
		list, err := svc.List(ctx, owner.ID)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("list = %d entries, want 0", len(list))
		}
	})
}

func TestNotifyDeliversLivePush(t *testing.T) {
	store := newTestStore(t)
	hub := push.NewHub()
	svc := NewNotificationService(store, hub)
	ctx := context.Background()

	owner := &models.Identity{Name: "Ada", Phone: "+2348000000001"}
	if err := store.CreateIdentity(ctx, owner); err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}

	// No live connection: Notify still persists the record.
	n, err := svc.Notify(ctx, owner.ID, models.NotificationContributionSubmitted,
		"New contribution awaiting review", "A contribution of 100 was submitted.", "c-1")
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	got, err := store.GetNotification(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetNotification failed: %v", err)
	}
	if got.Read {
		t.Error("new notification should be unread")
	}
	if got.ContributionID != "c-1" {
		t.Errorf("ContributionID = %q, want c-1", got.ContributionID)
	}
}
