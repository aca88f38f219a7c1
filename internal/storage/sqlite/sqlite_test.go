package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/money"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "kontrib-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedGroup creates an admin, a member, and a group with both enrolled.
func seedGroup(t *testing.T, store *SQLiteStore) (admin, member *models.Identity, group *models.Group) {
	t.Helper()
	ctx := context.Background()

	admin = &models.Identity{Name: "Ada", Phone: "+2348000000001"}
	if err := store.CreateIdentity(ctx, admin); err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	member = &models.Identity{Name: "Ben", Phone: "+2348000000002"}
	if err := store.CreateIdentity(ctx, member); err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}

	group = &models.Group{Name: "Alumni Fund", AdminID: admin.ID}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.CreateMembership(ctx, &models.Membership{GroupID: group.ID, IdentityID: member.ID}); err != nil {
		t.Fatalf("CreateMembership failed: %v", err)
	}
	return admin, member, group
}

func TestIdentities(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create generates ID and timestamps", func(t *testing.T) {
		identity := &models.Identity{Name: "Ada", Phone: "+2348011111111"}
		if err := store.CreateIdentity(ctx, identity); err != nil {
			t.Fatalf("CreateIdentity failed: %v", err)
		}
		if identity.ID == "" {
			t.Error("Expected identity ID to be generated")
		}
		if identity.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if identity.Role != models.RoleMember {
			t.Errorf("Role = %q, want member", identity.Role)
		}
	})

	t.Run("duplicate phone is a conflict", func(t *testing.T) {
		dup := &models.Identity{Name: "Imposter", Phone: "+2348011111111"}
		err := store.CreateIdentity(ctx, dup)
		if !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("lookup by phone", func(t *testing.T) {
		identity, err := store.GetIdentityByPhone(ctx, "+2348011111111")
		if err != nil {
			t.Fatalf("GetIdentityByPhone failed: %v", err)
		}
		if identity.Name != "Ada" {
			t.Errorf("Name = %q, want Ada", identity.Name)
		}
	})

	t.Run("missing identity is not found", func(t *testing.T) {
		_, err := store.GetIdentity(ctx, "nope")
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("name update", func(t *testing.T) {
		identity, _ := store.GetIdentityByPhone(ctx, "+2348011111111")
		if err := store.UpdateIdentityName(ctx, identity.ID, "Ada L."); err != nil {
			t.Fatalf("UpdateIdentityName failed: %v", err)
		}
		updated, _ := store.GetIdentity(ctx, identity.ID)
		if updated.Name != "Ada L." {
			t.Errorf("Name = %q, want Ada L.", updated.Name)
		}
	})
}

func TestDevices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	identity := &models.Identity{Name: "Ada", Phone: "+2348022222222"}
	if err := store.CreateIdentity(ctx, identity); err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}

	device := &models.Device{IdentityID: identity.ID, TokenHash: "hash-1", Name: "Chrome"}
	if err := store.CreateDevice(ctx, device); err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}

	t.Run("lookup by token hash", func(t *testing.T) {
		got, err := store.GetDeviceByTokenHash(ctx, "hash-1")
		if err != nil {
			t.Fatalf("GetDeviceByTokenHash failed: %v", err)
		}
		if got.IdentityID != identity.ID {
			t.Errorf("IdentityID = %q, want %q", got.IdentityID, identity.ID)
		}
		if got.Revoked() {
			t.Error("new device should not be revoked")
		}
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		if err := store.RevokeDeviceByTokenHash(ctx, "hash-1"); err != nil {
			t.Fatalf("RevokeDeviceByTokenHash failed: %v", err)
		}
		got, _ := store.GetDeviceByTokenHash(ctx, "hash-1")
		if !got.Revoked() {
			t.Error("device should be revoked")
		}
		firstRevokedAt := got.RevokedAt

		if err := store.RevokeDeviceByTokenHash(ctx, "hash-1"); err != nil {
			t.Fatalf("second revoke failed: %v", err)
		}
		again, _ := store.GetDeviceByTokenHash(ctx, "hash-1")
		if again.RevokedAt != firstRevokedAt {
			t.Error("second revoke should not change the revocation time")
		}

		if err := store.RevokeDeviceByTokenHash(ctx, "unknown-hash"); err != nil {
			t.Errorf("revoking unknown token should not error, got %v", err)
		}
	})
}

func TestGroupsAndMemberships(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	admin, member, group := seedGroup(t, store)

	t.Run("admin membership is created with the group", func(t *testing.T) {
		m, err := store.GetMembership(ctx, group.ID, admin.ID)
		if err != nil {
			t.Fatalf("GetMembership failed: %v", err)
		}
		if !m.ContributedAmount.IsZero() {
			t.Errorf("ContributedAmount = %s, want 0", m.ContributedAmount)
		}
	})

	t.Run("duplicate join is a conflict", func(t *testing.T) {
		err := store.CreateMembership(ctx, &models.Membership{GroupID: group.ID, IdentityID: member.ID})
		if !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("list groups for identity", func(t *testing.T) {
		groups, err := store.ListGroupsForIdentity(ctx, member.ID)
		if err != nil {
			t.Fatalf("ListGroupsForIdentity failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("expected exactly the seeded group, got %v", groups)
		}
	})
}

func TestConfirmContribution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	admin, member, group := seedGroup(t, store)

	project := &models.Project{GroupID: group.ID, Name: "Roof repair"}
	if err := store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	c := &models.Contribution{
		GroupID:    group.ID,
		ProjectID:  project.ID,
		IdentityID: member.ID,
		Amount:     money.MustParse("5000"),
	}
	if err := store.CreateContribution(ctx, c); err != nil {
		t.Fatalf("CreateContribution failed: %v", err)
	}

	t.Run("submit does not move money", func(t *testing.T) {
		p, _ := store.GetProject(ctx, project.ID)
		if !p.CollectedAmount.IsZero() {
			t.Errorf("CollectedAmount = %s, want 0 before confirm", p.CollectedAmount)
		}
	})

	t.Run("confirm flips status and increments aggregates", func(t *testing.T) {
		confirmed, err := store.ConfirmContribution(ctx, c.ID, admin.ID)
		if err != nil {
			t.Fatalf("ConfirmContribution failed: %v", err)
		}
		if confirmed.Status != models.ContributionConfirmed {
			t.Errorf("Status = %q, want confirmed", confirmed.Status)
		}
		if confirmed.DecidedBy != admin.ID {
			t.Errorf("DecidedBy = %q, want %q", confirmed.DecidedBy, admin.ID)
		}

		p, _ := store.GetProject(ctx, project.ID)
		if !p.CollectedAmount.Equal(money.MustParse("5000")) {
			t.Errorf("CollectedAmount = %s, want 5000", p.CollectedAmount)
		}
		m, _ := store.GetMembership(ctx, group.ID, member.ID)
		if !m.ContributedAmount.Equal(money.MustParse("5000")) {
			t.Errorf("ContributedAmount = %s, want 5000", m.ContributedAmount)
		}
	})

	t.Run("second confirm fails without double-counting", func(t *testing.T) {
		_, err := store.ConfirmContribution(ctx, c.ID, admin.ID)
		if !errors.Is(err, apperr.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		p, _ := store.GetProject(ctx, project.ID)
		if !p.CollectedAmount.Equal(money.MustParse("5000")) {
			t.Errorf("CollectedAmount = %s, want 5000 (no double count)", p.CollectedAmount)
		}
	})

	t.Run("reject after confirm fails", func(t *testing.T) {
		_, err := store.RejectContribution(ctx, c.ID, admin.ID, "too late")
		if !errors.Is(err, apperr.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("confirm of unknown contribution is not found", func(t *testing.T) {
		_, err := store.ConfirmContribution(ctx, "nope", admin.ID)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRejectContribution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	admin, member, group := seedGroup(t, store)

	c := &models.Contribution{GroupID: group.ID, IdentityID: member.ID, Amount: money.MustParse("1200")}
	if err := store.CreateContribution(ctx, c); err != nil {
		t.Fatalf("CreateContribution failed: %v", err)
	}

	rejected, err := store.RejectContribution(ctx, c.ID, admin.ID, "blurry receipt")
	if err != nil {
		t.Fatalf("RejectContribution failed: %v", err)
	}
	if rejected.Status != models.ContributionRejected {
		t.Errorf("Status = %q, want rejected", rejected.Status)
	}
	if rejected.RejectReason != "blurry receipt" {
		t.Errorf("RejectReason = %q, want 'blurry receipt'", rejected.RejectReason)
	}

	m, _ := store.GetMembership(ctx, group.ID, member.ID)
	if !m.ContributedAmount.IsZero() {
		t.Errorf("ContributedAmount = %s, want 0 after reject", m.ContributedAmount)
	}
}

// TestConcurrentConfirm races many confirm attempts on one pending
// contribution: exactly one must win, the rest must observe the terminal
// state, and the aggregate must increase exactly once.
func TestConcurrentConfirm(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	admin, member, group := seedGroup(t, store)

	project := &models.Project{GroupID: group.ID, Name: "Well"}
	if err := store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	c := &models.Contribution{
		GroupID:    group.ID,
		ProjectID:  project.ID,
		IdentityID: member.ID,
		Amount:     money.MustParse("777.77"),
	}
	if err := store.CreateContribution(ctx, c); err != nil {
		t.Fatalf("CreateContribution failed: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	results := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = store.ConfirmContribution(ctx, c.ID, admin.ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperr.ErrInvalidTransition):
		default:
			t.Errorf("unexpected racer error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}

	p, _ := store.GetProject(ctx, project.ID)
	if !p.CollectedAmount.Equal(money.MustParse("777.77")) {
		t.Errorf("CollectedAmount = %s, want 777.77", p.CollectedAmount)
	}
}

func TestCollectedAmountInvariant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	admin, member, group := seedGroup(t, store)

	project := &models.Project{GroupID: group.ID, Name: "Library"}
	if err := store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	// Mixed sequence of confirms and rejects with fractional amounts.
	amounts := []string{"0.1", "0.2", "999.99", "0.1", "50"}
	confirm := []bool{true, false, true, true, false}

	want := money.Zero()
	for i, a := range amounts {
		c := &models.Contribution{
			GroupID:    group.ID,
			ProjectID:  project.ID,
			IdentityID: member.ID,
			Amount:     money.MustParse(a),
		}
		if err := store.CreateContribution(ctx, c); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}
		if confirm[i] {
			if _, err := store.ConfirmContribution(ctx, c.ID, admin.ID); err != nil {
				t.Fatalf("ConfirmContribution failed: %v", err)
			}
			want = want.Add(money.MustParse(a))
		} else {
			if _, err := store.RejectContribution(ctx, c.ID, admin.ID, ""); err != nil {
				t.Fatalf("RejectContribution failed: %v", err)
			}
		}
	}

	p, _ := store.GetProject(ctx, project.ID)
	if !p.CollectedAmount.Equal(want) {
		t.Errorf("CollectedAmount = %s, want %s", p.CollectedAmount, want)
	}

	// Cross-check against re-summing the confirmed contributions.
	all, err := store.ListContributionsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListContributionsByGroup failed: %v", err)
	}
	sum := money.Zero()
	for _, c := range all {
		if c.Status == models.ContributionConfirmed {
			sum = sum.Add(c.Amount)
		}
	}
	if !sum.Equal(p.CollectedAmount) {
		t.Errorf("re-derived sum %s != stored %s", sum, p.CollectedAmount)
	}
}

func TestNotificationsStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, member, _ := seedGroup(t, store)

	n := &models.Notification{
		IdentityID: member.ID,
		Kind:       models.NotificationContributionConfirmed,
		Title:      "Contribution confirmed",
		Message:    "Your contribution of 5000 was confirmed.",
	}
	if err := store.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	list, err := store.ListNotifications(ctx, member.ID)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(list) != 1 || list[0].Read {
		t.Fatalf("expected one unread notification, got %v", list)
	}

	if err := store.MarkNotificationRead(ctx, n.ID); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	got, _ := store.GetNotification(ctx, n.ID)
	if !got.Read {
		t.Error("notification should be read")
	}

	if err := store.DeleteNotification(ctx, n.ID); err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}
	if err := store.DeleteNotification(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
