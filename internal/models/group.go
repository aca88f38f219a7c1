package models

import "github.com/kontrib/kontrib/internal/money"

// Privacy controls how much contribution detail members can see.
type Privacy string

const (
	// PrivacyStandard exposes all contributions to all members.
	PrivacyStandard Privacy = "standard"

	// PrivacyPrivate restricts contributor-level detail to the admin;
	// members only see their own contributions.
	PrivacyPrivate Privacy = "private"
)

// Group represents a savings/fundraising circle.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group.
	Name string `json:"name"`

	// AdminID is the identity with authority over this group.
	// There is exactly one admin per group, by relation.
	AdminID string `json:"adminId"`

	// Privacy is the contribution-visibility mode.
	Privacy Privacy `json:"privacy"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`
}

// MembershipStatus is the state of an identity's membership in a group.
type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipRemoved MembershipStatus = "removed"
)

// Membership links one Identity to one Group. Unique per (group, identity).
type Membership struct {
	// GroupID is the group side of the relation.
	GroupID string `json:"groupId"`

	// IdentityID is the identity side of the relation.
	IdentityID string `json:"identityId"`

	// ContributedAmount is the accrued total of this member's confirmed
	// contributions in the group. Mutated only by the confirm transition.
	ContributedAmount money.Amount `json:"contributedAmount"`

	// Status is the membership state.
	Status MembershipStatus `json:"status"`

	// JoinedAt is the Unix timestamp when the membership was created.
	JoinedAt int64 `json:"joinedAt"`
}
