package models

// Role is the informational role flag on an Identity.
// Actual authority over a group is relation-based (Group.AdminID).
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Identity represents a registered person.
// Created on first successful phone verification; never hard-deleted.
type Identity struct {
	// ID is the unique identifier for the identity (UUID format).
	ID string `json:"id"`

	// Name is the display name, editable via profile updates.
	Name string `json:"name"`

	// Phone is the verified phone number (unique across identities).
	Phone string `json:"phone"`

	// Role is informational only; see Group.AdminID for real authority.
	Role Role `json:"role"`

	// CreatedAt is the Unix timestamp when the identity was created.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last profile mutation.
	UpdatedAt int64 `json:"updatedAt"`
}
