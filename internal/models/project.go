package models

import "github.com/kontrib/kontrib/internal/money"

// Project is a collection target inside a group. Open-ended collections have
// no target amount.
type Project struct {
	// ID is the unique identifier for the project (UUID format).
	ID string `json:"id"`

	// GroupID is the owning group.
	GroupID string `json:"groupId"`

	// Name is the display name of the project.
	Name string `json:"name"`

	// TargetAmount is the optional goal; nil for open-ended collections.
	TargetAmount *money.Amount `json:"targetAmount,omitempty"`

	// CollectedAmount is the running total of confirmed contributions.
	// Invariant: equals the sum of Amount over all confirmed contributions
	// to this project. Maintained incrementally by the confirm transition.
	CollectedAmount money.Amount `json:"collectedAmount"`

	// CreatedAt is the Unix timestamp when the project was created.
	CreatedAt int64 `json:"createdAt"`
}
