package models

import "github.com/kontrib/kontrib/internal/money"

// ContributionStatus is the lifecycle state of a contribution.
// pending is initial; confirmed and rejected are terminal.
type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "pending"
	ContributionConfirmed ContributionStatus = "confirmed"
	ContributionRejected  ContributionStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed.
func (s ContributionStatus) Terminal() bool {
	return s == ContributionConfirmed || s == ContributionRejected
}

// Contribution is a single submitted payment claim awaiting or having
// received admin judgment.
type Contribution struct {
	// ID is the unique identifier for the contribution (UUID format).
	ID string `json:"id"`

	// GroupID is the owning group.
	GroupID string `json:"groupId"`

	// ProjectID is the optional owning project.
	ProjectID string `json:"projectId,omitempty"`

	// IdentityID is the submitting member.
	IdentityID string `json:"identityId"`

	// Amount is the claimed payment amount (positive decimal).
	Amount money.Amount `json:"amount"`

	// Status is the lifecycle state.
	Status ContributionStatus `json:"status"`

	// ProofRef is an optional proof-of-payment reference (e.g. receipt key).
	ProofRef string `json:"proofRef,omitempty"`

	// TxnRef is an optional external transaction reference.
	TxnRef string `json:"txnRef,omitempty"`

	// RejectReason is set when an admin rejects the contribution.
	RejectReason string `json:"rejectReason,omitempty"`

	// CreatedAt is the Unix timestamp of submission.
	CreatedAt int64 `json:"createdAt"`

	// DecidedAt is the Unix timestamp of the confirm/reject decision, or 0.
	DecidedAt int64 `json:"decidedAt,omitempty"`

	// DecidedBy is the admin identity that made the decision, or empty.
	DecidedBy string `json:"decidedBy,omitempty"`
}
