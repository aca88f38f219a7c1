package models

// NotificationKind classifies what lifecycle transition produced a notification.
type NotificationKind string

const (
	NotificationContributionSubmitted NotificationKind = "contribution_submitted"
	NotificationContributionConfirmed NotificationKind = "contribution_confirmed"
	NotificationContributionRejected  NotificationKind = "contribution_rejected"
)

// Notification is a record addressed to one Identity, optionally referencing
// the originating contribution. Deleted on explicit dismissal; no automatic
// expiry.
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string `json:"id"`

	// IdentityID is the addressee.
	IdentityID string `json:"identityId"`

	// Kind classifies the originating transition.
	Kind NotificationKind `json:"kind"`

	// Title is the short human-readable headline.
	Title string `json:"title"`

	// Message is the human-readable body.
	Message string `json:"message"`

	// ContributionID optionally references the originating contribution.
	ContributionID string `json:"contributionId,omitempty"`

	// Read indicates whether the addressee has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is the Unix timestamp when the notification was created.
	CreatedAt int64 `json:"createdAt"`
}
