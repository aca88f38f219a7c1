package models

// Device represents a long-lived device credential bound 1:1 to an Identity
// at issuance time. The opaque token itself is only ever held by the client;
// the server stores its SHA-256 hash.
//
// Invariant: a non-revoked device row resolves to exactly one Identity.
type Device struct {
	// ID is the unique identifier for the device record (UUID format).
	ID string

	// IdentityID is the identity this credential was issued to.
	IdentityID string

	// TokenHash is the hex-encoded SHA-256 of the opaque device token.
	TokenHash string

	// Name is a client-supplied label (e.g. "Chrome on Android").
	Name string

	// CreatedAt is the Unix timestamp when the credential was issued.
	CreatedAt int64

	// LastSeenAt is the Unix timestamp of the last successful validation.
	LastSeenAt int64

	// RevokedAt is the Unix timestamp of revocation, or 0 while valid.
	RevokedAt int64
}

// Revoked reports whether the credential has been invalidated.
func (d *Device) Revoked() bool {
	return d.RevokedAt != 0
}
