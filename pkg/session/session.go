// Package session is the client-side session layer for Kontrib apps.
//
// A session is carried by two pieces of client state: a long-lived device
// token and a cached identity snapshot, both held in a shared key-value
// substrate visible to every context of the same client (browser tabs,
// app windows). The Store keeps those contexts converged: a login or logout
// performed in one context is observed by all others through substrate
// change events.
//
// Startup favors availability over freshness: when the server cannot be
// reached, a cached identity keeps the user signed in until a definitive
// credential rejection arrives.
package session

import "errors"

var (
	// ErrInvalidCredential means the server definitively rejected the
	// device token. The session must be cleared.
	ErrInvalidCredential = errors.New("session: invalid credential")

	// ErrUnreachable means the server could not be contacted. The cached
	// session, if any, remains usable.
	ErrUnreachable = errors.New("session: server unreachable")

	// ErrLoggedOut means no session exists in this client.
	ErrLoggedOut = errors.New("session: logged out")
)

// Identity is the client-side snapshot of the signed-in person.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Session is the client-visible authentication state of one context.
type Session struct {
	Identity    *Identity
	DeviceToken string
	AccessToken string

	// Degraded is set when the session was restored from cache because the
	// server was unreachable. The access token may be stale or empty.
	Degraded bool
}
