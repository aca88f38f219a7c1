package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"
)

// Substrate keys. The logout key is a beacon: its value is meaningless, a
// write to it tells every context that the session was ended somewhere.
const (
	keyIdentity    = "kontrib/session/identity"
	keyDeviceToken = "kontrib/session/device_token"
	keyLogout      = "kontrib/session/logout"
)

// Store keeps one context's view of the session and converges it with the
// other contexts sharing the same KV substrate.
type Store struct {
	kv     KV
	client Client

	mu      sync.Mutex
	current *Session
	subs    map[int]func(*Session)
	nextID  int

	cancelWatch func()
}

// NewStore creates a session store over the given substrate handle and API
// client, and begins watching for changes made by other contexts.
func NewStore(kv KV, client Client) *Store {
	s := &Store{
		kv:     kv,
		client: client,
		subs:   make(map[int]func(*Session)),
	}
	s.cancelWatch = kv.Watch(s.onSubstrateChange)
	return s
}

// Close stops watching the substrate. The cached session remains in the KV
// for the next store instance.
func (s *Store) Close() {
	s.cancelWatch()
}

// Current returns this context's session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a callback invoked whenever the session changes,
// whether by a local call or by another context. The callback receives nil
// on logout.
func (s *Store) Subscribe(fn func(*Session)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetSession installs a freshly authenticated session (e.g. after OTP
// verification) and shares it with the other contexts via the substrate.
func (s *Store) SetSession(identity *Identity, deviceToken, accessToken string) {
	if data, err := json.Marshal(identity); err == nil {
		s.kv.Set(keyIdentity, string(data))
	}
	s.kv.Set(keyDeviceToken, deviceToken)

	s.setCurrent(&Session{
		Identity:    identity,
		DeviceToken: deviceToken,
		AccessToken: accessToken,
	})
}

// Initialize establishes the session at context startup.
//
// With a stored device token, the server is asked to validate it: success
// adopts the fresh identity, a definitive rejection clears the session
// everywhere, and an unreachable server falls back to the cached identity
// when one exists. Without a stored token, a cached identity is checked
// against the server: confirmed keeps it, unknown clears it, unreachable
// keeps it degraded. Nothing stored means logged out.
func (s *Store) Initialize(ctx context.Context) (*Session, error) {
	deviceToken, ok := s.kv.Get(keyDeviceToken)
	if !ok || deviceToken == "" {
		return s.initializeFromCache(ctx)
	}

	identity, accessToken, err := s.client.ValidateDevice(ctx, deviceToken)
	switch {
	case err == nil:
		if data, marshalErr := json.Marshal(identity); marshalErr == nil {
			s.kv.Set(keyIdentity, string(data))
		}
		sess := &Session{Identity: identity, DeviceToken: deviceToken, AccessToken: accessToken}
		s.setCurrent(sess)
		return sess, nil

	case errors.Is(err, ErrInvalidCredential):
		s.clearSubstrate()
		s.setCurrent(nil)
		return nil, ErrInvalidCredential

	default:
		// Unreachable: stay signed in on cached state when possible.
		cached, ok := s.cachedIdentity()
		if !ok {
			s.setCurrent(nil)
			return nil, ErrUnreachable
		}
		sess := &Session{Identity: cached, DeviceToken: deviceToken, Degraded: true}
		s.setCurrent(sess)
		return sess, nil
	}
}

// initializeFromCache handles startup without a device token. A cached
// identity stays usable unless the server definitively reports it gone.
func (s *Store) initializeFromCache(ctx context.Context) (*Session, error) {
	cached, ok := s.cachedIdentity()
	if !ok {
		s.setCurrent(nil)
		return nil, ErrLoggedOut
	}

	fresh, err := s.client.CheckIdentity(ctx, cached.ID)
	switch {
	case err == nil:
		if data, marshalErr := json.Marshal(fresh); marshalErr == nil {
			s.kv.Set(keyIdentity, string(data))
		}
		sess := &Session{Identity: fresh}
		s.setCurrent(sess)
		return sess, nil

	case errors.Is(err, ErrInvalidCredential):
		s.clearSubstrate()
		s.setCurrent(nil)
		return nil, ErrInvalidCredential

	default:
		sess := &Session{Identity: cached, Degraded: true}
		s.setCurrent(sess)
		return sess, nil
	}
}

// Logout ends the session in every context. Server revocation is
// best-effort: a dead network must never trap the user in a session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	var deviceToken string
	if s.current != nil {
		deviceToken = s.current.DeviceToken
	}
	s.mu.Unlock()
	if deviceToken == "" {
		deviceToken, _ = s.kv.Get(keyDeviceToken)
	}

	if deviceToken != "" {
		_ = s.client.Logout(ctx, deviceToken)
	}
	s.clearSubstrate()
	s.setCurrent(nil)
}

// onSubstrateChange reacts to writes made by other contexts.
func (s *Store) onSubstrateChange(key string) {
	switch key {
	case keyLogout:
		s.setCurrent(nil)
	case keyDeviceToken:
		// Deletion of the credential in another context signals a logout.
		deviceToken, ok := s.kv.Get(keyDeviceToken)
		if !ok || deviceToken == "" {
			s.setCurrent(nil)
			return
		}
		identity, ok := s.cachedIdentity()
		if !ok {
			return
		}
		// The access token is context-local; Initialize mints a fresh one.
		s.setCurrent(&Session{Identity: identity, DeviceToken: deviceToken})
	case keyIdentity:
		identity, ok := s.cachedIdentity()
		if !ok {
			s.setCurrent(nil)
			return
		}
		deviceToken, _ := s.kv.Get(keyDeviceToken)
		s.setCurrent(&Session{Identity: identity, DeviceToken: deviceToken})
	}
}

// cachedIdentity reads the identity snapshot from the substrate. Malformed
// payloads count as absent.
func (s *Store) cachedIdentity() (*Identity, bool) {
	raw, ok := s.kv.Get(keyIdentity)
	if !ok || raw == "" {
		return nil, false
	}
	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.ID == "" {
		return nil, false
	}
	return &identity, true
}

func (s *Store) clearSubstrate() {
	s.kv.Delete(keyIdentity)
	s.kv.Delete(keyDeviceToken)
	s.kv.Set(keyLogout, strconv.FormatInt(time.Now().UnixNano(), 10))
}

func (s *Store) setCurrent(sess *Session) {
	s.mu.Lock()
	s.current = sess
	subs := make([]func(*Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(sess)
	}
}
