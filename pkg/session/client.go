package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the server API surface the session store depends on.
type Client interface {
	// ValidateDevice exchanges a device token for the current identity and
	// a fresh access token.
	ValidateDevice(ctx context.Context, deviceToken string) (*Identity, string, error)

	// Me fetches the identity behind an access token.
	Me(ctx context.Context, accessToken string) (*Identity, error)

	// CheckIdentity asks whether an identity still exists, without any
	// credential. Used by the cached-identity startup path.
	CheckIdentity(ctx context.Context, identityID string) (*Identity, error)

	// Logout revokes a device token server-side.
	Logout(ctx context.Context, deviceToken string) error
}

// HTTPClient talks to a Kontrib server over its REST API.
//
// A definitive 401 maps to ErrInvalidCredential; any transport failure or
// 5xx maps to ErrUnreachable so the store can fall back to cached state.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the server at baseURL
// (e.g. "https://api.kontrib.app").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type validateResponse struct {
	Identity    *Identity `json:"user"`
	AccessToken string    `json:"accessToken"`
}

func (c *HTTPClient) ValidateDevice(ctx context.Context, deviceToken string) (*Identity, string, error) {
	var out validateResponse
	err := c.post(ctx, "/api/auth/device/validate", "", map[string]string{"deviceToken": deviceToken}, &out)
	if err != nil {
		return nil, "", err
	}
	return out.Identity, out.AccessToken, nil
}

func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("%w: bad response body", ErrUnreachable)
	}
	return &identity, nil
}

func (c *HTTPClient) CheckIdentity(ctx context.Context, identityID string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/identity/"+identityID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	// A 404 here is definitive: the account is gone.
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrInvalidCredential
	}
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("%w: bad response body", ErrUnreachable)
	}
	return &identity, nil
}

func (c *HTTPClient) Logout(ctx context.Context, deviceToken string) error {
	return c.post(ctx, "/api/auth/logout", "", map[string]string{"deviceToken": deviceToken}, nil)
}

func (c *HTTPClient) post(ctx context.Context, path, accessToken string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: bad response body", ErrUnreachable)
	}
	return nil
}

func checkStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrInvalidCredential
	default:
		return fmt.Errorf("%w: status %d", ErrUnreachable, status)
	}
}
