package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientStatusMapping(t *testing.T) {
	t.Run("success returns identity and token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/auth/device/validate" {
				t.Errorf("path = %q", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"user":        map[string]string{"id": "id-1", "name": "Ada"},
				"accessToken": "jwt-1",
			})
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL)
		identity, token, err := client.ValidateDevice(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("ValidateDevice failed: %v", err)
		}
		if identity.ID != "id-1" || token != "jwt-1" {
			t.Errorf("got identity %+v token %q", identity, token)
		}
	})

	t.Run("401 is a definitive rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"revoked"}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL)
		if _, _, err := client.ValidateDevice(context.Background(), "tok-1"); !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("expected ErrInvalidCredential, got %v", err)
		}
	})

	t.Run("5xx is unreachable, not a rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL)
		if _, _, err := client.ValidateDevice(context.Background(), "tok-1"); !errors.Is(err, ErrUnreachable) {
			t.Errorf("expected ErrUnreachable, got %v", err)
		}
	})

	t.Run("dead server is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewHTTPClient(server.URL)
		if _, _, err := client.ValidateDevice(context.Background(), "tok-1"); !errors.Is(err, ErrUnreachable) {
			t.Errorf("expected ErrUnreachable, got %v", err)
		}
	})
}
