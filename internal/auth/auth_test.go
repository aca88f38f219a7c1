package auth

import (
	"testing"
	"time"

	"github.com/kontrib/kontrib/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-at-least-32-bytes-long!", time.Hour)

	identity := &models.Identity{ID: "id-1", Phone: "+2348012345678"}
	token, err := m.Generate(identity)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.IdentityID != "id-1" {
		t.Errorf("identity_id = %q, want id-1", claims.IdentityID)
	}
	if claims.Phone != "+2348012345678" {
		t.Errorf("phone = %q, want +2348012345678", claims.Phone)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-one-secret-one-secret-one", time.Hour)
	token, err := m.Generate(&models.Identity{ID: "id-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	other := NewJWTManager("secret-two-secret-two-secret-two", time.Hour)
	if _, err := other.Validate(token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	m := NewJWTManager("secret-one-secret-one-secret-one", -time.Minute)
	token, err := m.Generate(&models.Identity{ID: "id-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); err == nil {
		t.Error("expected validation to fail for expired token")
	}
}

func TestOTP(t *testing.T) {
	code, err := GenerateOTP()
	if err != nil {
		t.Fatalf("GenerateOTP failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code length = %d, want 6", len(code))
	}

	hash, err := HashOTP(code)
	if err != nil {
		t.Fatalf("HashOTP failed: %v", err)
	}
	if !CheckOTP(hash, code) {
		t.Error("CheckOTP rejected the correct code")
	}
	if CheckOTP(hash, "000000") && code != "000000" {
		t.Error("CheckOTP accepted a wrong code")
	}
}

func TestDeviceToken(t *testing.T) {
	token, hash, err := NewDeviceToken()
	if err != nil {
		t.Fatalf("NewDeviceToken failed: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}
	if HashDeviceToken(token) != hash {
		t.Error("HashDeviceToken does not match the minted hash")
	}

	token2, hash2, err := NewDeviceToken()
	if err != nil {
		t.Fatalf("NewDeviceToken failed: %v", err)
	}
	if token == token2 || hash == hash2 {
		t.Error("two minted tokens should not collide")
	}
}
