package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/auth"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/storage"
)

// AuthService implements phone verification and device-credential sessions.
//
// A successful OTP verification mints two tokens: a long-lived opaque device
// credential (stored hashed, revocable) and a short-lived JWT access token.
// Clients revalidate the device credential on startup to refresh the access
// token and the cached identity.
type AuthService struct {
	store       storage.Store
	jwt         *auth.JWTManager
	otpTTL      time.Duration
	maxAttempts int
}

// NewAuthService creates an AuthService.
func NewAuthService(store storage.Store, jwt *auth.JWTManager, otpTTL time.Duration, maxAttempts int) *AuthService {
	return &AuthService{store: store, jwt: jwt, otpTTL: otpTTL, maxAttempts: maxAttempts}
}

// SendOTP issues a one-time code for the phone number, replacing any prior
// code. Delivery to the phone is out of scope; the code is logged at debug
// level for development setups.
func (s *AuthService) SendOTP(ctx context.Context, phone string) (expiresAt int64, err error) {
	slog.Info("SendOTP request received", "phone", phone)

	if phone == "" {
		return 0, fmt.Errorf("phone required: %w", apperr.ErrValidation)
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return 0, err
	}
	hash, err := auth.HashOTP(code)
	if err != nil {
		return 0, err
	}
	expiresAt = time.Now().Add(s.otpTTL).Unix()
	if err := s.store.UpsertOTP(ctx, phone, hash, expiresAt); err != nil {
		return 0, err
	}

	slog.Debug("OTP issued", "phone", phone, "code", code)
	return expiresAt, nil
}

// VerifyResult is the outcome of a successful OTP verification.
type VerifyResult struct {
	Identity    *models.Identity `json:"user"`
	DeviceToken string           `json:"deviceToken"`
	AccessToken string           `json:"accessToken"`
	IsNewUser   bool             `json:"isNewUser"`
}

// VerifyOTP checks the submitted code; on success it creates the identity if
// the phone is new, mints a device credential, and issues an access token.
// Every failure mode maps to apperr.ErrInvalidCredential so callers cannot
// distinguish wrong code from expired code.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code, deviceName string) (*VerifyResult, error) {
	slog.Info("VerifyOTP request received", "phone", phone)

	codeHash, expiresAt, attempts, err := s.store.GetOTP(ctx, phone)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("no pending code: %w", apperr.ErrInvalidCredential)
		}
		return nil, err
	}
	if time.Now().Unix() > expiresAt {
		_ = s.store.DeleteOTP(ctx, phone)
		return nil, fmt.Errorf("code expired: %w", apperr.ErrInvalidCredential)
	}
	if attempts >= s.maxAttempts {
		_ = s.store.DeleteOTP(ctx, phone)
		return nil, fmt.Errorf("too many attempts: %w", apperr.ErrInvalidCredential)
	}
	if !auth.CheckOTP(codeHash, code) {
		_ = s.store.IncrementOTPAttempts(ctx, phone)
		return nil, fmt.Errorf("wrong code: %w", apperr.ErrInvalidCredential)
	}
	if err := s.store.DeleteOTP(ctx, phone); err != nil {
		return nil, err
	}

	identity, err := s.store.GetIdentityByPhone(ctx, phone)
	isNew := false
	if errors.Is(err, apperr.ErrNotFound) {
		identity = &models.Identity{Name: phone, Phone: phone}
		if err := s.store.CreateIdentity(ctx, identity); err != nil {
			return nil, err
		}
		isNew = true
	} else if err != nil {
		return nil, err
	}

	deviceToken, tokenHash, err := auth.NewDeviceToken()
	if err != nil {
		return nil, err
	}
	device := &models.Device{IdentityID: identity.ID, TokenHash: tokenHash, Name: deviceName}
	if err := s.store.CreateDevice(ctx, device); err != nil {
		return nil, err
	}

	accessToken, err := s.jwt.Generate(identity)
	if err != nil {
		return nil, err
	}

	slog.Info("Phone verified", "identity_id", identity.ID, "is_new", isNew)
	return &VerifyResult{
		Identity:    identity,
		DeviceToken: deviceToken,
		AccessToken: accessToken,
		IsNewUser:   isNew,
	}, nil
}

// ValidateResult is the outcome of a successful device validation.
type ValidateResult struct {
	Identity    *models.Identity `json:"user"`
	AccessToken string           `json:"accessToken"`
}

// ValidateDevice exchanges a device credential for the current identity and a
// fresh access token. Revoked or unknown credentials map to
// apperr.ErrInvalidCredential.
func (s *AuthService) ValidateDevice(ctx context.Context, deviceToken string) (*ValidateResult, error) {
	device, err := s.store.GetDeviceByTokenHash(ctx, auth.HashDeviceToken(deviceToken))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("unknown device token: %w", apperr.ErrInvalidCredential)
		}
		return nil, err
	}
	if device.Revoked() {
		return nil, fmt.Errorf("device credential revoked: %w", apperr.ErrInvalidCredential)
	}

	identity, err := s.store.GetIdentity(ctx, device.IdentityID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("identity gone: %w", apperr.ErrInvalidCredential)
		}
		return nil, err
	}

	if err := s.store.TouchDevice(ctx, device.ID); err != nil {
		slog.Warn("Failed to touch device", "device_id", device.ID, "error", err)
	}

	accessToken, err := s.jwt.Generate(identity)
	if err != nil {
		return nil, err
	}
	return &ValidateResult{Identity: identity, AccessToken: accessToken}, nil
}

// Me returns the identity for an authenticated session, or ErrNotFound when
// the account no longer exists.
func (s *AuthService) Me(ctx context.Context, identityID string) (*models.Identity, error) {
	return s.store.GetIdentity(ctx, identityID)
}

// Logout revokes a device credential. Idempotent; revoking an unknown token
// succeeds so clients can always complete a local logout.
func (s *AuthService) Logout(ctx context.Context, deviceToken string) error {
	return s.store.RevokeDeviceByTokenHash(ctx, auth.HashDeviceToken(deviceToken))
}

// UpdateProfile changes the display name of an identity.
func (s *AuthService) UpdateProfile(ctx context.Context, identityID, name string) (*models.Identity, error) {
	if name == "" {
		return nil, fmt.Errorf("name required: %w", apperr.ErrValidation)
	}
	if err := s.store.UpdateIdentityName(ctx, identityID, name); err != nil {
		return nil, err
	}
	return s.store.GetIdentity(ctx, identityID)
}
