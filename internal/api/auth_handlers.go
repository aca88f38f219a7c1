package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/middleware"
)

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	expiresAt, err := s.auth.SendOTP(r.Context(), req.Phone)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"expiresAt": expiresAt})
}

type verifyOTPRequest struct {
	Phone      string `json:"phone"`
	Code       string `json:"otp"`
	DeviceName string `json:"deviceName"`
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	result, err := s.auth.VerifyOTP(r.Context(), req.Phone, req.Code, req.DeviceName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type deviceTokenRequest struct {
	DeviceToken string `json:"deviceToken"`
}

func (s *Server) handleValidateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceTokenRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.DeviceToken == "" {
		respondError(w, fmt.Errorf("deviceToken required: %w", apperr.ErrValidation))
		return
	}
	result, err := s.auth.ValidateDevice(r.Context(), req.DeviceToken)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req deviceTokenRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := s.auth.Logout(r.Context(), req.DeviceToken); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleCheckIdentity is the unauthenticated "does this account still exist"
// probe used by clients that hold a cached identity but no device credential.
// It exposes nothing beyond the cached snapshot the client already has.
func (s *Server) handleCheckIdentity(w http.ResponseWriter, r *http.Request) {
	identity, err := s.auth.Me(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, identity)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, err := s.auth.Me(r.Context(), middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, identity)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	identity, err := s.auth.UpdateProfile(r.Context(), middleware.IdentityID(r.Context()), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, identity)
}
