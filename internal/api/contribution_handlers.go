package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/middleware"
	"github.com/kontrib/kontrib/internal/money"
	"github.com/kontrib/kontrib/internal/service"
)

type submitContributionRequest struct {
	GroupID   string `json:"groupId"`
	ProjectID string `json:"projectId"`
	Amount    string `json:"amount"`
	ProofRef  string `json:"proofRef"`
	TxnRef    string `json:"txnRef"`
}

func (s *Server) handleSubmitContribution(w http.ResponseWriter, r *http.Request) {
	var req submitContributionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondError(w, fmt.Errorf("bad amount: %w", apperr.ErrValidation))
		return
	}

	c, err := s.contributions.Submit(r.Context(), service.SubmitParams{
		GroupID:     req.GroupID,
		ProjectID:   req.ProjectID,
		SubmitterID: middleware.IdentityID(r.Context()),
		Amount:      amount,
		ProofRef:    req.ProofRef,
		TxnRef:      req.TxnRef,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	c, err := s.contributions.Get(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleConfirmContribution(w http.ResponseWriter, r *http.Request) {
	c, err := s.contributions.Confirm(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type rejectContributionRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRejectContribution(w http.ResponseWriter, r *http.Request) {
	// Body is optional; a missing or empty body means no reason.
	var req rejectContributionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, err)
			return
		}
	}
	c, err := s.contributions.Reject(r.Context(), mux.Vars(r)["id"],
		middleware.IdentityID(r.Context()), req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	list, err := s.contributions.ListForGroup(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
