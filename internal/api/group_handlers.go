package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/middleware"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/money"
)

type createGroupRequest struct {
	Name    string         `json:"name"`
	Privacy models.Privacy `json:"privacy"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	group, err := s.groups.CreateGroup(r.Context(), middleware.IdentityID(r.Context()), req.Name, req.Privacy)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListForIdentity(r.Context(), middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Get(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	membership, err := s.groups.Join(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, membership)
}

type createProjectRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"targetAmount"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var target *money.Amount
	if req.TargetAmount != "" {
		amount, err := money.Parse(req.TargetAmount)
		if err != nil {
			respondError(w, fmt.Errorf("bad targetAmount: %w", apperr.ErrValidation))
			return
		}
		target = &amount
	}

	project, err := s.groups.CreateProject(r.Context(), mux.Vars(r)["id"],
		middleware.IdentityID(r.Context()), req.Name, target)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.groups.ListProjects(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projects)
}
