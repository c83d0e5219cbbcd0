// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/cliparse"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/election"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
)

type CandidateHandler struct {
	reg *registry.Registry
	cfg cliparse.Config
}

func NewCandidateHandler(reg *registry.Registry, cfg cliparse.Config) *CandidateHandler {
	return &CandidateHandler{reg: reg, cfg: cfg}
}

// candidateID parses {cid}, writing 400 when it isn't a positive integer
func candidateID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	cid, ok := pathUint(r, "cid")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id must be a positive integer")
	}
	return cid, ok
}

// AddCandidate handles POST /elections/{id}/candidates
func (h *CandidateHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cid, err := e.AddCandidate(r.Context(), caller, req.Name, req.Description, req.MediaRef)
	if err != nil {
		WriteError(w, err)
		return
	}

	slog.Info("candidate added", "election_id", e.ID(), "candidate_id", cid)
	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{CandidateID: cid})
}

// ListCandidates handles GET /elections/{id}/candidates
// Lists every candidate id, including deactivated ones
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CandidateIDsResponse{CandidateIDs: e.CandidateIDs()})
}

// GetCandidate handles GET /elections/{id}/candidates/{cid}
func (h *CandidateHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	cid, ok := candidateID(w, r)
	if !ok {
		return
	}

	c, err := e.Candidate(cid)
	if err != nil {
		WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}

// UpdateCandidate handles PUT /elections/{id}/candidates/{cid}
func (h *CandidateHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	cid, ok := candidateID(w, r)
	if !ok {
		return
	}

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := e.UpdateCandidate(r.Context(), caller, cid, req.Name, req.Description, req.MediaRef); err != nil {
		WriteError(w, err)
		return
	}

	h.writeCandidate(w, e, cid)
}

// DeactivateCandidate handles POST /elections/{id}/candidates/{cid}/deactivate
// and DELETE /elections/{id}/candidates/{cid}. Candidates are never removed;
// votes already cast for them keep counting.
func (h *CandidateHandler) DeactivateCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	cid, ok := candidateID(w, r)
	if !ok {
		return
	}

	if err := e.DeactivateCandidate(r.Context(), caller, cid); err != nil {
		WriteError(w, err)
		return
	}

	slog.Info("candidate deactivated", "election_id", e.ID(), "candidate_id", cid)
	h.writeCandidate(w, e, cid)
}

func (h *CandidateHandler) writeCandidate(w http.ResponseWriter, e *election.Election, cid uint64) {
	c, err := e.Candidate(cid)
	if err != nil {
		WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}
