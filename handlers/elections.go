// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/cliparse"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
)

type ElectionHandler struct {
	reg *registry.Registry
	cfg cliparse.Config
}

func NewElectionHandler(reg *registry.Registry, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{reg: reg, cfg: cfg}
}

// CreateElection handles POST /elections
// The caller becomes the election's controller
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	creator, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id, err := h.reg.CreateElection(r.Context(), creator, registry.CreateParams{
		Title:                 req.Title,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		CandidateNames:        req.CandidateNames,
		CandidateDescriptions: req.CandidateDescriptions,
		CandidateMediaRefs:    req.CandidateMediaRefs,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: id,
		Handle:     "/elections/" + strconv.FormatUint(id, 10),
	})
}

// ListElections handles GET /elections
// With ?creator= only that identity's elections are listed
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	seq := h.reg.Elections()
	if creator := r.URL.Query().Get("creator"); creator != "" {
		seq = h.reg.ElectionsByCreator(creator)
	}

	ids := []uint64{}
	for id := range seq {
		ids = append(ids, id)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionListResponse{ElectionIDs: ids})
}

// GetElectionCount handles GET /elections/count
func (h *ElectionHandler) GetElectionCount(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ElectionCountResponse{Count: h.reg.ElectionCount()})
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e.Metadata())
}

// GetStats handles GET /elections/{id}/stats
func (h *ElectionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id must be a positive integer")
		return
	}
	stats, err := h.reg.AggregateStats(id)
	if err != nil {
		WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// TogglePause handles POST /elections/{id}/pause
func (h *ElectionHandler) TogglePause(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}

	paused, err := e.TogglePause(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	slog.Info("election pause toggled", "election_id", e.ID(), "paused", paused)
	middleware.JSONResponse(w, http.StatusOK, models.PauseResponse{Paused: paused})
}

// EndElection handles POST /elections/{id}/end
// Returns the final tally
func (h *ElectionHandler) EndElection(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}

	results, err := e.EndElection(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Ended is terminal, so nothing can modify the election after this
	endedAt := e.Metadata().LastModified

	slog.Info("election ended via api",
		"election_id", e.ID(),
		"total_votes", results.TotalVotes,
	)

	middleware.JSONResponse(w, http.StatusOK, models.EndElectionResponse{
		EndedAt: endedAt,
		Results: results,
	})
}

// DeleteElection handles DELETE /elections/{id}
// Elections are never deleted; the request is always refused
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET")
	middleware.ErrorCodeResponse(w, http.StatusMethodNotAllowed, "invalid_state",
		"elections cannot be deleted; end the election instead")
}
