// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/cliparse"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
)

type ResultsHandler struct {
	reg     *registry.Registry
	history History
	cfg     cliparse.Config
}

func NewResultsHandler(reg *registry.Registry, history History, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{reg: reg, history: history, cfg: cfg}
}

// EventHistoryResponse is an election's stored audit trail together with
// the outcome of verifying it.
type EventHistoryResponse struct {
	ElectionID  uint64        `json:"election_id"`
	Events      []audit.Event `json:"events"`
	Verified    bool          `json:"verified"`
	VerifyError string        `json:"verify_error,omitempty"`
	HeadHash    string        `json:"head_hash"`
	Sequence    uint64        `json:"sequence"`
}

// GetResults handles GET /elections/{id}/results
// Results are public at any time. ?weighted=true counts each vote at the
// weight it was cast with.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("weighted") == "true" {
		middleware.JSONResponse(w, http.StatusOK, e.WeightedResults())
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e.Results())
}

// GetStandings handles GET /elections/{id}/standings
func (h *ResultsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.StandingsResponse{Standings: e.Standings()})
}

// GetActive handles GET /elections/{id}/active
func (h *ResultsHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	state := e.State()
	middleware.JSONResponse(w, http.StatusOK, models.ActiveResponse{
		Active: state == models.StateActive,
		State:  state,
	})
}

// GetEvents handles GET /elections/{id}/events
// Returns the stored history and checks it hashes back to the live head
func (h *ResultsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}

	// Read the head first: the stored history can only be ahead of it
	head, seq := e.HeadHash()

	events, err := h.history.ElectionEvents(r.Context(), e.ID())
	if err != nil {
		slog.Error("failed to load election history", "election_id", e.ID(), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	resp := EventHistoryResponse{
		ElectionID: e.ID(),
		Events:     events,
		Verified:   true,
		HeadHash:   head.String(),
		Sequence:   seq,
	}
	if err := audit.Verify(events); err != nil {
		resp.Verified = false
		resp.VerifyError = err.Error()
	} else if seq > 0 && (uint64(len(events)) < seq || events[seq-1].Hash != head) {
		resp.Verified = false
		resp.VerifyError = "stored history does not match the live head hash"
	}

	if !resp.Verified {
		slog.Warn("audit history failed verification",
			"election_id", e.ID(),
			"reason", resp.VerifyError,
		)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
