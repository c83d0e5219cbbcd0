// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/cliparse"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/election"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
)

const defaultVoterWeight = 1

type VotingHandler struct {
	reg *registry.Registry
	cfg cliparse.Config
}

func NewVotingHandler(reg *registry.Registry, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{reg: reg, cfg: cfg}
}

// AuthorizeVoter handles PUT /elections/{id}/voters/{identity}
// The body is optional; weight defaults to 1
func (h *VotingHandler) AuthorizeVoter(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	voter := r.PathValue("identity")

	var req models.AuthorizeVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	weight := uint64(defaultVoterWeight)
	if req.Weight != nil {
		weight = *req.Weight
	}

	if err := e.AuthorizeVoter(r.Context(), caller, voter, weight); err != nil {
		WriteError(w, err)
		return
	}

	slog.Info("voter authorized", "election_id", e.ID(), "voter", voter, "weight", weight)
	h.writeStatus(w, e, voter)
}

// DeauthorizeVoter handles DELETE /elections/{id}/voters/{identity}
func (h *VotingHandler) DeauthorizeVoter(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	voter := r.PathValue("identity")

	if err := e.DeauthorizeVoter(r.Context(), caller, voter); err != nil {
		WriteError(w, err)
		return
	}

	slog.Info("voter deauthorized", "election_id", e.ID(), "voter", voter)
	h.writeStatus(w, e, voter)
}

// GetVoterStatus handles GET /elections/{id}/voters/{identity}
func (h *VotingHandler) GetVoterStatus(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}
	h.writeStatus(w, e, r.PathValue("identity"))
}

func (h *VotingHandler) writeStatus(w http.ResponseWriter, e *election.Election, voter string) {
	resp := models.VoterStatusResponse{
		Voter:    voter,
		HasVoted: e.HasVoted(voter),
	}
	if rec, err := e.VoterAuthorization(voter); err == nil {
		resp.Authorization = &rec
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CastVote handles POST /elections/{id}/votes
// One valid vote per identity; the vote counts at the caller's current weight
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	receipt, err := e.CastVote(r.Context(), caller, req.CandidateID, req.MetadataRef)
	if err != nil {
		WriteError(w, err)
		return
	}

	slog.Info("vote cast",
		"election_id", e.ID(),
		"vote_id", receipt.VoteID,
		"candidate_id", req.CandidateID,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:   receipt.VoteID,
		HeadHash: receipt.Hash.String(),
	})
}

// InvalidateVote handles POST /elections/{id}/votes/invalidate
// Voters may withdraw their own vote; the controller may invalidate anyone's.
// An empty body invalidates the caller's own vote.
func (h *VotingHandler) InvalidateVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	e, ok := lookupElection(h.reg, w, r)
	if !ok {
		return
	}

	var req models.InvalidateVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	voter := req.Voter
	if voter == "" {
		voter = caller
	}

	if err := e.InvalidateVote(r.Context(), caller, voter); err != nil {
		WriteError(w, err)
		return
	}

	slog.Info("vote invalidated", "election_id", e.ID(), "voter", voter, "by", caller)
	h.writeStatus(w, e, voter)
}
