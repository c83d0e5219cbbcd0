// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/election"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
)

// History is the stored audit history of an election. Both the database
// store and the in-memory log satisfy it.
type History interface {
	ElectionEvents(ctx context.Context, electionID uint64) ([]audit.Event, error)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: ErrPaused wraps ErrNotOpen.
var errorMappings = []errorMapping{
	{election.ErrInvalidParameters, http.StatusBadRequest, "invalid_parameters"},
	{election.ErrNotFound, http.StatusNotFound, "not_found"},
	{election.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{election.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
	{election.ErrPaused, http.StatusConflict, "paused"},
	{election.ErrNotOpen, http.StatusConflict, "not_open"},
	{election.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{election.ErrNotActive, http.StatusConflict, "not_active"},
	{election.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
	{election.ErrNotVoted, http.StatusConflict, "not_voted"},
	{election.ErrInvalidCandidate, http.StatusUnprocessableEntity, "invalid_candidate"},
}

// WriteError maps an election error onto an HTTP status and error code.
// Anything unrecognised is logged and reported as 500.
func WriteError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			middleware.ErrorCodeResponse(w, m.status, m.code, err.Error())
			return
		}
	}
	slog.Error("request failed", "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
}

// pathUint parses a numeric path segment. Zero is never a valid id.
func pathUint(r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

// requireCaller returns the verified caller identity or writes 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Identity header is required")
		return "", false
	}
	return caller, true
}

// lookupElection resolves the {id} path segment against the registry,
// writing the error response itself when it can't.
func lookupElection(reg *registry.Registry, w http.ResponseWriter, r *http.Request) (*election.Election, bool) {
	id, ok := pathUint(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id must be a positive integer")
		return nil, false
	}
	e, err := reg.Election(id)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return e, true
}
