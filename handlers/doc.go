// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the election API.

# Handler Types

Each handler is a struct over the election registry and config:

  - ElectionHandler: Election registry and lifecycle (create, list, pause, end)
  - CandidateHandler: Candidate roster (add, update, deactivate)
  - VotingHandler: Voter authorization and voting
  - ResultsHandler: Results, standings and the audit trail

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(reg, cfg)
	resultsHandler := handlers.NewResultsHandler(reg, store, cfg)

ResultsHandler also takes a History, the stored audit trail. Both the
database store and the in-memory audit log satisfy it.

# Caller Identity

Mutating routes require a verified caller identity (see middleware.WithIdentity)
and answer 401 without one. Whether the caller may perform the operation is
decided by the election itself.

# Errors

WriteError maps election errors onto status codes with a machine-readable
code in the body:

	ErrInvalidParameters         → 400 invalid_parameters
	ErrNotFound                  → 404 not_found
	ErrNotOwner, ErrNotAuthorized → 403
	ErrPaused, ErrNotOpen, ErrInvalidState, ErrNotActive,
	ErrAlreadyVoted, ErrNotVoted → 409
	ErrInvalidCandidate          → 422 invalid_candidate

# Audit Trail

	GET /elections/{id}/events

Returns the stored events with the result of re-verifying the hash chain
and checking it ends at the election's live head hash.
*/
package handlers
