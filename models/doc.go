// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateElectionRequest: title, window, parallel candidate arrays
  - CandidateRequest: name, description, media_ref
  - AuthorizeVoterRequest: weight (optional, defaults to 1)
  - CastVoteRequest: candidate_id, metadata_ref
  - InvalidateVoteRequest: voter (defaults to the caller)

# Response Types

Types for JSON responses:

  - CreateElectionResponse: election_id, handle
  - AddCandidateResponse: candidate_id
  - CastVoteResponse: vote_id, head_hash
  - EndElectionResponse: ended_at, results
  - VoterStatusResponse: has_voted, authorization
  - ErrorResponse: error, code, message

# Domain Types

  - Election: metadata with computed state
  - Candidate: roster entry with its tallies
  - Vote: ledger entry; never removed, only invalidated
  - VoterAuthorization: eligibility and weight
  - Results, Standing, AggregateStats: read views

# States

	StateScheduled = "scheduled"
	StateActive    = "active"
	StatePaused    = "paused"
	StateExpired   = "expired"
	StateEnded     = "ended"
*/
package models
