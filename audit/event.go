// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"slices"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
)

// Type names an accepted operation.
type Type string

const (
	ElectionCreated      Type = "ElectionCreated"
	CandidateAdded       Type = "CandidateAdded"
	CandidateUpdated     Type = "CandidateUpdated"
	CandidateDeactivated Type = "CandidateDeactivated"
	VoterAuthorized      Type = "VoterAuthorized"
	VoterDeauthorized    Type = "VoterDeauthorized"
	VoteCast             Type = "VoteCast"
	VoteInvalidated      Type = "VoteInvalidated"
	ElectionPaused       Type = "ElectionPaused"
	ElectionUnpaused     Type = "ElectionUnpaused"
	ElectionEnded        Type = "ElectionEnded"
)

// Valid reports whether t is one of the known event types.
func (t Type) Valid() bool {
	switch t {
	case ElectionCreated, CandidateAdded, CandidateUpdated, CandidateDeactivated,
		VoterAuthorized, VoterDeauthorized, VoteCast, VoteInvalidated,
		ElectionPaused, ElectionUnpaused, ElectionEnded:
		return true
	}
	return false
}

// SeedCandidate is a candidate registered together with its election.
type SeedCandidate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MediaRef    string `json:"media_ref,omitempty"`
}

// Payload carries the arguments of the operation. Only the fields relevant
// to the event type are set.
type Payload struct {
	Title       string          `json:"title,omitempty"`
	StartTime   *time.Time      `json:"start_time,omitempty"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	Candidates  []SeedCandidate `json:"candidates,omitempty"`
	CandidateID uint64          `json:"candidate_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	MediaRef    string          `json:"media_ref,omitempty"`
	Voter       string          `json:"voter,omitempty"`
	Weight      uint64          `json:"weight,omitempty"`
	VoteID      uint64          `json:"vote_id,omitempty"`
	MetadataRef string          `json:"metadata_ref,omitempty"`
	Results     *models.Results `json:"results,omitempty"`
}

// Clone returns a copy of p that shares no memory with it.
func (p Payload) Clone() Payload {
	if p.StartTime != nil {
		t := *p.StartTime
		p.StartTime = &t
	}
	if p.EndTime != nil {
		t := *p.EndTime
		p.EndTime = &t
	}
	p.Candidates = slices.Clone(p.Candidates)
	if p.Results != nil {
		r := p.Results.Clone()
		p.Results = &r
	}
	return p
}

// Event is one entry of an election's append-only history.
//
// Sequence starts at 1 (ElectionCreated) and is contiguous per election.
// Hash links the event to PrevHash, so the sequence of hashes for one
// election forms a chain that breaks on any edit, removal or reordering.
type Event struct {
	ID         string    `json:"event_id"`
	Type       Type      `json:"event_type"`
	ElectionID uint64    `json:"election_id"`
	Sequence   uint64    `json:"sequence"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Payload   `json:"payload"`
	PrevHash   Hash      `json:"prev_hash"`
	Hash       Hash      `json:"hash"`
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	e.Payload = e.Payload.Clone()
	return e
}
