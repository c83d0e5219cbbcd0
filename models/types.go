package models

import (
	"slices"
	"time"
)

// Election lifecycle states. Scheduled, Active and Paused are computed from
// the election's flags and the clock; Ended is terminal.
type ElectionState string

const (
	StateScheduled ElectionState = "scheduled"
	StateActive    ElectionState = "active"
	StatePaused    ElectionState = "paused"
	// StateExpired means the voting window elapsed but nobody has ended
	// the election yet.
	StateExpired ElectionState = "expired"
	StateEnded   ElectionState = "ended"
)

// Request types

// Candidate seeds are parallel arrays. Descriptions and media refs may be
// omitted entirely, otherwise they must match the length of names.
type CreateElectionRequest struct {
	Title                 string    `json:"title"`
	StartTime             time.Time `json:"start_time"`
	EndTime               time.Time `json:"end_time"`
	CandidateNames        []string  `json:"candidate_names"`
	CandidateDescriptions []string  `json:"candidate_descriptions,omitempty"`
	CandidateMediaRefs    []string  `json:"candidate_media_refs,omitempty"`
}

type CandidateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MediaRef    string `json:"media_ref"`
}

type AuthorizeVoterRequest struct {
	Weight *uint64 `json:"weight,omitempty"`
}

type CastVoteRequest struct {
	CandidateID uint64 `json:"candidate_id"`
	MetadataRef string `json:"metadata_ref"`
}

// Voter defaults to the caller when empty.
type InvalidateVoteRequest struct {
	Voter string `json:"voter"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID uint64 `json:"election_id"`
	Handle     string `json:"handle"`
}

type AddCandidateResponse struct {
	CandidateID uint64 `json:"candidate_id"`
}

// HeadHash is the hash of the event that recorded this vote.
type CastVoteResponse struct {
	VoteID   uint64 `json:"vote_id"`
	HeadHash string `json:"head_hash"`
}

type PauseResponse struct {
	Paused bool `json:"paused"`
}

type EndElectionResponse struct {
	EndedAt time.Time `json:"ended_at"`
	Results Results   `json:"results"`
}

type ElectionListResponse struct {
	ElectionIDs []uint64 `json:"election_ids"`
}

type ElectionCountResponse struct {
	Count uint64 `json:"count"`
}

type CandidateIDsResponse struct {
	CandidateIDs []uint64 `json:"candidate_ids"`
}

type VoterStatusResponse struct {
	Voter         string              `json:"voter"`
	HasVoted      bool                `json:"has_voted"`
	Authorization *VoterAuthorization `json:"authorization,omitempty"`
}

type ActiveResponse struct {
	Active bool          `json:"active"`
	State  ElectionState `json:"state"`
}

type StandingsResponse struct {
	Standings []Standing `json:"standings"`
}

// Domain types

type Election struct {
	ID             uint64        `json:"id"`
	Title          string        `json:"title"`
	Creator        string        `json:"creator"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	State          ElectionState `json:"state"`
	IsActive       bool          `json:"is_active"`
	IsPaused       bool          `json:"is_paused"`
	CandidateCount uint64        `json:"candidate_count"`
	TotalVotes     uint64        `json:"total_votes"`
	CreatedAt      time.Time     `json:"created_at"`
	LastModified   time.Time     `json:"last_modified"`
	HeadHash       string        `json:"head_hash"`
	EventCount     uint64        `json:"event_count"`
}

type Candidate struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	MediaRef      string    `json:"media_ref,omitempty"`
	Active        bool      `json:"active"`
	VoteCount     uint64    `json:"vote_count"`
	WeightedVotes uint64    `json:"weighted_votes"`
	CreatedAt     time.Time `json:"created_at"`
}

type Vote struct {
	ID          uint64    `json:"id"`
	Voter       string    `json:"voter"`
	CandidateID uint64    `json:"candidate_id"`
	Weight      uint64    `json:"weight"`
	Timestamp   time.Time `json:"timestamp"`
	MetadataRef string    `json:"metadata_ref,omitempty"`
	Valid       bool      `json:"valid"`
}

type VoterAuthorization struct {
	Voter      string    `json:"voter"`
	Authorized bool      `json:"authorized"`
	Weight     uint64    `json:"weight"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Results lists candidate ids in id order with the matching vote counts.
type Results struct {
	CandidateIDs []uint64 `json:"candidate_ids"`
	VoteCounts   []uint64 `json:"vote_counts"`
	TotalVotes   uint64   `json:"total_votes"`
	HeadHash     string   `json:"head_hash,omitempty"`
}

// Clone returns a copy that shares no memory with r.
func (r Results) Clone() Results {
	r.CandidateIDs = slices.Clone(r.CandidateIDs)
	r.VoteCounts = slices.Clone(r.VoteCounts)
	return r
}

type Standing struct {
	Rank          int     `json:"rank"` // 1-indexed ranking
	CandidateID   uint64  `json:"candidate_id"`
	Name          string  `json:"name"`
	Active        bool    `json:"active"`
	VoteCount     uint64  `json:"vote_count"`
	WeightedVotes uint64  `json:"weighted_votes"`
	Share         float64 `json:"share"`
}

// AggregateStats merges registry metadata cached at creation time with a
// live read from the election.
type AggregateStats struct {
	ElectionID     uint64        `json:"election_id"`
	Title          string        `json:"title"`
	Creator        string        `json:"creator"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	CreatedAt      time.Time     `json:"created_at"`
	TotalVotes     uint64        `json:"total_votes"`
	CandidateCount uint64        `json:"candidate_count"`
	IsActive       bool          `json:"is_active"`
	State          ElectionState `json:"state"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
