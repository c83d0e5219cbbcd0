// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"sort"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
)

func (e *Election) ID() uint64 {
	return e.id
}

func (e *Election) Controller() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.controller
}

func (e *Election) state() models.ElectionState {
	now := e.clock.Now()
	switch {
	case e.ended:
		return models.StateEnded
	case e.paused:
		return models.StatePaused
	case now.Before(e.start):
		return models.StateScheduled
	case now.After(e.end):
		return models.StateExpired
	default:
		return models.StateActive
	}
}

// State computes the lifecycle state from the flags and the clock.
func (e *Election) State() models.ElectionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state()
}

// IsActive reports whether the election accepts votes right now.
func (e *Election) IsActive() bool {
	return e.State() == models.StateActive
}

func (e *Election) Metadata() models.Election {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := e.state()
	return models.Election{
		ID:             e.id,
		Title:          e.title,
		Creator:        e.controller,
		StartTime:      e.start,
		EndTime:        e.end,
		State:          st,
		IsActive:       st == models.StateActive,
		IsPaused:       e.paused,
		CandidateCount: e.candidates.len(),
		TotalVotes:     e.votes.valid,
		CreatedAt:      e.createdAt,
		LastModified:   e.modifiedAt,
		HeadHash:       e.head.String(),
		EventCount:     e.seq,
	}
}

func (e *Election) Candidate(id uint64) (models.Candidate, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.candidates.get(id)
	if !ok {
		return models.Candidate{}, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	return *c, nil
}

// CandidateIDs lists every candidate id, active or not, in id order.
func (e *Election) CandidateIDs() []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.candidates.ids()
}

func (e *Election) Candidates() []models.Candidate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Candidate, len(e.candidates.items))
	copy(out, e.candidates.items)
	return out
}

func (e *Election) tally(weighted bool) models.Results {
	r := models.Results{
		CandidateIDs: e.candidates.ids(),
		VoteCounts:   make([]uint64, e.candidates.len()),
		TotalVotes:   e.votes.valid,
	}
	for i, c := range e.candidates.items {
		if weighted {
			r.VoteCounts[i] = c.WeightedVotes
		} else {
			r.VoteCounts[i] = c.VoteCount
		}
	}
	return r
}

// Results returns candidate ids, their valid vote counts and the total.
func (e *Election) Results() models.Results {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r := e.tally(false)
	r.HeadHash = e.head.String()
	return r
}

// WeightedResults is Results with each vote counted at the weight it was
// cast with. TotalVotes is still the number of valid votes.
func (e *Election) WeightedResults() models.Results {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r := e.tally(true)
	r.HeadHash = e.head.String()
	return r
}

// Standings ranks candidates by vote count, then weighted votes, then id.
func (e *Election) Standings() []models.Standing {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := e.votes.valid
	out := make([]models.Standing, 0, len(e.candidates.items))
	for _, c := range e.candidates.items {
		s := models.Standing{
			CandidateID:   c.ID,
			Name:          c.Name,
			Active:        c.Active,
			VoteCount:     c.VoteCount,
			WeightedVotes: c.WeightedVotes,
		}
		if total > 0 {
			s.Share = float64(c.VoteCount) / float64(total)
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if a.WeightedVotes != b.WeightedVotes {
			return a.WeightedVotes > b.WeightedVotes
		}
		return a.CandidateID < b.CandidateID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func (e *Election) HasVoted(voter string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.votes.validVoteOf(voter)
	return ok
}

// Vote records are never removed, so any id up to the latest resolves.
func (e *Election) GetVote(id uint64) (models.Vote, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.votes.get(id)
	if !ok {
		return models.Vote{}, fmt.Errorf("vote %d: %w", id, ErrNotFound)
	}
	return *v, nil
}

// VoteOf returns the voter's currently valid vote.
func (e *Election) VoteOf(voter string) (models.Vote, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.votes.validVoteOf(voter)
	if !ok {
		return models.Vote{}, fmt.Errorf("vote of %q: %w", voter, ErrNotFound)
	}
	return *v, nil
}

func (e *Election) VoterAuthorization(voter string) (models.VoterAuthorization, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.voters.get(voter)
	if !ok {
		return models.VoterAuthorization{}, fmt.Errorf("authorization of %q: %w", voter, ErrNotFound)
	}
	return *rec, nil
}

// Restricted reports whether the election has any authorization records.
func (e *Election) Restricted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.voters.restricted()
}

// HeadHash returns the hash of the latest event and its sequence number.
func (e *Election) HeadHash() (audit.Hash, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.head, e.seq
}
