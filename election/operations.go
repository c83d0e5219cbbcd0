// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
)

func (e *Election) requireController(caller string) error {
	if caller == "" || caller != e.controller {
		return ErrNotOwner
	}
	return nil
}

// requireEditable gates roster and authorization changes. They are allowed
// while the election is scheduled or active.
func (e *Election) requireEditable(now time.Time) error {
	switch {
	case e.ended:
		return ErrNotActive
	case e.paused:
		return ErrPaused
	case now.After(e.end):
		return ErrNotActive
	}
	return nil
}

func (e *Election) requireOpen(now time.Time) error {
	switch {
	case e.ended:
		return ErrNotOpen
	case e.paused:
		return ErrPaused
	case now.Before(e.start), now.After(e.end):
		return ErrNotOpen
	}
	return nil
}

// eligibleWeight returns the weight the caller votes with. An election
// without authorization records admits everyone with weight 1. Once any
// record exists, only authorized identities and the controller may vote.
func (e *Election) eligibleWeight(caller string) (uint64, error) {
	if !e.voters.restricted() {
		return 1, nil
	}
	if rec, ok := e.voters.get(caller); ok && rec.Authorized {
		return rec.Weight, nil
	}
	if caller == e.controller {
		return 1, nil
	}
	return 0, ErrNotAuthorized
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: candidate name is required", ErrInvalidParameters)
	}
	return nil
}

// AddCandidate registers a new active candidate and returns its id.
func (e *Election) AddCandidate(ctx context.Context, caller, name, description, mediaRef string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.requireController(caller); err != nil {
		return 0, err
	}
	if err := e.requireEditable(now); err != nil {
		return 0, err
	}
	if err := validName(name); err != nil {
		return 0, err
	}

	id := e.candidates.next()
	if _, err := e.commit(ctx, now, audit.CandidateAdded, caller, audit.Payload{
		CandidateID: id,
		Name:        name,
		Description: description,
		MediaRef:    mediaRef,
	}); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateCandidate replaces the display fields of an active candidate.
func (e *Election) UpdateCandidate(ctx context.Context, caller string, candidateID uint64, name, description, mediaRef string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.requireController(caller); err != nil {
		return err
	}
	if err := e.requireEditable(now); err != nil {
		return err
	}
	c, ok := e.candidates.get(candidateID)
	if !ok {
		return fmt.Errorf("candidate %d: %w", candidateID, ErrNotFound)
	}
	if !c.Active {
		return fmt.Errorf("candidate %d is inactive: %w", candidateID, ErrInvalidState)
	}
	if err := validName(name); err != nil {
		return err
	}

	_, err := e.commit(ctx, now, audit.CandidateUpdated, caller, audit.Payload{
		CandidateID: candidateID,
		Name:        name,
		Description: description,
		MediaRef:    mediaRef,
	})
	return err
}

// DeactivateCandidate takes a candidate off the ballot for good. Votes
// already cast for it stay counted.
func (e *Election) DeactivateCandidate(ctx context.Context, caller string, candidateID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.requireController(caller); err != nil {
		return err
	}
	if err := e.requireEditable(now); err != nil {
		return err
	}
	c, ok := e.candidates.get(candidateID)
	if !ok {
		return fmt.Errorf("candidate %d: %w", candidateID, ErrNotFound)
	}
	if !c.Active {
		return fmt.Errorf("candidate %d is already inactive: %w", candidateID, ErrInvalidState)
	}

	_, err := e.commit(ctx, now, audit.CandidateDeactivated, caller, audit.Payload{CandidateID: candidateID})
	return err
}

// AuthorizeVoter adds or overwrites the voter's authorization record.
func (e *Election) AuthorizeVoter(ctx context.Context, caller, voter string, weight uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.requireController(caller); err != nil {
		return err
	}
	if err := e.requireEditable(now); err != nil {
		return err
	}
	if voter == "" {
		return fmt.Errorf("%w: voter identity is required", ErrInvalidParameters)
	}
	if weight == 0 {
		return fmt.Errorf("%w: weight must be at least 1", ErrInvalidParameters)
	}

	_, err := e.commit(ctx, now, audit.VoterAuthorized, caller, audit.Payload{Voter: voter, Weight: weight})
	return err
}

// DeauthorizeVoter marks the voter ineligible. In a restricted election an
// identity without a record gets an ineligible record. An election without
// any records has nobody to deauthorize and reports ErrNotFound, so a typo
// cannot close the roll to every voter.
func (e *Election) DeauthorizeVoter(ctx context.Context, caller, voter string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.requireController(caller); err != nil {
		return err
	}
	if err := e.requireEditable(now); err != nil {
		return err
	}
	if voter == "" {
		return fmt.Errorf("%w: voter identity is required", ErrInvalidParameters)
	}
	if !e.voters.restricted() {
		return fmt.Errorf("voter %s has no authorization record: %w", voter, ErrNotFound)
	}

	_, err := e.commit(ctx, now, audit.VoterDeauthorized, caller, audit.Payload{Voter: voter})
	return err
}

// Receipt identifies an accepted vote and the event that recorded it.
type Receipt struct {
	VoteID uint64
	Hash   audit.Hash
}

// Vote casts the caller's ballot and returns the new vote id.
func (e *Election) Vote(ctx context.Context, caller string, candidateID uint64, metadataRef string) (uint64, error) {
	r, err := e.CastVote(ctx, caller, candidateID, metadataRef)
	return r.VoteID, err
}

// CastVote casts the caller's ballot and returns its receipt.
//
// Preconditions are checked in this order, each with its own error:
// ErrNotOpen (or ErrPaused), ErrAlreadyVoted, ErrInvalidCandidate,
// ErrNotAuthorized.
func (e *Election) CastVote(ctx context.Context, caller string, candidateID uint64, metadataRef string) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if caller == "" {
		return Receipt{}, ErrNotAuthorized
	}
	if err := e.requireOpen(now); err != nil {
		return Receipt{}, err
	}
	if _, voted := e.votes.validVoteOf(caller); voted {
		return Receipt{}, ErrAlreadyVoted
	}
	if c, ok := e.candidates.get(candidateID); !ok || !c.Active {
		return Receipt{}, ErrInvalidCandidate
	}
	weight, err := e.eligibleWeight(caller)
	if err != nil {
		return Receipt{}, err
	}

	id := e.votes.next()
	ev, err := e.commit(ctx, now, audit.VoteCast, caller, audit.Payload{
		CandidateID: candidateID,
		Voter:       caller,
		VoteID:      id,
		Weight:      weight,
		MetadataRef: metadataRef,
	})
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{VoteID: id, Hash: ev.Hash}, nil
}

// InvalidateVote flips the voter's valid vote to invalid and lets the voter
// vote again while the election is still open. The voter or the controller
// may call it.
func (e *Election) InvalidateVote(ctx context.Context, caller, voter string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if voter == "" {
		return fmt.Errorf("%w: voter identity is required", ErrInvalidParameters)
	}
	if caller == "" || (caller != voter && caller != e.controller) {
		return ErrNotAuthorized
	}
	if e.ended {
		return ErrNotActive
	}
	if e.paused {
		return ErrPaused
	}
	v, ok := e.votes.validVoteOf(voter)
	if !ok {
		return ErrNotVoted
	}

	_, err := e.commit(ctx, now, audit.VoteInvalidated, caller, audit.Payload{
		Voter:       voter,
		VoteID:      v.ID,
		CandidateID: v.CandidateID,
		Weight:      v.Weight,
	})
	return err
}

// EndElection closes the election once its window has elapsed and returns
// the final tally. Ending is terminal.
func (e *Election) EndElection(ctx context.Context, caller string) (models.Results, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.requireController(caller); err != nil {
		return models.Results{}, err
	}
	if e.ended {
		return models.Results{}, fmt.Errorf("election already ended: %w", ErrInvalidState)
	}
	if now.Before(e.end) {
		return models.Results{}, fmt.Errorf("voting window closes at %s: %w", e.end.Format(time.RFC3339), ErrInvalidState)
	}

	sealed := e.tally(false)
	ev, err := e.commit(ctx, now, audit.ElectionEnded, caller, audit.Payload{Results: &sealed})
	if err != nil {
		return models.Results{}, err
	}
	final := sealed.Clone()
	final.HeadHash = ev.Hash.String()
	return final, nil
}

// TogglePause flips the pause flag and returns the new value.
func (e *Election) TogglePause(ctx context.Context, caller string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.requireController(caller); err != nil {
		return false, err
	}
	if e.ended {
		return false, fmt.Errorf("election already ended: %w", ErrInvalidState)
	}

	typ := audit.ElectionPaused
	if e.paused {
		typ = audit.ElectionUnpaused
	}
	if _, err := e.commit(ctx, now, typ, caller, audit.Payload{}); err != nil {
		return false, err
	}
	return e.paused, nil
}
