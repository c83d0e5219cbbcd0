// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
)

// candidateRegistry stores candidates at index id-1. Candidates are never
// removed.
type candidateRegistry struct {
	items []models.Candidate
}

func (r *candidateRegistry) next() uint64 {
	return uint64(len(r.items)) + 1
}

func (r *candidateRegistry) len() uint64 {
	return uint64(len(r.items))
}

func (r *candidateRegistry) append(c models.Candidate) {
	r.items = append(r.items, c)
}

func (r *candidateRegistry) get(id uint64) (*models.Candidate, bool) {
	if id == 0 || id > uint64(len(r.items)) {
		return nil, false
	}
	return &r.items[id-1], true
}

func (r *candidateRegistry) ids() []uint64 {
	ids := make([]uint64, len(r.items))
	for i := range r.items {
		ids[i] = uint64(i) + 1
	}
	return ids
}

// voteLedger stores votes at index id-1 and tracks the single valid vote
// of each voter.
type voteLedger struct {
	votes   []models.Vote
	current map[string]uint64
	valid   uint64
}

func newVoteLedger() voteLedger {
	return voteLedger{current: make(map[string]uint64)}
}

func (l *voteLedger) next() uint64 {
	return uint64(len(l.votes)) + 1
}

func (l *voteLedger) append(v models.Vote) {
	l.votes = append(l.votes, v)
	l.current[v.Voter] = v.ID
	l.valid++
}

func (l *voteLedger) get(id uint64) (*models.Vote, bool) {
	if id == 0 || id > uint64(len(l.votes)) {
		return nil, false
	}
	return &l.votes[id-1], true
}

// validVoteOf returns the voter's currently valid vote.
func (l *voteLedger) validVoteOf(voter string) (*models.Vote, bool) {
	id, ok := l.current[voter]
	if !ok {
		return nil, false
	}
	return l.get(id)
}

func (l *voteLedger) invalidate(v *models.Vote) {
	v.Valid = false
	delete(l.current, v.Voter)
	l.valid--
}

// authorizationLedger maps voter identity to its eligibility record. The
// election is restricted as soon as any record exists.
type authorizationLedger struct {
	records map[string]*models.VoterAuthorization
}

func newAuthorizationLedger() authorizationLedger {
	return authorizationLedger{records: make(map[string]*models.VoterAuthorization)}
}

func (l *authorizationLedger) restricted() bool {
	return len(l.records) > 0
}

func (l *authorizationLedger) get(voter string) (*models.VoterAuthorization, bool) {
	rec, ok := l.records[voter]
	return rec, ok
}

// set stores the record. An unchanged record keeps its UpdatedAt.
func (l *authorizationLedger) set(voter string, authorized bool, weight uint64, at time.Time) {
	if rec, ok := l.records[voter]; ok {
		if rec.Authorized == authorized && rec.Weight == weight {
			return
		}
		rec.Authorized = authorized
		rec.Weight = weight
		rec.UpdatedAt = at
		return
	}
	l.records[voter] = &models.VoterAuthorization{
		Voter:      voter,
		Authorized: authorized,
		Weight:     weight,
		UpdatedAt:  at,
	}
}
