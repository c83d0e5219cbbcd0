// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
)

// Deps are the collaborators an election uses. Zero values fall back to the
// system clock, a discarding sink and UUID event ids.
type Deps struct {
	Clock  Clock
	Sink   audit.Sink
	IDs    audit.IDGenerator
	Logger *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Sink == nil {
		d.Sink = audit.Discard
	}
	if d.IDs == nil {
		d.IDs = audit.UUIDGenerator{}
	}
	d.Logger = ResolveLogger(d.Logger)
	return d
}

// Params describe a new election. The registry validates them.
type Params struct {
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	Candidates []audit.SeedCandidate
}

// Election is the state machine of one election. It owns its candidate
// registry, vote ledger and authorization ledger.
//
// Every mutating operation runs under the election's lock: preconditions
// are checked against the current state, the resulting event is appended to
// the sink, and only then is the event applied. apply is the single place
// where state changes.
type Election struct {
	mu sync.RWMutex

	id         uint64
	title      string
	controller string
	start      time.Time
	end        time.Time
	ended      bool
	paused     bool
	createdAt  time.Time
	modifiedAt time.Time

	candidates candidateRegistry
	votes      voteLedger
	voters     authorizationLedger

	seq  uint64
	head audit.Hash

	clock  Clock
	sink   audit.Sink
	ids    audit.IDGenerator
	logger *slog.Logger
}

func newElection(id uint64, deps Deps) *Election {
	deps = deps.withDefaults()
	return &Election{
		id:     id,
		votes:  newVoteLedger(),
		voters: newAuthorizationLedger(),
		clock:  deps.Clock,
		sink:   deps.Sink,
		ids:    deps.IDs,
		logger: deps.Logger.With("election_id", id),
	}
}

// Create records the ElectionCreated event for a new election and returns
// it with its seed candidates registered under ids 1..n.
func Create(ctx context.Context, id uint64, controller string, p Params, deps Deps) (*Election, error) {
	e := newElection(id, deps)
	start := p.StartTime.UTC()
	end := p.EndTime.UTC()

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.commit(ctx, e.clock.Now(), audit.ElectionCreated, controller, audit.Payload{
		Title:      p.Title,
		StartTime:  &start,
		EndTime:    &end,
		Candidates: p.Candidates,
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// Replay rebuilds an election from its history. The events must all belong
// to one election and start with ElectionCreated.
func Replay(events []audit.Event, deps Deps) (*Election, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: empty history", audit.ErrChainBroken)
	}
	if events[0].Type != audit.ElectionCreated {
		return nil, fmt.Errorf("%w: election %d starts with %s", audit.ErrChainBroken, events[0].ElectionID, events[0].Type)
	}

	e := newElection(events[0].ElectionID, deps)
	for _, ev := range events {
		if err := e.checkReplayable(ev); err != nil {
			return nil, fmt.Errorf("%w: election %d sequence %d: %v", audit.ErrChainBroken, ev.ElectionID, ev.Sequence, err)
		}
		e.apply(ev)
	}
	return e, nil
}

// commit seals an event for the next sequence number, hands it to the sink
// and applies it. Callers hold e.mu and have checked every precondition.
func (e *Election) commit(ctx context.Context, now time.Time, typ audit.Type, actor string, payload audit.Payload) (audit.Event, error) {
	ev, err := audit.Seal(audit.Event{
		ID:         e.ids.NewID(),
		Type:       typ,
		ElectionID: e.id,
		Sequence:   e.seq + 1,
		Actor:      actor,
		OccurredAt: now.UTC(),
		Payload:    payload,
		PrevHash:   e.head,
	})
	if err != nil {
		return audit.Event{}, err
	}

	if err := e.sink.Append(ctx, ev); err != nil {
		e.logger.Error("failed to record event",
			"event_type", typ,
			"sequence", ev.Sequence,
			"error", err,
		)
		return audit.Event{}, fmt.Errorf("recording %s: %w", typ, err)
	}

	e.apply(ev)
	e.logger.Debug("event applied",
		"event_type", typ,
		"sequence", ev.Sequence,
		"actor", actor,
	)
	return ev, nil
}

// apply folds one event into the state. It never fails: live operations
// check preconditions first and replay checks structure first.
func (e *Election) apply(ev audit.Event) {
	p := ev.Payload
	switch ev.Type {
	case audit.ElectionCreated:
		e.title = p.Title
		e.controller = ev.Actor
		e.start = p.StartTime.UTC()
		e.end = p.EndTime.UTC()
		e.createdAt = ev.OccurredAt
		for _, seed := range p.Candidates {
			e.candidates.append(models.Candidate{
				ID:          e.candidates.next(),
				Name:        seed.Name,
				Description: seed.Description,
				MediaRef:    seed.MediaRef,
				Active:      true,
				CreatedAt:   ev.OccurredAt,
			})
		}

	case audit.CandidateAdded:
		e.candidates.append(models.Candidate{
			ID:          p.CandidateID,
			Name:        p.Name,
			Description: p.Description,
			MediaRef:    p.MediaRef,
			Active:      true,
			CreatedAt:   ev.OccurredAt,
		})

	case audit.CandidateUpdated:
		c, _ := e.candidates.get(p.CandidateID)
		c.Name = p.Name
		c.Description = p.Description
		c.MediaRef = p.MediaRef

	case audit.CandidateDeactivated:
		c, _ := e.candidates.get(p.CandidateID)
		c.Active = false

	case audit.VoterAuthorized:
		e.voters.set(p.Voter, true, p.Weight, ev.OccurredAt)

	case audit.VoterDeauthorized:
		e.voters.set(p.Voter, false, 0, ev.OccurredAt)

	case audit.VoteCast:
		e.votes.append(models.Vote{
			ID:          p.VoteID,
			Voter:       p.Voter,
			CandidateID: p.CandidateID,
			Weight:      p.Weight,
			Timestamp:   ev.OccurredAt,
			MetadataRef: p.MetadataRef,
			Valid:       true,
		})
		c, _ := e.candidates.get(p.CandidateID)
		c.VoteCount++
		c.WeightedVotes += p.Weight

	case audit.VoteInvalidated:
		v, _ := e.votes.get(p.VoteID)
		c, _ := e.candidates.get(v.CandidateID)
		c.VoteCount--
		c.WeightedVotes -= v.Weight
		e.votes.invalidate(v)

	case audit.ElectionPaused:
		e.paused = true

	case audit.ElectionUnpaused:
		e.paused = false

	case audit.ElectionEnded:
		e.ended = true
	}

	e.seq = ev.Sequence
	e.head = ev.Hash
	e.modifiedAt = ev.OccurredAt
}

// checkReplayable rejects events that apply could not fold consistently.
func (e *Election) checkReplayable(ev audit.Event) error {
	if ev.ElectionID != e.id {
		return fmt.Errorf("belongs to election %d", ev.ElectionID)
	}
	if ev.Sequence != e.seq+1 || ev.PrevHash != e.head {
		return fmt.Errorf("does not follow sequence %d", e.seq)
	}
	if e.seq > 0 && e.ended {
		return fmt.Errorf("%s after ElectionEnded", ev.Type)
	}

	p := ev.Payload
	switch ev.Type {
	case audit.ElectionCreated:
		if e.seq != 0 {
			return fmt.Errorf("repeated ElectionCreated")
		}
		if p.StartTime == nil || p.EndTime == nil {
			return fmt.Errorf("ElectionCreated without a voting window")
		}
	case audit.CandidateAdded:
		if p.CandidateID != e.candidates.next() {
			return fmt.Errorf("candidate id %d, want %d", p.CandidateID, e.candidates.next())
		}
	case audit.CandidateUpdated, audit.CandidateDeactivated:
		c, ok := e.candidates.get(p.CandidateID)
		if !ok || !c.Active {
			return fmt.Errorf("candidate %d missing or inactive", p.CandidateID)
		}
	case audit.VoteCast:
		if p.VoteID != e.votes.next() {
			return fmt.Errorf("vote id %d, want %d", p.VoteID, e.votes.next())
		}
		if _, voted := e.votes.validVoteOf(p.Voter); voted {
			return fmt.Errorf("second valid vote for %q", p.Voter)
		}
		if _, ok := e.candidates.get(p.CandidateID); !ok {
			return fmt.Errorf("vote for unknown candidate %d", p.CandidateID)
		}
	case audit.VoteInvalidated:
		v, ok := e.votes.validVoteOf(p.Voter)
		if !ok || v.ID != p.VoteID {
			return fmt.Errorf("no valid vote %d for %q", p.VoteID, p.Voter)
		}
	case audit.ElectionPaused:
		if e.paused {
			return fmt.Errorf("already paused")
		}
	case audit.ElectionUnpaused:
		if !e.paused {
			return fmt.Errorf("not paused")
		}
	case audit.VoterAuthorized, audit.VoterDeauthorized, audit.ElectionEnded:
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	if e.seq == 0 && ev.Type != audit.ElectionCreated {
		return fmt.Errorf("history starts with %s", ev.Type)
	}
	return nil
}
