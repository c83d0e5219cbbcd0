// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/election"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
)

var ErrNotEmpty = errors.New("registry already holds elections")

type Options struct {
	Clock  election.Clock
	Sink   audit.Sink
	IDs    audit.IDGenerator
	Logger *slog.Logger
}

// CreateParams are the election-level parameters of a new election.
// Descriptions and media refs are optional; when present they are parallel
// to CandidateNames.
type CreateParams struct {
	Title                 string
	StartTime             time.Time
	EndTime               time.Time
	CandidateNames        []string
	CandidateDescriptions []string
	CandidateMediaRefs    []string
}

// entry is the metadata cached at creation time.
type entry struct {
	id        uint64
	title     string
	creator   string
	start     time.Time
	end       time.Time
	createdAt time.Time
}

// Registry creates elections, assigns their ids and indexes them. Ids start
// at 1 and are never reused; election id n lives at index n-1.
type Registry struct {
	mu        sync.RWMutex
	elections []*election.Election
	entries   []entry

	deps   election.Deps
	clock  election.Clock
	logger *slog.Logger
}

func New(opts Options) *Registry {
	clock := opts.Clock
	if clock == nil {
		clock = election.SystemClock{}
	}
	logger := election.ResolveLogger(opts.Logger)
	return &Registry{
		deps: election.Deps{
			Clock:  clock,
			Sink:   opts.Sink,
			IDs:    opts.IDs,
			Logger: logger,
		},
		clock:  clock,
		logger: logger,
	}
}

func (r *Registry) validate(creator string, p CreateParams) ([]audit.SeedCandidate, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %s", election.ErrInvalidParameters, reason)
	}

	if creator == "" {
		return nil, invalid("creator identity is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, invalid("title is required")
	}
	if !p.StartTime.After(r.clock.Now()) {
		return nil, invalid("start time must be in the future")
	}
	if !p.EndTime.After(p.StartTime) {
		return nil, invalid("end time must be after start time")
	}
	if len(p.CandidateNames) < 2 {
		return nil, invalid("at least 2 candidates are required")
	}
	if p.CandidateDescriptions != nil && len(p.CandidateDescriptions) != len(p.CandidateNames) {
		return nil, invalid("candidate descriptions must match candidate names")
	}
	if p.CandidateMediaRefs != nil && len(p.CandidateMediaRefs) != len(p.CandidateNames) {
		return nil, invalid("candidate media refs must match candidate names")
	}

	seeds := make([]audit.SeedCandidate, len(p.CandidateNames))
	for i, name := range p.CandidateNames {
		if strings.TrimSpace(name) == "" {
			return nil, invalid(fmt.Sprintf("candidate %d has no name", i+1))
		}
		seeds[i].Name = name
		if p.CandidateDescriptions != nil {
			seeds[i].Description = p.CandidateDescriptions[i]
		}
		if p.CandidateMediaRefs != nil {
			seeds[i].MediaRef = p.CandidateMediaRefs[i]
		}
	}
	return seeds, nil
}

// CreateElection validates the parameters, creates an isolated election
// controlled by creator and returns its id.
func (r *Registry) CreateElection(ctx context.Context, creator string, p CreateParams) (uint64, error) {
	seeds, err := r.validate(creator, p)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uint64(len(r.elections)) + 1
	e, err := election.Create(ctx, id, creator, election.Params{
		Title:      p.Title,
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		Candidates: seeds,
	}, r.deps)
	if err != nil {
		return 0, err
	}

	meta := e.Metadata()
	r.elections = append(r.elections, e)
	r.entries = append(r.entries, entryFrom(meta))

	now := r.clock.Now()
	r.logger.Info("election created",
		"election_id", id,
		"creator", creator,
		"title", p.Title,
		"candidates", len(seeds),
		"opens", humanize.RelTime(meta.StartTime, now, "ago", "from now"),
		"runs", strings.TrimSpace(humanize.RelTime(meta.StartTime, meta.EndTime, "", "")),
	)
	return id, nil
}

func entryFrom(meta models.Election) entry {
	return entry{
		id:        meta.ID,
		title:     meta.Title,
		creator:   meta.Creator,
		start:     meta.StartTime,
		end:       meta.EndTime,
		createdAt: meta.CreatedAt,
	}
}

// Election returns the election with the given id.
func (r *Registry) Election(id uint64) (*election.Election, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || id > uint64(len(r.elections)) {
		return nil, fmt.Errorf("election %d: %w", id, election.ErrNotFound)
	}
	return r.elections[id-1], nil
}

func (r *Registry) ElectionCount() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.elections))
}

// scan yields the ids of entries matching keep in creation order. Each
// iteration scans the index again, and elections created while iterating
// are not visited. The lock is not held while yielding.
func (r *Registry) scan(keep func(entry) bool) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		r.mu.RLock()
		n := len(r.entries)
		r.mu.RUnlock()

		for i := 0; i < n; i++ {
			r.mu.RLock()
			en := r.entries[i]
			r.mu.RUnlock()
			if keep(en) && !yield(en.id) {
				return
			}
		}
	}
}

// ElectionsByCreator yields the ids of elections created by creator.
func (r *Registry) ElectionsByCreator(creator string) iter.Seq[uint64] {
	return r.scan(func(en entry) bool { return en.creator == creator })
}

// Elections yields every election id in creation order.
func (r *Registry) Elections() iter.Seq[uint64] {
	return r.scan(func(entry) bool { return true })
}

// AggregateStats merges the cached creation metadata with a live read of
// the election.
func (r *Registry) AggregateStats(id uint64) (models.AggregateStats, error) {
	r.mu.RLock()
	if id == 0 || id > uint64(len(r.entries)) {
		r.mu.RUnlock()
		return models.AggregateStats{}, fmt.Errorf("election %d: %w", id, election.ErrNotFound)
	}
	en := r.entries[id-1]
	e := r.elections[id-1]
	r.mu.RUnlock()

	live := e.Metadata()
	return models.AggregateStats{
		ElectionID:     en.id,
		Title:          en.title,
		Creator:        en.creator,
		StartTime:      en.start,
		EndTime:        en.end,
		CreatedAt:      en.createdAt,
		TotalVotes:     live.TotalVotes,
		CandidateCount: live.CandidateCount,
		IsActive:       live.IsActive,
		State:          live.State,
	}, nil
}

// Restore rebuilds the registry from a stored history without recording
// any new events. The registry must be empty. Election ids in the history
// must be 1..n.
func (r *Registry) Restore(ctx context.Context, events []audit.Event) error {
	if err := audit.Verify(events); err != nil {
		return err
	}

	byElection := make(map[uint64][]audit.Event)
	for _, ev := range events {
		byElection[ev.ElectionID] = append(byElection[ev.ElectionID], ev)
	}
	ids := make([]uint64, 0, len(byElection))
	for id := range byElection {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	elections := make([]*election.Election, 0, len(ids))
	entries := make([]entry, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if id != uint64(i)+1 {
			return fmt.Errorf("%w: election ids are not contiguous at %d", audit.ErrChainBroken, id)
		}
		e, err := election.Replay(byElection[id], r.deps)
		if err != nil {
			return err
		}
		elections = append(elections, e)
		entries = append(entries, entryFrom(e.Metadata()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.elections) > 0 {
		return ErrNotEmpty
	}
	r.elections = elections
	r.entries = entries

	r.logger.Info("registry restored",
		"elections", len(elections),
		"events", humanize.Comma(int64(len(events))),
	)
	return nil
}
