// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/election"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/testutil"
)

func newRegistry(t *testing.T) (*registry.Registry, *testutil.FakeClock, *audit.Log) {
	t.Helper()
	clock := testutil.NewFakeClock()
	log := audit.NewLog(nil)
	reg := registry.New(registry.Options{Clock: clock, Sink: log})
	return reg, clock, log
}

func validParams(clock *testutil.FakeClock, names ...string) registry.CreateParams {
	if len(names) == 0 {
		names = []string{"A", "B"}
	}
	return registry.CreateParams{
		Title:          "Budget vote",
		StartTime:      clock.Now().Add(time.Hour),
		EndTime:        clock.Now().Add(25 * time.Hour),
		CandidateNames: names,
	}
}

func TestCreateElectionValidation(t *testing.T) {
	reg, clock, log := newRegistry(t)
	now := clock.Now()

	tests := []struct {
		name    string
		creator string
		mutate  func(*registry.CreateParams)
	}{
		{"single candidate", "alice", func(p *registry.CreateParams) { p.CandidateNames = []string{"A"} }},
		{"start in the past", "alice", func(p *registry.CreateParams) { p.StartTime = now.Add(-time.Minute) }},
		{"start equals now", "alice", func(p *registry.CreateParams) { p.StartTime = now }},
		{"end before start", "alice", func(p *registry.CreateParams) { p.EndTime = p.StartTime.Add(-time.Second) }},
		{"end equals start", "alice", func(p *registry.CreateParams) { p.EndTime = p.StartTime }},
		{"empty title", "alice", func(p *registry.CreateParams) { p.Title = "   " }},
		{"empty candidate name", "alice", func(p *registry.CreateParams) { p.CandidateNames = []string{"A", ""} }},
		{"short descriptions", "alice", func(p *registry.CreateParams) { p.CandidateDescriptions = []string{"only one"} }},
		{"long media refs", "alice", func(p *registry.CreateParams) { p.CandidateMediaRefs = []string{"a", "b", "c"} }},
		{"anonymous creator", "", func(p *registry.CreateParams) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams(clock)
			tt.mutate(&p)
			_, err := reg.CreateElection(context.Background(), tt.creator, p)
			assert.ErrorIs(t, err, election.ErrInvalidParameters)
		})
	}

	assert.Equal(t, uint64(0), reg.ElectionCount())
	assert.Equal(t, 0, log.Len())
}

func TestCreateElection(t *testing.T) {
	reg, clock, log := newRegistry(t)
	ctx := context.Background()

	p := validParams(clock, "A", "B", "C")
	p.CandidateDescriptions = []string{"first", "second", "third"}
	p.CandidateMediaRefs = []string{"ipfs://a", "", "ipfs://c"}

	id, err := reg.CreateElection(ctx, "alice", p)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	e, err := reg.Election(id)
	require.NoError(t, err)
	meta := e.Metadata()
	assert.Equal(t, "Budget vote", meta.Title)
	assert.Equal(t, "alice", meta.Creator)
	assert.Equal(t, uint64(3), meta.CandidateCount)
	assert.Equal(t, models.StateScheduled, meta.State)

	c, err := e.Candidate(3)
	require.NoError(t, err)
	assert.Equal(t, "third", c.Description)
	assert.Equal(t, "ipfs://c", c.MediaRef)

	events := log.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ElectionCreated, events[0].Type)
	assert.Equal(t, "alice", events[0].Actor)
	assert.Equal(t, id, events[0].ElectionID)
	assert.Equal(t, "Budget vote", events[0].Payload.Title)
}

func TestElectionNotFound(t *testing.T) {
	reg, _, _ := newRegistry(t)
	_, err := reg.Election(0)
	assert.ErrorIs(t, err, election.ErrNotFound)
	_, err = reg.Election(1)
	assert.ErrorIs(t, err, election.ErrNotFound)
	_, err = reg.AggregateStats(1)
	assert.ErrorIs(t, err, election.ErrNotFound)
}

func TestElectionsAreIsolated(t *testing.T) {
	reg, clock, _ := newRegistry(t)
	ctx := context.Background()

	a, err := reg.CreateElection(ctx, "alice", validParams(clock))
	require.NoError(t, err)
	b, err := reg.CreateElection(ctx, "bob", validParams(clock))
	require.NoError(t, err)
	assert.Equal(t, a+1, b)

	clock.Advance(2 * time.Hour)
	ea, _ := reg.Election(a)
	eb, _ := reg.Election(b)

	_, err = ea.Vote(ctx, "x", 1, "")
	require.NoError(t, err)
	assert.True(t, ea.HasVoted("x"))
	assert.False(t, eb.HasVoted("x"))

	_, err = eb.AddCandidate(ctx, "alice", "C", "", "")
	assert.ErrorIs(t, err, election.ErrNotOwner)
}

func TestElectionsByCreator(t *testing.T) {
	reg, clock, _ := newRegistry(t)
	ctx := context.Background()

	creators := []string{"alice", "bob", "alice", "carol", "alice"}
	for _, c := range creators {
		_, err := reg.CreateElection(ctx, c, validParams(clock))
		require.NoError(t, err)
	}

	seq := reg.ElectionsByCreator("alice")
	assert.Equal(t, []uint64{1, 3, 5}, slices.Collect(seq))
	// Restartable.
	assert.Equal(t, []uint64{1, 3, 5}, slices.Collect(seq))

	// Lazy: stopping early works.
	var first uint64
	for id := range seq {
		first = id
		break
	}
	assert.Equal(t, uint64(1), first)

	assert.Empty(t, slices.Collect(reg.ElectionsByCreator("nobody")))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, slices.Collect(reg.Elections()))
	assert.Equal(t, uint64(5), reg.ElectionCount())
}

func TestElectionsByCreatorDuringCreation(t *testing.T) {
	reg, clock, _ := newRegistry(t)
	ctx := context.Background()
	_, err := reg.CreateElection(ctx, "alice", validParams(clock))
	require.NoError(t, err)

	// The consumer may call back into the registry while iterating.
	var seen []uint64
	for id := range reg.ElectionsByCreator("alice") {
		seen = append(seen, id)
		_, err := reg.CreateElection(ctx, "alice", validParams(clock))
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{1}, seen)
	assert.Equal(t, uint64(2), reg.ElectionCount())
}

func TestAggregateStatsIsLive(t *testing.T) {
	reg, clock, _ := newRegistry(t)
	ctx := context.Background()
	id, err := reg.CreateElection(ctx, "alice", validParams(clock))
	require.NoError(t, err)

	stats, err := reg.AggregateStats(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.TotalVotes)
	assert.False(t, stats.IsActive)

	clock.Advance(2 * time.Hour)
	e, _ := reg.Election(id)
	_, err = e.Vote(ctx, "x", 2, "")
	require.NoError(t, err)

	stats, err = reg.AggregateStats(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalVotes)
	assert.True(t, stats.IsActive)
	assert.Equal(t, "alice", stats.Creator)
	assert.Equal(t, "Budget vote", stats.Title)
	assert.Equal(t, models.StateActive, stats.State)
}

func TestSinkFailureDoesNotAllocateID(t *testing.T) {
	clock := testutil.NewFakeClock()
	fail := true
	sink := audit.SinkFunc(func(context.Context, audit.Event) error {
		if fail {
			return errors.New("storage unavailable")
		}
		return nil
	})
	reg := registry.New(registry.Options{Clock: clock, Sink: sink})

	_, err := reg.CreateElection(context.Background(), "alice", validParams(clock))
	require.Error(t, err)
	assert.Equal(t, uint64(0), reg.ElectionCount())

	fail = false
	id, err := reg.CreateElection(context.Background(), "alice", validParams(clock))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestRestoreRebuildsState(t *testing.T) {
	reg, clock, log := newRegistry(t)
	ctx := context.Background()

	a, err := reg.CreateElection(ctx, "alice", validParams(clock))
	require.NoError(t, err)
	b, err := reg.CreateElection(ctx, "bob", validParams(clock, "X", "Y", "Z"))
	require.NoError(t, err)

	ea, _ := reg.Election(a)
	eb, _ := reg.Election(b)
	require.NoError(t, eb.AuthorizeVoter(ctx, "bob", "v1", 2))
	clock.Advance(2 * time.Hour)
	_, err = ea.Vote(ctx, "v1", 1, "")
	require.NoError(t, err)
	_, err = eb.Vote(ctx, "v1", 3, "")
	require.NoError(t, err)
	_, err = ea.Vote(ctx, "v2", 2, "")
	require.NoError(t, err)
	require.NoError(t, ea.InvalidateVote(ctx, "v2", "v2"))
	_, err = ea.TogglePause(ctx, "alice")
	require.NoError(t, err)

	restored := registry.New(registry.Options{Clock: clock})
	require.NoError(t, restored.Restore(ctx, log.Events()))
	assert.Equal(t, reg.ElectionCount(), restored.ElectionCount())

	for _, id := range []uint64{a, b} {
		orig, _ := reg.Election(id)
		got, err := restored.Election(id)
		require.NoError(t, err)
		assert.Equal(t, orig.Metadata(), got.Metadata())
		assert.Equal(t, orig.Results(), got.Results())
		assert.Equal(t, orig.WeightedResults(), got.WeightedResults())
	}
	assert.Equal(t, []uint64{b}, slices.Collect(restored.ElectionsByCreator("bob")))

	// A restored election keeps working and extends the same chain.
	got, _ := restored.Election(b)
	head, seq := got.HeadHash()
	rec, err := got.VoterAuthorization("v1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rec.Weight)
	assert.NotEqual(t, audit.Hash{}, head)
	assert.Equal(t, uint64(3), seq)

	assert.ErrorIs(t, restored.Restore(ctx, log.Events()), registry.ErrNotEmpty)
}

func TestRestoreRejectsBrokenHistory(t *testing.T) {
	reg, clock, log := newRegistry(t)
	ctx := context.Background()
	_, err := reg.CreateElection(ctx, "alice", validParams(clock))
	require.NoError(t, err)
	_, err = reg.CreateElection(ctx, "alice", validParams(clock))
	require.NoError(t, err)

	events := log.Events()
	tampered := slices.Clone(events)
	tampered[0].Payload.Title = "Forged"
	err = registry.New(registry.Options{}).Restore(ctx, tampered)
	assert.ErrorIs(t, err, audit.ErrChainBroken)

	// Dropping election 1 leaves a gap in the id space.
	err = registry.New(registry.Options{}).Restore(ctx, events[1:])
	assert.ErrorIs(t, err, audit.ErrChainBroken)
}

func TestConcurrentCreateElection(t *testing.T) {
	reg, clock, log := newRegistry(t)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := reg.CreateElection(ctx, fmt.Sprintf("creator-%d", i%4), validParams(clock))
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	slices.Sort(ids)
	for i, id := range ids {
		assert.Equal(t, uint64(i+1), id)
	}
	assert.Equal(t, n, log.Len())
	assert.Len(t, slices.Collect(reg.ElectionsByCreator("creator-0")), n/4)
}
