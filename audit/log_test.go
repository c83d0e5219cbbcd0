// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogIndexesByElection(t *testing.T) {
	ctx := context.Background()
	log := NewLog(nil)
	a := buildChain(t, 1, 3)
	b := buildChain(t, 2, 2)

	for _, ev := range []Event{a[0], b[0], a[1], b[1], a[2]} {
		require.NoError(t, log.Append(ctx, ev))
	}

	assert.Equal(t, 5, log.Len())

	got, err := log.ElectionEvents(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	got, err = log.ElectionEvents(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	got, err = log.ElectionEvents(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, Verify(log.Events()))
}

func TestLogRejectsOutOfOrder(t *testing.T) {
	ctx := context.Background()
	log := NewLog(nil)
	events := buildChain(t, 1, 3)

	require.NoError(t, log.Append(ctx, events[0]))
	err := log.Append(ctx, events[2])
	assert.True(t, errors.Is(err, ErrOutOfOrder))

	err = log.Append(ctx, events[0])
	assert.True(t, errors.Is(err, ErrOutOfOrder))
	assert.Equal(t, 1, log.Len())
}

func TestLogRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	log := NewLog(nil)
	assert.Error(t, log.Append(ctx, buildChain(t, 1, 1)[0]))
	assert.Equal(t, 0, log.Len())
}

func TestLogSubscribe(t *testing.T) {
	log := NewLog(nil)
	ctx, cancel := context.WithCancel(context.Background())
	sub := log.Subscribe(ctx, 4)

	events := buildChain(t, 1, 2)
	for _, ev := range events {
		require.NoError(t, log.Append(context.Background(), ev))
	}

	for _, want := range events {
		select {
		case got := <-sub:
			assert.Equal(t, want.Hash, got.Hash)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	cancel()
	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
}

func TestLogSlowSubscriberDoesNotBlock(t *testing.T) {
	log := NewLog(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := log.Subscribe(ctx, 1)

	for _, ev := range buildChain(t, 1, 5) {
		require.NoError(t, log.Append(context.Background(), ev))
	}

	assert.Equal(t, 5, log.Len())
	assert.Len(t, sub, 1)
}

func TestLogKeepsItsOwnCopy(t *testing.T) {
	ctx := context.Background()
	log := NewLog(nil)
	sub := log.Subscribe(ctx, 4)

	events := buildChain(t, 1, 1)
	results := models.Results{CandidateIDs: []uint64{1, 2}, VoteCounts: []uint64{3, 0}, TotalVotes: 3}
	ended, err := Seal(Event{
		ID:         UUIDGenerator{}.NewID(),
		Type:       ElectionEnded,
		ElectionID: 1,
		Sequence:   2,
		Actor:      "alice",
		OccurredAt: events[0].OccurredAt.Add(3 * time.Hour),
		Payload:    Payload{Results: &results},
		PrevHash:   events[0].Hash,
	})
	require.NoError(t, err)
	events = append(events, ended)

	for _, ev := range events {
		require.NoError(t, log.Append(ctx, ev))
	}

	// The producer keeps writing to memory it still holds
	results.HeadHash = ended.Hash.String()
	results.VoteCounts[0] = 99
	events[0].Payload.Candidates[0].Name = "Z"
	*events[0].Payload.StartTime = time.Time{}

	stored, err := log.ElectionEvents(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, Verify(stored))
	assert.Equal(t, "A", stored[0].Payload.Candidates[0].Name)
	assert.Empty(t, stored[1].Payload.Results.HeadHash)

	// Readers and subscribers can't reach the stored copy either
	stored[1].Payload.Results.VoteCounts[0] = 42
	got := <-sub
	got.Payload.Candidates[0].Name = "Y"
	assert.NoError(t, Verify(log.Events()))
}
