// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrOutOfOrder = errors.New("event out of order")

// Log is an in-memory Sink. It keeps every appended event, indexes them by
// election and fans them out to subscribers without blocking the writer.
type Log struct {
	mu          sync.RWMutex
	events      []Event
	byElection  map[uint64][]int
	subscribers map[int]chan Event
	nextSub     int
	logger      *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		byElection:  make(map[uint64][]int),
		subscribers: make(map[int]chan Event),
		logger:      logger,
	}
}

// Append stores a copy of the event. Events of one election must arrive
// with contiguous sequence numbers. Later changes to the caller's event do
// not reach the log or its subscribers.
func (l *Log) Append(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.byElection[event.ElectionID]
	want := uint64(len(idx)) + 1
	if event.Sequence != want {
		return fmt.Errorf("%w: election %d got sequence %d, want %d", ErrOutOfOrder, event.ElectionID, event.Sequence, want)
	}

	stored := event.Clone()
	l.byElection[event.ElectionID] = append(idx, len(l.events))
	l.events = append(l.events, stored)

	for id, ch := range l.subscribers {
		select {
		case ch <- stored.Clone():
		default:
			l.logger.Warn("audit subscriber is full, dropping event",
				"subscriber", id,
				"election_id", event.ElectionID,
				"sequence", event.Sequence,
			)
		}
	}
	return nil
}

// Events returns a copy of every stored event in append order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Clone()
	}
	return out
}

// ElectionEvents returns the history of one election in sequence order.
func (l *Log) ElectionEvents(ctx context.Context, electionID uint64) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.byElection[electionID]
	out := make([]Event, 0, len(idx))
	for _, i := range idx {
		out = append(out, l.events[i].Clone())
	}
	return out, nil
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Subscribe returns a channel that receives events appended after the call.
// A subscriber that falls more than buffer events behind misses events.
// The channel is closed once ctx is done.
func (l *Log) Subscribe(ctx context.Context, buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subscribers[id] = ch
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subscribers, id)
		close(ch)
		l.mu.Unlock()
	}()
	return ch
}
