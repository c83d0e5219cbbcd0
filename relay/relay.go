// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/election"
)

const defaultBatchSize = 100

// Outbox is the store side of the relay.
type Outbox interface {
	ListUnpublished(ctx context.Context, limit int) ([]audit.Event, error)
	MarkPublished(ctx context.Context, eventID string, at time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Relay moves recorded events from the outbox to a publisher. An event is
// marked published only after the publisher accepted it, so delivery is at
// least once.
type Relay struct {
	Outbox    Outbox
	Publisher Publisher
	BatchSize int
	Clock     election.Clock
	Logger    *slog.Logger
}

// RunOnce publishes one batch in order and returns how many events were
// delivered. It stops at the first failure so later events of an election
// never overtake earlier ones.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	if r.Outbox == nil || r.Publisher == nil {
		return 0, errors.New("relay needs an outbox and a publisher")
	}
	logger := election.ResolveLogger(r.Logger)
	clock := r.Clock
	if clock == nil {
		clock = election.SystemClock{}
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}

	events, err := r.Outbox.ListUnpublished(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unpublished: %w", err)
	}

	published := 0
	for _, ev := range events {
		if err := r.Publisher.Publish(ctx, ev); err != nil {
			logger.Warn("event publish failed",
				"module", "relay",
				"event_id", ev.ID,
				"election_id", ev.ElectionID,
				"sequence", ev.Sequence,
				"error", err,
			)
			return published, fmt.Errorf("publish %s: %w", ev.ID, err)
		}
		if err := r.Outbox.MarkPublished(ctx, ev.ID, clock.Now()); err != nil {
			return published, fmt.Errorf("mark published %s: %w", ev.ID, err)
		}
		published++
	}

	if published > 0 {
		logger.Debug("relayed events",
			"module", "relay",
			"count", humanize.Comma(int64(published)),
		)
	}
	return published, nil
}

// Run calls RunOnce every interval until ctx is done. Failures are logged
// and retried on the next tick.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	logger := election.ResolveLogger(r.Logger)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Error("relay pass failed", "module", "relay", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LogPublisher appends events to an in-process audit.Log so local
// subscribers see them.
type LogPublisher struct {
	Log *audit.Log
}

func (p LogPublisher) Publish(ctx context.Context, event audit.Event) error {
	err := p.Log.Append(ctx, event)
	// Redelivery of an event the log already holds is not an error.
	if errors.Is(err, audit.ErrOutOfOrder) {
		held, lerr := p.Log.ElectionEvents(ctx, event.ElectionID)
		if lerr == nil && event.Sequence <= uint64(len(held)) && held[event.Sequence-1].Hash == event.Hash {
			return nil
		}
	}
	return err
}
