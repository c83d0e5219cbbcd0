// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"

	"github.com/google/uuid"
)

// Sink receives sealed events before the operation that produced them is
// applied. An error from Append rejects the operation.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Append(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Discard accepts and drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) error { return nil })

type tee []Sink

// Tee appends to each sink in order and stops at the first failure.
// Sinks before the failing one keep the event, so put the system of record
// first.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

func (t tee) Append(ctx context.Context, event Event) error {
	for _, sink := range t {
		if err := sink.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// IDGenerator assigns event ids.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
