// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
)

type NATSConfig struct {
	URL           string
	Name          string
	SubjectPrefix string
	ReconnectWait time.Duration
	MaxReconnects int
	Timeout       time.Duration
}

// NATSPublisher publishes each event as JSON on
// <prefix>.<election_id>.<event_type>.
type NATSPublisher struct {
	conn    *nats.Conn
	prefix  string
	timeout time.Duration
}

func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.Name == "" {
		cfg.Name = "election-relay"
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "elections"
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: cfg.SubjectPrefix, timeout: cfg.Timeout}, nil
}

// Subject returns the subject an event is published on.
func Subject(prefix string, event audit.Event) string {
	return fmt.Sprintf("%s.%d.%s", prefix, event.ElectionID, event.Type)
}

func (p *NATSPublisher) Publish(ctx context.Context, event audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(Subject(p.prefix, event), data); err != nil {
		return err
	}
	// Publish only buffers; flush so the outbox is marked after the server
	// has the message.
	return p.conn.FlushTimeout(p.timeout)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
