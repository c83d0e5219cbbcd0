// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the election registry server.

The server hosts many independent elections. Each one has a controlling
identity, a candidate roster, voter authorizations and a vote ledger, and
records every change as a hash-chained audit event.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=elections.db IDENTITY_SALT=... go run .

Or with flags:

	go run . -p 3318 -d elections.db -t sqlite --identity-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - IDENTITY_SALT (--identity-salt): Secret shared with the authentication layer

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - NATS_URL (--nats-url): Publish audit events to NATS
  - CONFIG_FILE (-c): YAML config file

# Startup

On start the server replays the stored audit trail to rebuild every
election, then relays unpublished events to NATS (or an in-process log)
in the background.

# Architecture

  - election: Per-election state machine
  - registry: Election arena and creator index
  - audit: Event types, hash chain and in-memory log
  - db: Event store with SQL projections
  - relay: Outbox relay to NATS
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, caller identity, JSON helpers
  - models: Request/response and domain types
  - auth: Identity signatures and ID generation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
