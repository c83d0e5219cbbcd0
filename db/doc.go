// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db persists election histories.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, no cgo) or "postgres"
(github.com/lib/pq) and pings the database before returning:

	conn, err := db.Open("sqlite", "file:elections.db")
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes. The SQL is limited to what both databases accept.

# Tables

  - audit_event: the append-only history, one row per event with the full
    event JSON in body. (election_id, sequence) is unique.
  - election: projected metadata, flags and totals per election
  - candidate: projected candidates with vote and weighted tallies
  - voter_authorization: projected authorization ledger
  - vote: projected vote ledger; a partial unique index allows one valid
    vote per voter and election

# Relationships

	election 1──* candidate
	election 1──* voter_authorization
	election 1──* vote
	election 1──* audit_event

Nothing is ever deleted.

# Store

Store implements audit.Sink. Append writes the event row and updates the
projections in a single transaction, so the projections always describe
exactly the recorded history. A second event for the same election and
sequence fails with ErrDuplicateEvent.

LoadEvents feeds registry.Restore at startup. ListUnpublished and
MarkPublished form the outbox read by the relay package; published_at is
set only after the event has been delivered.
*/
package db
