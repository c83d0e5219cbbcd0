// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to the SQL both SQLite and PostgreSQL accept.
const schema = `
-- Elections (projection)
CREATE TABLE IF NOT EXISTS election (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    creator TEXT NOT NULL,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,
    is_ended BOOLEAN NOT NULL DEFAULT FALSE,
    is_paused BOOLEAN NOT NULL DEFAULT FALSE,
    candidate_count BIGINT NOT NULL DEFAULT 0,
    total_votes BIGINT NOT NULL DEFAULT 0,
    head_hash TEXT NOT NULL,
    last_sequence BIGINT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    last_modified TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_election_creator ON election(creator);

-- Candidates (projection)
CREATE TABLE IF NOT EXISTS candidate (
    election_id BIGINT NOT NULL REFERENCES election(id),
    id BIGINT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    media_ref TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    vote_count BIGINT NOT NULL DEFAULT 0,
    weighted_votes BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (election_id, id)
);

-- Voter authorizations (projection)
CREATE TABLE IF NOT EXISTS voter_authorization (
    election_id BIGINT NOT NULL REFERENCES election(id),
    voter TEXT NOT NULL,
    authorized BOOLEAN NOT NULL,
    weight BIGINT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (election_id, voter)
);

-- Votes (projection)
CREATE TABLE IF NOT EXISTS vote (
    election_id BIGINT NOT NULL REFERENCES election(id),
    id BIGINT NOT NULL,
    voter TEXT NOT NULL,
    candidate_id BIGINT NOT NULL,
    weight BIGINT NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    metadata_ref TEXT NOT NULL DEFAULT '',
    valid BOOLEAN NOT NULL DEFAULT TRUE,
    PRIMARY KEY (election_id, id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_vote_one_valid ON vote(election_id, voter) WHERE valid;

-- Audit events (system of record)
CREATE TABLE IF NOT EXISTS audit_event (
    event_id TEXT PRIMARY KEY,
    election_id BIGINT NOT NULL,
    sequence BIGINT NOT NULL,
    event_type TEXT NOT NULL,
    actor TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    hash TEXT NOT NULL,
    body TEXT NOT NULL,
    published_at TIMESTAMP,
    UNIQUE (election_id, sequence)
);

CREATE INDEX IF NOT EXISTS idx_audit_event_unpublished ON audit_event(published_at);
`
