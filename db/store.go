// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/election"
)

// Store persists audit events and keeps the per-election projection tables
// in step with them. It implements audit.Sink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: election.ResolveLogger(logger)}
}

// Append records the event and updates the projections in one transaction.
func (s *Store) Append(ctx context.Context, ev audit.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_event (event_id, election_id, sequence, event_type, actor, occurred_at, hash, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ev.ID, ev.ElectionID, ev.Sequence, string(ev.Type), ev.Actor, ev.OccurredAt, ev.Hash.String(), string(body))
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("election %d sequence %d: %w", ev.ElectionID, ev.Sequence, ErrDuplicateEvent)
		}
		return fmt.Errorf("insert event: %w", err)
	}

	if err := project(ctx, tx, ev); err != nil {
		return fmt.Errorf("project %s: %w", ev.Type, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("event stored",
		"election_id", ev.ElectionID,
		"sequence", ev.Sequence,
		"event_type", ev.Type,
	)
	return nil
}

// project applies the event to the projection tables.
func project(ctx context.Context, tx *sql.Tx, ev audit.Event) error {
	p := ev.Payload
	var err error

	switch ev.Type {
	case audit.ElectionCreated:
		if p.StartTime == nil || p.EndTime == nil {
			return errors.New("missing voting window")
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO election (id, title, creator, start_time, end_time, candidate_count, head_hash, last_sequence, created_at, last_modified)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		`, ev.ElectionID, p.Title, ev.Actor, p.StartTime.UTC(), p.EndTime.UTC(), len(p.Candidates), ev.Hash.String(), ev.Sequence, ev.OccurredAt)
		if err != nil {
			return err
		}
		for i, seed := range p.Candidates {
			if err := insertCandidate(ctx, tx, ev, uint64(i)+1, seed.Name, seed.Description, seed.MediaRef); err != nil {
				return err
			}
		}
		return nil

	case audit.CandidateAdded:
		if err = insertCandidate(ctx, tx, ev, p.CandidateID, p.Name, p.Description, p.MediaRef); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE election SET candidate_count = candidate_count + 1 WHERE id = $1
		`, ev.ElectionID)

	case audit.CandidateUpdated:
		_, err = tx.ExecContext(ctx, `
			UPDATE candidate SET name = $1, description = $2, media_ref = $3
			WHERE election_id = $4 AND id = $5
		`, p.Name, p.Description, p.MediaRef, ev.ElectionID, p.CandidateID)

	case audit.CandidateDeactivated:
		_, err = tx.ExecContext(ctx, `
			UPDATE candidate SET active = FALSE WHERE election_id = $1 AND id = $2
		`, ev.ElectionID, p.CandidateID)

	case audit.VoterAuthorized, audit.VoterDeauthorized:
		authorized := ev.Type == audit.VoterAuthorized
		weight := p.Weight
		if !authorized {
			weight = 0
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO voter_authorization (election_id, voter, authorized, weight, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (election_id, voter) DO UPDATE
			SET authorized = EXCLUDED.authorized, weight = EXCLUDED.weight, updated_at = EXCLUDED.updated_at
		`, ev.ElectionID, p.Voter, authorized, weight, ev.OccurredAt)

	case audit.VoteCast:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (election_id, id, voter, candidate_id, weight, cast_at, metadata_ref, valid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		`, ev.ElectionID, p.VoteID, p.Voter, p.CandidateID, p.Weight, ev.OccurredAt, p.MetadataRef)
		if err != nil {
			return err
		}
		err = adjustTally(ctx, tx, ev.ElectionID, p.CandidateID, 1, int64(p.Weight))

	case audit.VoteInvalidated:
		_, err = tx.ExecContext(ctx, `
			UPDATE vote SET valid = FALSE WHERE election_id = $1 AND id = $2
		`, ev.ElectionID, p.VoteID)
		if err != nil {
			return err
		}
		err = adjustTally(ctx, tx, ev.ElectionID, p.CandidateID, -1, -int64(p.Weight))

	case audit.ElectionPaused, audit.ElectionUnpaused:
		_, err = tx.ExecContext(ctx, `
			UPDATE election SET is_paused = $1 WHERE id = $2
		`, ev.Type == audit.ElectionPaused, ev.ElectionID)

	case audit.ElectionEnded:
		_, err = tx.ExecContext(ctx, `
			UPDATE election SET is_ended = TRUE WHERE id = $1
		`, ev.ElectionID)

	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE election SET head_hash = $1, last_sequence = $2, last_modified = $3 WHERE id = $4
	`, ev.Hash.String(), ev.Sequence, ev.OccurredAt, ev.ElectionID)
	return err
}

func insertCandidate(ctx context.Context, tx *sql.Tx, ev audit.Event, id uint64, name, description, mediaRef string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO candidate (election_id, id, name, description, media_ref, active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
	`, ev.ElectionID, id, name, description, mediaRef, ev.OccurredAt)
	return err
}

func adjustTally(ctx context.Context, tx *sql.Tx, electionID, candidateID uint64, votes, weight int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE candidate SET vote_count = vote_count + $1, weighted_votes = weighted_votes + $2
		WHERE election_id = $3 AND id = $4
	`, votes, weight, electionID, candidateID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE election SET total_votes = total_votes + $1 WHERE id = $2
	`, votes, electionID)
	return err
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var ev audit.Event
		if err := json.Unmarshal([]byte(body), &ev); err != nil {
			return nil, fmt.Errorf("decoding stored event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LoadEvents returns the whole history ordered by election and sequence.
func (s *Store) LoadEvents(ctx context.Context) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM audit_event ORDER BY election_id, sequence
	`)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return scanEvents(rows)
}

// ElectionEvents returns one election's history in sequence order.
func (s *Store) ElectionEvents(ctx context.Context, electionID uint64) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM audit_event WHERE election_id = $1 ORDER BY sequence
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("load election events: %w", err)
	}
	return scanEvents(rows)
}

// ListUnpublished returns up to limit events the relay has not published,
// in sequence order per election.
func (s *Store) ListUnpublished(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM audit_event
		WHERE published_at IS NULL
		ORDER BY election_id, sequence
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished events: %w", err)
	}
	return scanEvents(rows)
}

// MarkPublished stamps the event as published. Marking an already
// published event again is a no-op.
func (s *Store) MarkPublished(ctx context.Context, eventID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE audit_event SET published_at = $1 WHERE event_id = $2 AND published_at IS NULL
	`, at.UTC(), eventID)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM audit_event WHERE event_id = $1`, eventID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", eventID, ErrEventNotFound)
	}
	return err
}

// ElectionRow is the projected state of one election.
type ElectionRow struct {
	ID             uint64
	Title          string
	Creator        string
	Ended          bool
	Paused         bool
	CandidateCount uint64
	TotalVotes     uint64
	HeadHash       string
	LastSequence   uint64
}

func (s *Store) GetElectionRow(ctx context.Context, id uint64) (ElectionRow, error) {
	var row ElectionRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, creator, is_ended, is_paused, candidate_count, total_votes, head_hash, last_sequence
		FROM election WHERE id = $1
	`, id).Scan(&row.ID, &row.Title, &row.Creator, &row.Ended, &row.Paused,
		&row.CandidateCount, &row.TotalVotes, &row.HeadHash, &row.LastSequence)
	if errors.Is(err, sql.ErrNoRows) {
		return ElectionRow{}, fmt.Errorf("election %d: %w", id, election.ErrNotFound)
	}
	if err != nil {
		return ElectionRow{}, fmt.Errorf("get election row: %w", err)
	}
	return row, nil
}

func (s *Store) CountValidVotes(ctx context.Context, electionID uint64) (uint64, error) {
	var n uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE election_id = $1 AND valid
	`, electionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count valid votes: %w", err)
	}
	return n, nil
}

// CandidateVoteCounts returns projected vote counts in candidate id order.
func (s *Store) CandidateVoteCounts(ctx context.Context, electionID uint64) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vote_count FROM candidate WHERE election_id = $1 ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("candidate vote counts: %w", err)
	}
	defer rows.Close()

	var counts []uint64
	for rows.Next() {
		var n uint64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		counts = append(counts, n)
	}
	return counts, rows.Err()
}
