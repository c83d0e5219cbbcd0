// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"
)

var ErrChainBroken = errors.New("audit chain broken")

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// eventDomainKey separates audit event hashes from any other BLAKE3 use.
// Changing it invalidates every stored history.
var eventDomainKey = [32]byte{
	'q', 'u', 'i', 'c', 'k', 'l', 'y', '-', 'p', 'i', 'c', 'k', '.', 'a', 'u', 'd',
	'i', 't', '.', 'e', 'v', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0,
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parsing event hash: %w", err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("event hash is %d bytes, want %d", len(decoded), len(h))
	}
	copy(h[:], decoded)
	return h, nil
}

// canonicalEvent is the hashed portion of an event. The event id is a
// transport identifier and is not covered.
type canonicalEvent struct {
	Type       Type      `json:"event_type"`
	ElectionID uint64    `json:"election_id"`
	Sequence   uint64    `json:"sequence"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Payload   `json:"payload"`
}

// ComputeHash returns the chained hash of the event: a keyed BLAKE3 digest
// over PrevHash followed by the canonical JSON encoding of the event body.
func ComputeHash(ev Event) (Hash, error) {
	body, err := json.Marshal(canonicalEvent{
		Type:       ev.Type,
		ElectionID: ev.ElectionID,
		Sequence:   ev.Sequence,
		Actor:      ev.Actor,
		OccurredAt: ev.OccurredAt.UTC(),
		Payload:    ev.Payload,
	})
	if err != nil {
		return Hash{}, fmt.Errorf("encoding event for hashing: %w", err)
	}

	// NewKeyed only fails on a key of the wrong length.
	hasher, err := blake3.NewKeyed(eventDomainKey[:])
	if err != nil {
		panic("audit: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(ev.PrevHash[:])
	hasher.Write(body)

	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}

// Seal fills in the event's Hash.
func Seal(ev Event) (Event, error) {
	h, err := ComputeHash(ev)
	if err != nil {
		return Event{}, err
	}
	ev.Hash = h
	return ev, nil
}

// Verify checks that every election's events start at sequence 1 with a
// zero PrevHash, are contiguous, link to their predecessor and carry the
// hash of their own content. Events of different elections may interleave.
func Verify(events []Event) error {
	type cursor struct {
		seq  uint64
		head Hash
	}
	heads := make(map[uint64]cursor)

	for _, ev := range events {
		cur := heads[ev.ElectionID]
		if ev.Sequence != cur.seq+1 {
			return fmt.Errorf("%w: election %d: sequence %d follows %d", ErrChainBroken, ev.ElectionID, ev.Sequence, cur.seq)
		}
		if ev.PrevHash != cur.head {
			return fmt.Errorf("%w: election %d: sequence %d does not link to its predecessor", ErrChainBroken, ev.ElectionID, ev.Sequence)
		}
		if !ev.Type.Valid() {
			return fmt.Errorf("%w: election %d: sequence %d has unknown type %q", ErrChainBroken, ev.ElectionID, ev.Sequence, ev.Type)
		}
		want, err := ComputeHash(ev)
		if err != nil {
			return err
		}
		if want != ev.Hash {
			return fmt.Errorf("%w: election %d: sequence %d hash mismatch", ErrChainBroken, ev.ElectionID, ev.Sequence)
		}
		heads[ev.ElectionID] = cursor{seq: ev.Sequence, head: ev.Hash}
	}
	return nil
}
