// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit defines the append-only event history that every election
produces.

# Events

Each accepted operation on an election yields exactly one Event. An event
carries the operation type, the acting identity, the time it was accepted,
and a Payload with every argument needed to re-apply it. Replaying an
election's events in sequence order from an empty state reproduces the
election exactly.

# Hash Chain

Events are chained per election. The first event (ElectionCreated, sequence
1) links to the zero hash; every later event links to the hash of its
predecessor:

	hash = BLAKE3-keyed(domain, prev_hash || canonical_json(event))

The canonical JSON covers the type, election id, sequence, actor, time and
payload. The event id is not covered. Times are hashed in UTC so a history
read back from storage verifies regardless of the storage time zone.

Verify walks a history and reports ErrChainBroken at the first gap, broken
link or tampered event.

# Sinks

A Sink receives each sealed event before the election applies it, so an
operation the sink rejects never changes state. Log is the in-memory sink
used by tests and embedded deployments; it also fans events out to
subscribers. Tee chains several sinks behind one.
*/
package audit
