// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the state machine of a single election.

An Election owns three ledgers: the candidate registry (ids 1..n, never
deleted, deactivation is one-way), the vote ledger (every ballot ever cast,
with at most one valid vote per voter), and the authorization ledger
(identity to eligibility and weight).

# Lifecycle

The state is computed from two flags and the clock:

	ended                      -> ended
	paused                     -> paused
	now < start                -> scheduled
	now > end                  -> expired (waiting for EndElection)
	otherwise                  -> active

Only the active state admits Vote. Roster and authorization edits are
allowed while scheduled or active. TogglePause works in any state before
ended; EndElection requires now >= end and is terminal.

# Eligibility

An election without authorization records accepts a vote from anyone, at
weight 1. As soon as one record exists, only identities authorized in the
ledger and the controller may vote. Authorized identities vote with their
recorded weight; the controller without a record votes with weight 1.

# Atomicity

Each operation holds the election's lock while it checks preconditions,
appends the resulting audit event to the sink and applies it. A rejected
operation, including one whose event the sink refused, leaves the state
and the history untouched. Replay rebuilds an election by applying a
verified history in order, which yields the same state as the live run.

# Errors

Operations return the sentinel errors in errors.go, possibly wrapped with
context. Use errors.Is to classify them. ErrPaused matches ErrNotOpen.
*/
package election
