// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registry creates elections and indexes them.

The registry is an arena of election state machines keyed by a
monotonically increasing id starting at 1. Callers hold ids, never
references into the arena; Election resolves an id to its instance.

CreateElection validates the election-level parameters (non-empty title,
start strictly in the future, end after start, at least two named
candidates, optional parallel description and media arrays) before an id
is allocated. A rejected creation records nothing and consumes no id.

ElectionsByCreator and Elections return iter.Seq values that scan the
creation-order index on every iteration. They hold no lock while yielding,
so a consumer may call back into the registry.

Restore rebuilds an empty registry from a verified event history, for
example the audit_event table loaded at startup.
*/
package registry
