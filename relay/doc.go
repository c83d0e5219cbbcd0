// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package relay forwards recorded audit events from the database outbox to
// external observers over NATS, or to an in-process audit.Log.
package relay
