// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrNotFound          = errors.New("not found")
	ErrNotOwner          = errors.New("caller is not the election controller")
	ErrNotAuthorized     = errors.New("caller is not authorized")
	ErrNotOpen           = errors.New("election is not open for voting")
	ErrInvalidState      = errors.New("operation not allowed in the current state")
	ErrNotActive         = errors.New("election is not accepting changes")
	ErrAlreadyVoted      = errors.New("voter already has a valid vote")
	ErrNotVoted          = errors.New("voter has no valid vote")
	ErrInvalidCandidate  = errors.New("candidate does not exist or is inactive")

	// ErrPaused also matches ErrNotOpen, so callers that only care whether a
	// vote could be cast need a single check.
	ErrPaused = fmt.Errorf("election is paused: %w", ErrNotOpen)
)
