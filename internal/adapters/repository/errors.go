package repository

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrNotFound         = errors.New("expert not found")
	ErrInvalidLimit     = errors.New("invalid leaderboard limit")
	ErrUnknownEventKind = errors.New("unknown stat event kind")
)
