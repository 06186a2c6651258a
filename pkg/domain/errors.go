package domain

import "errors"

// ErrStatNotFound is returned when no row exists for a (user, stat type) pair.
var ErrStatNotFound = errors.New("stat not found")

// ErrInvalidGameMode is returned for unknown game mode names.
var ErrInvalidGameMode = errors.New("invalid game mode")
