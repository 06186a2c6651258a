package game

import "errors"

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrUnknownMode       = errors.New("unknown game mode")
	ErrInvalidDefinition = errors.New("invalid game definition")
	ErrGameFull          = errors.New("game is full")
	ErrGameEnded         = errors.New("game has ended")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrAlreadyJoined     = errors.New("user already joined this game")
	ErrNotJoined         = errors.New("user is not part of this game")
	ErrJoinDenied        = errors.New("join was denied")
	ErrNoPhases          = errors.New("game has no phases")
	ErrMissingDependency = errors.New("missing feature dependency")
	ErrDependencyCycle   = errors.New("feature dependency cycle")
)
