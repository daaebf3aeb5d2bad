package game

import "errors"

// Engine-level errors. Every rejection leaves state untouched and is reported
// only to the requesting client, never broadcast.
var (
	// ErrIllegalAction covers out-of-turn actions and action types that are
	// not permitted in the current context (e.g. check facing a bet).
	ErrIllegalAction = errors.New("illegal action")

	// ErrInvalidAmount covers bet/raise amounts below the computed minimum,
	// non-positive amounts, and amounts exceeding the player's stack.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientPlayers is returned when a hand cannot start with fewer
	// than two eligible players.
	ErrInsufficientPlayers = errors.New("insufficient players")
)
