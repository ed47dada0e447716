package service

import (
	"errors"

	"onsamuse/internal/game"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidAction    = game.ErrUnknownAction
	ErrInvalidPayload   = game.ErrInvalidPayload
	ErrPhaseMismatch    = game.ErrPhaseMismatch
	ErrNotYourTurn      = game.ErrNotYourTurn
	ErrIdentityMismatch = errors.New("authenticated player does not match request")
	ErrVersionConflict  = errors.New("session was modified concurrently")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrUnknownGame      = errors.New("unknown game")
)
