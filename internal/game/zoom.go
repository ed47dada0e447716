// Package game holds the pure turn logic of the two-player daily games.
// Nothing here touches the store; services load a document, apply one
// transition and persist the result.
package game

import (
	"errors"
	"fmt"
	"time"

	"onsamuse/internal/model"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrPhaseMismatch  = errors.New("action not allowed in current phase")
	ErrNotYourTurn    = errors.New("player is not expected to act now")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrMissingField   = fmt.Errorf("%w: missing required field", ErrInvalidPayload)
)

// DefaultMissions is used when the configured mission pool is empty
var DefaultMissions = []string{
	"Un objet de la cuisine",
	"Quelque chose de rouge",
	"Un détail de la salle de bain",
}

type role int

const (
	roleAnyone role = iota
	roleAuthor
	roleGuesser
)

type state struct {
	status model.SessionStatus
	step   model.Step
}

type transition struct {
	from  state
	to    state
	actor role
}

var zoomTransitions = map[model.ActionType]transition{
	model.ActionStartGame: {
		from:  state{model.SessionWaitingStart, model.StepPhoto},
		to:    state{model.SessionInProgress, model.StepPhoto},
		actor: roleAnyone,
	},
	model.ActionSubmitPhoto: {
		from:  state{model.SessionInProgress, model.StepPhoto},
		to:    state{model.SessionInProgress, model.StepGuess},
		actor: roleAuthor,
	},
	model.ActionSubmitGuess: {
		from:  state{model.SessionInProgress, model.StepGuess},
		to:    state{model.SessionInProgress, model.StepValidation},
		actor: roleGuesser,
	},
	model.ActionValidate: {
		from:  state{model.SessionInProgress, model.StepValidation},
		to:    state{model.SessionFinished, model.StepValidation},
		actor: roleAuthor,
	},
}

// Payload carries the action-specific fields of a Zoom action
type Payload struct {
	Image   string
	Guess   string
	IsValid *bool
}

// Outcome reports side effects the caller must persist outside the session document
type Outcome struct {
	Finished bool
	Scorer   model.PlayerID // empty when nobody scored
}

// Validate checks that payload carries what action needs
func Validate(action model.ActionType, p Payload) error {
	if _, ok := zoomTransitions[action]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	switch action {
	case model.ActionSubmitPhoto:
		if p.Image == "" {
			return fmt.Errorf("%w: image", ErrMissingField)
		}
	case model.ActionSubmitGuess:
		if p.Guess == "" {
			return fmt.Errorf("%w: guess", ErrMissingField)
		}
	case model.ActionValidate:
		if p.IsValid == nil {
			return fmt.Errorf("%w: isValid", ErrMissingField)
		}
	}
	return nil
}

// ExpectedActor returns the player who must perform action on s, or "" if anyone may
func ExpectedActor(s *model.ZoomSession, action model.ActionType) model.PlayerID {
	switch zoomTransitions[action].actor {
	case roleAuthor:
		return s.SharedData.Author
	case roleGuesser:
		return s.SharedData.Guesser
	}
	return ""
}

// Apply performs one transition on s. caller may be empty when the identity is unknown.
// On error s is left untouched.
func Apply(s *model.ZoomSession, action model.ActionType, caller model.PlayerID, p Payload) (Outcome, error) {
	var out Outcome
	if err := Validate(action, p); err != nil {
		return out, err
	}
	t := zoomTransitions[action]

	cur := state{s.Status, s.SharedData.Step}
	if cur != t.from {
		return out, fmt.Errorf("%w: %s requires %s/%s, session is %s/%s",
			ErrPhaseMismatch, action, t.from.status, t.from.step, cur.status, cur.step)
	}
	if expected := ExpectedActor(s, action); caller != "" && expected != "" && caller != expected {
		return out, fmt.Errorf("%w: %s must be done by %s", ErrNotYourTurn, action, expected)
	}

	switch action {
	case model.ActionSubmitPhoto:
		img := p.Image
		s.SharedData.Image = &img
	case model.ActionSubmitGuess:
		guess := p.Guess
		s.SharedData.CurrentGuess = &guess
	case model.ActionValidate:
		out.Finished = true
		if *p.IsValid {
			guesser := s.SharedData.Guesser
			if s.Players == nil {
				s.Players = make(map[model.PlayerID]*model.PlayerScore)
			}
			if s.Players[guesser] == nil {
				s.Players[guesser] = &model.PlayerScore{}
			}
			s.Players[guesser].Score++
			out.Scorer = guesser
		}
	}

	s.Status = t.to.status
	s.SharedData.Step = t.to.step
	return out, nil
}

// NextAuthor alternates the photographer relative to yesterday's author
func NextAuthor(roster model.Roster, lastAuthor model.PlayerID) model.PlayerID {
	if next, ok := roster.OpponentOf(lastAuthor); ok {
		return next
	}
	return roster[0]
}

// PickMission chooses uniformly from pool, falling back to DefaultMissions.
// intn must return a value in [0, n).
func PickMission(pool []string, intn func(n int) int) string {
	if len(pool) == 0 {
		pool = DefaultMissions
	}
	return pool[intn(len(pool))]
}

// NewZoomSession builds a fresh session for date
func NewZoomSession(date string, roster model.Roster, lastAuthor model.PlayerID, mission string, now time.Time) *model.ZoomSession {
	author := NextAuthor(roster, lastAuthor)
	guesser, _ := roster.OpponentOf(author)

	players := make(map[model.PlayerID]*model.PlayerScore, len(roster))
	for _, p := range roster {
		players[p] = &model.PlayerScore{Score: 0}
	}

	return &model.ZoomSession{
		Date:   date,
		Game:   model.ZoomGame,
		Status: model.SessionWaitingStart,
		SharedData: model.SharedData{
			Step:    model.StepPhoto,
			Mission: mission,
			Author:  author,
			Guesser: guesser,
		},
		Players:   players,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
