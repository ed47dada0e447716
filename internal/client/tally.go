package client

import (
	"errors"

	"onsamuse/internal/model"
)

// VoteLabels are the five buttons shown for each meme, indexed by points
var VoteLabels = [model.MaxVotePoints + 1]string{"Nul", "Bof", "Sympa", "Drôle", "MDR"}

var (
	ErrTallyDone     = errors.New("every meme has been rated")
	ErrInvalidPoints = errors.New("points out of range")
)

// VoteTally rates the opponent's memes one by one. Only Total is sent to
// the server, once Done.
type VoteTally struct {
	Index int
	Total int
	Items int
}

// NewVoteTally starts a tally over items memes
func NewVoteTally(items int) VoteTally {
	return VoteTally{Items: items}
}

// Done reports whether every meme has been rated
func (t VoteTally) Done() bool {
	return t.Index >= t.Items
}

// Cast rates the current meme and returns the next state
func (t VoteTally) Cast(points int) (VoteTally, error) {
	if t.Done() {
		return t, ErrTallyDone
	}
	if points < 0 || points > model.MaxVotePoints {
		return t, ErrInvalidPoints
	}
	return VoteTally{Index: t.Index + 1, Total: t.Total + points, Items: t.Items}, nil
}
