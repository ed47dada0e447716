package model

import "fmt"

// PlayerID identifies one of the household players ("Moi", "Chéri(e)")
type PlayerID string

// PlayerScore is a player's score within a single session
type PlayerScore struct {
	Score int `json:"score" bson:"score"`
}

// Roster is the fixed pair of players every daily game is played between
type Roster [2]PlayerID

// NewRoster validates ids and builds a roster
func NewRoster(ids []string) (Roster, error) {
	var r Roster
	if len(ids) != len(r) {
		return r, fmt.Errorf("roster needs exactly %d players, got %d", len(r), len(ids))
	}
	for i, id := range ids {
		if id == "" {
			return r, fmt.Errorf("roster player %d is empty", i)
		}
		r[i] = PlayerID(id)
	}
	if r[0] == r[1] {
		return r, fmt.Errorf("roster players must differ, got %q twice", r[0])
	}
	return r, nil
}

// Contains reports whether p is one of the roster players
func (r Roster) Contains(p PlayerID) bool {
	return p == r[0] || p == r[1]
}

// OpponentOf returns the other roster player
func (r Roster) OpponentOf(p PlayerID) (PlayerID, bool) {
	switch p {
	case r[0]:
		return r[1], true
	case r[1]:
		return r[0], true
	}
	return "", false
}

// Players returns the roster as a slice
func (r Roster) Players() []PlayerID {
	return []PlayerID{r[0], r[1]}
}
