package model

import "time"

// RoundRecord is an archived round, written once a Zoom session finishes
// or a completed Meme round is reset
type RoundRecord struct {
	ID         string    `json:"id" bson:"_id"`
	Game       string    `json:"game" bson:"game"`
	Date       string    `json:"date" bson:"date"`
	FinishedAt time.Time `json:"finishedAt" bson:"finishedAt"`

	// Zoom
	Mission string   `json:"mission,omitempty" bson:"mission,omitempty"`
	Author  PlayerID `json:"author,omitempty" bson:"author,omitempty"`
	Guesser PlayerID `json:"guesser,omitempty" bson:"guesser,omitempty"`
	Guess   string   `json:"guess,omitempty" bson:"guess,omitempty"`
	Valid   bool     `json:"valid,omitempty" bson:"valid,omitempty"`

	// Meme
	MemeCounts map[PlayerID]int `json:"memeCounts,omitempty" bson:"memeCounts,omitempty"`

	// Points each player earned in the round
	Scores map[PlayerID]int `json:"scores" bson:"scores"`
}
