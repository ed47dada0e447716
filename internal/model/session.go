package model

import "time"

// SessionStatus is the coarse phase of a daily Zoom session
type SessionStatus string

const (
	SessionWaitingStart SessionStatus = "waiting_start"
	SessionInProgress   SessionStatus = "in_progress"
	SessionFinished     SessionStatus = "finished"
)

// Step is the fine-grained turn phase inside a session
type Step string

const (
	StepPhoto      Step = "PHOTO"
	StepGuess      Step = "GUESS"
	StepValidation Step = "VALIDATION"
)

// GameInfo is a catalog entry for a daily mini-game
type GameInfo struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
}

// ZoomGame is the catalog entry the daily session flow is fixed to
var ZoomGame = GameInfo{
	ID:          "zoom",
	Title:       "Zoom",
	Description: "Un joueur photographie un détail en très gros plan, l'autre doit deviner ce que c'est.",
}

// SharedData holds the turn state both players act on
type SharedData struct {
	Step         Step     `json:"step" bson:"step"`
	Mission      string   `json:"mission" bson:"mission"`
	Author       PlayerID `json:"author" bson:"author"`
	Guesser      PlayerID `json:"guesser" bson:"guesser"`
	Image        *string  `json:"image" bson:"image,omitempty"`
	CurrentGuess *string  `json:"currentGuess" bson:"currentGuess,omitempty"`
}

// ZoomSession is the daily_session:<date> document
type ZoomSession struct {
	Date       string                    `json:"date" bson:"date"`
	Game       GameInfo                  `json:"game" bson:"game"`
	Status     SessionStatus             `json:"status" bson:"status"`
	SharedData SharedData                `json:"sharedData" bson:"sharedData"`
	Players    map[PlayerID]*PlayerScore `json:"players" bson:"players"`
	Version    int64                     `json:"version" bson:"version"`
	CreatedAt  time.Time                 `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time                 `json:"updatedAt" bson:"updatedAt"`
}

// SessionView is what GET /daily-game/init returns: the session plus the weekly ranking
type SessionView struct {
	*ZoomSession
	WeeklyRanking map[PlayerID]int `json:"weeklyRanking"`
}

// ActionType names a Zoom session action
type ActionType string

const (
	ActionStartGame   ActionType = "start_game"
	ActionSubmitPhoto ActionType = "zoom_submit_photo"
	ActionSubmitGuess ActionType = "zoom_submit_guess"
	ActionValidate    ActionType = "zoom_validate"
)

// ActionRequest is the body of POST /daily-game/action
type ActionRequest struct {
	Action  ActionType `json:"action"`
	Player  PlayerID   `json:"player,omitempty"`
	Image   string     `json:"image,omitempty"`
	Guess   string     `json:"guess,omitempty"`
	IsValid *bool      `json:"isValid,omitempty"`
	Version *int64     `json:"version,omitempty"` // optional optimistic-concurrency token
}

// ActionResponse is returned after a successful action
type ActionResponse struct {
	Success bool         `json:"success"`
	Session *ZoomSession `json:"session"`
}
