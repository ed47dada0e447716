package model

// MemeZone is a caption box position copied from a meme template
type MemeZone struct {
	ID       string  `json:"id" bson:"id"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`
	FontSize float64 `json:"fontSize,omitempty" bson:"fontSize,omitempty"`
}

// MemeInstance is one captioned image inside a turn
type MemeInstance struct {
	URL        string            `json:"url" bson:"url"`
	Zones      []MemeZone        `json:"zones" bson:"zones"`
	Inputs     map[string]string `json:"inputs" bson:"inputs"` // zone id -> caption
	InstanceID string            `json:"instanceId" bson:"instanceId"`
}

// MemeTurnType is the only turn type stored in the meme turn map
const MemeTurnType = "meme"

// MemeTurn is one player's full submission for the current round
type MemeTurn struct {
	Type        string         `json:"type" bson:"type"`
	Player      PlayerID       `json:"player" bson:"player"`
	Memes       []MemeInstance `json:"memes" bson:"memes"`
	SubmittedAt int64          `json:"submittedAt" bson:"submittedAt"` // unix millis
}

// MemePhase is derived from which turn and vote entries exist
type MemePhase string

const (
	MemePhaseEditing MemePhase = "editing"
	MemePhaseVoting  MemePhase = "voting"
	MemePhaseResults MemePhase = "results"
)

// MaxVotePoints is the highest value a voter can give a single meme ("MDR")
const MaxVotePoints = 4

// LegacyZoomView is the flat-key Zoom round kept for the older single-round client
type LegacyZoomView struct {
	Image          *string `json:"image"`
	Author         *string `json:"author"`
	CurrentGuess   *string `json:"currentGuess"`
	HasPendingGame bool    `json:"hasPendingGame"`
}

// TurnStatus is the GET /game-turn response
type TurnStatus struct {
	Zoom  LegacyZoomView   `json:"zoom"`
	Memes []*MemeTurn      `json:"memes"`
	Votes map[PlayerID]int `json:"votes"` // points received
	Phase MemePhase        `json:"phase"`
}

// TurnRequest is the POST /game-turn body; its shape selects the operation
type TurnRequest struct {
	Type   string         `json:"type,omitempty"`
	Action string         `json:"action,omitempty"`
	Image  string         `json:"image,omitempty"`
	Author string         `json:"author,omitempty"`
	Guess  string         `json:"guess,omitempty"`
	Player PlayerID       `json:"player,omitempty"`
	Memes  []MemeInstance `json:"memes,omitempty"`
}

// VoteRequest is the PATCH /game-turn body
type VoteRequest struct {
	Voter PlayerID `json:"voter"`
	Score *int     `json:"score"`
}
