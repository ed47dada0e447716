package cache

import (
	"errors"
	"fmt"
)

// Store keys shared by the daily games
const (
	zoomLastAuthorKey = "zoom_last_author"
	weeklyScoresKey   = "weekly_scores_current"
	zoomMissionsKey   = "missions:zoom"

	legacyZoomImageKey  = "zoom_current_image"
	legacyZoomAuthorKey = "zoom_current_author"
	legacyZoomGuessKey  = "zoom_current_guess"

	memeTurnsKey      = "meme_turns_session"
	memeVotesGivenKey = "meme_votes_given"

	// no longer written, only deleted on reset
	deprecatedMemeTurnsKey = "meme_current_turns"
	deprecatedMemeVotesKey = "meme_votes_session"
)

var (
	ErrSessionMissing = errors.New("session not found")
	ErrConflict       = errors.New("too many concurrent modifications")
)

func dailySessionKey(date string) string {
	return fmt.Sprintf("daily_session:%s", date)
}
