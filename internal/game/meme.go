package game

import "onsamuse/internal/model"

// MemePhase derives the round phase from the two barriers: both turns
// present opens voting, both votes present opens results.
func MemePhase(roster model.Roster, turns map[model.PlayerID]*model.MemeTurn, given map[model.PlayerID]int) model.MemePhase {
	for _, p := range roster {
		if turns[p] == nil {
			return model.MemePhaseEditing
		}
	}
	for _, p := range roster {
		if _, ok := given[p]; !ok {
			return model.MemePhaseVoting
		}
	}
	return model.MemePhaseResults
}

// ReceivedVotes inverts the votes-given map: what X received is what X's
// opponent gave. Empty until both votes exist.
func ReceivedVotes(roster model.Roster, given map[model.PlayerID]int) map[model.PlayerID]int {
	received := make(map[model.PlayerID]int, len(roster))
	for _, p := range roster {
		if _, ok := given[p]; !ok {
			return map[model.PlayerID]int{}
		}
	}
	for _, p := range roster {
		opponent, _ := roster.OpponentOf(p)
		received[p] = given[opponent]
	}
	return received
}

// MaxVoteScore is the highest total a voter can give to turn
func MaxVoteScore(turn *model.MemeTurn) int {
	if turn == nil {
		return 0
	}
	return model.MaxVotePoints * len(turn.Memes)
}
