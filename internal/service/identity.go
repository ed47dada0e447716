package service

import (
	"fmt"

	"onsamuse/internal/model"
)

// resolvePlayer picks the acting player. The token caller wins over the
// claimed body field; both empty is left to the caller to reject.
func resolvePlayer(roster model.Roster, claimed, caller model.PlayerID) (model.PlayerID, error) {
	if claimed != "" && !roster.Contains(claimed) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, claimed)
	}
	if caller == "" {
		return claimed, nil
	}
	if claimed != "" && claimed != caller {
		return "", ErrIdentityMismatch
	}
	if !roster.Contains(caller) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, caller)
	}
	return caller, nil
}
