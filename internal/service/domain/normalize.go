package domain

import (
	"time"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/service"
)

// defaultSession is used when the caller supplies neither an end time nor
// a game count.
const defaultSession = time.Hour

// NormalizeSchedule applies the derivation rules for a booking interval.
// Exactly one of end/numGames is authoritative: a missing end time is
// computed from the game count at 45 minutes per 半庄, a missing game count
// is derived from the duration with ceiling rounding (never below 1). When
// both are missing the booking defaults to a one-hour session. The result
// always satisfies end > start.
func NormalizeSchedule(start, end time.Time, numGames int) (time.Time, int, error) {
	if start.IsZero() {
		return time.Time{}, 0, service.ErrInvalidSchedule
	}

	switch {
	case end.IsZero() && numGames > 0:
		end = start.Add(time.Duration(numGames) * model.GameDuration)
	case end.IsZero():
		end = start.Add(defaultSession)
		numGames = gamesForDuration(defaultSession)
	case numGames <= 0:
		numGames = gamesForDuration(end.Sub(start))
	}

	if !end.After(start) {
		return time.Time{}, 0, service.ErrInvalidSchedule
	}
	return end, numGames, nil
}

func gamesForDuration(d time.Duration) int {
	games := int((d + model.GameDuration - 1) / model.GameDuration)
	if games < 1 {
		games = 1
	}
	return games
}
