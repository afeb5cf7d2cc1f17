package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs-lzh/mahjong-booking/internal/service"
)

func TestNormalizeScheduleDerivesEndFromGames(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	end, games, err := NormalizeSchedule(start, time.Time{}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, games)
	assert.Equal(t, start.Add(180*time.Minute), end)
}

func TestNormalizeScheduleDerivesGamesFromDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// 50 minutes rounds up to 2 games; the stated end time is kept
	end, games, err := NormalizeSchedule(start, start.Add(50*time.Minute), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, games)
	assert.Equal(t, start.Add(50*time.Minute), end)

	// re-deriving the duration from the game count never shrinks it
	assert.True(t, start.Add(time.Duration(games)*45*time.Minute).After(end) ||
		start.Add(time.Duration(games)*45*time.Minute).Equal(end))
}

func TestNormalizeScheduleExactMultiple(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, games, err := NormalizeSchedule(start, start.Add(90*time.Minute), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, games)
}

func TestNormalizeScheduleShortDurationMinimumOneGame(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, games, err := NormalizeSchedule(start, start.Add(10*time.Minute), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, games)
}

func TestNormalizeScheduleDefaultsToOneHour(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	end, games, err := NormalizeSchedule(start, time.Time{}, 0)
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Hour), end)
	assert.Equal(t, 2, games)
}

func TestNormalizeScheduleRejectsInvertedInterval(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, _, err := NormalizeSchedule(start, start, 0)
	assert.ErrorIs(t, err, service.ErrInvalidSchedule)

	_, _, err = NormalizeSchedule(start, start.Add(-time.Minute), 0)
	assert.ErrorIs(t, err, service.ErrInvalidSchedule)

	_, _, err = NormalizeSchedule(time.Time{}, start, 0)
	assert.ErrorIs(t, err, service.ErrInvalidSchedule)
}

func TestNormalizeScheduleEndAlwaysAfterStart(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for games := 1; games <= 8; games++ {
		end, _, err := NormalizeSchedule(start, time.Time{}, games)
		require.NoError(t, err)
		assert.True(t, end.After(start))
	}
}
