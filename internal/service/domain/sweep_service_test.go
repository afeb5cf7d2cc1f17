package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/repository"
)

func newSweepFixture(t *testing.T) (*fixture, *sweepService) {
	t.Helper()
	f := newFixture(t)
	sweeper := NewSweepService(f.db, repository.NewBookingRepoGorm(f.db))
	sweeper.now = func() time.Time { return f.base }
	return f, sweeper
}

func (f *fixture) pendingBooking(t *testing.T, createdAt, start, end time.Time, users ...model.User) *model.Booking {
	t.Helper()
	booking := &model.Booking{
		CreatorID:        f.users[0].ID,
		StoreID:          f.store.ID,
		StartTime:        start,
		EndTime:          end,
		NumGames:         1,
		ParticipantCount: len(users),
		Status:           model.StatusPending,
		CreatedAt:        createdAt,
		Participants:     users,
	}
	require.NoError(t, f.db.Create(booking).Error)
	return booking
}

func TestSweepExpiresStalePending(t *testing.T) {
	f, sweeper := newSweepFixture(t)

	stale := f.pendingBooking(t, f.base.Add(-25*time.Hour),
		f.base.Add(2*time.Hour), f.base.Add(3*time.Hour), f.users[0])
	fresh := f.pendingBooking(t, f.base.Add(-1*time.Hour),
		f.base.Add(2*time.Hour), f.base.Add(3*time.Hour), f.users[1])

	summary, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Expired)

	var got model.Booking
	require.NoError(t, f.db.First(&got, stale.ID).Error)
	assert.Equal(t, model.StatusExpired, got.Status)

	got = model.Booking{}
	require.NoError(t, f.db.First(&got, fresh.ID).Error)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestSweepDeletesDeadPending(t *testing.T) {
	f, sweeper := newSweepFixture(t)

	dead := f.pendingBooking(t, f.base.Add(-2*time.Hour),
		f.base.Add(-90*time.Minute), f.base.Add(-30*time.Minute), f.users[0], f.users[1])

	summary, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Deleted)

	var count int64
	require.NoError(t, f.db.Model(&model.Booking{}).Where("id = ?", dead.ID).Count(&count).Error)
	assert.Zero(t, count)

	// join rows must not survive the booking
	require.NoError(t, f.db.Table("booking_participants").
		Where("booking_id = ?", dead.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSweepCompletesFinishedGames(t *testing.T) {
	f, sweeper := newSweepFixture(t)

	finished := f.confirmedBooking(t, f.store.ID, nil,
		f.base.Add(-2*time.Hour), f.base.Add(-time.Hour),
		f.users[0], f.users[1], f.users[2], f.users[3])
	running := f.confirmedBooking(t, f.store.ID, nil,
		f.base.Add(-30*time.Minute), f.base.Add(30*time.Minute), f.users[4])

	summary, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Completed)

	var got model.Booking
	require.NoError(t, f.db.First(&got, finished.ID).Error)
	assert.Equal(t, model.StatusCompleted, got.Status)

	got = model.Booking{}
	require.NoError(t, f.db.First(&got, running.ID).Error)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	f, sweeper := newSweepFixture(t)

	f.pendingBooking(t, f.base.Add(-25*time.Hour),
		f.base.Add(2*time.Hour), f.base.Add(3*time.Hour), f.users[0])
	f.pendingBooking(t, f.base.Add(-2*time.Hour),
		f.base.Add(-90*time.Minute), f.base.Add(-30*time.Minute), f.users[1])
	f.confirmedBooking(t, f.store.ID, nil,
		f.base.Add(-2*time.Hour), f.base.Add(-time.Hour), f.users[2])

	first, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.True(t, first.Changed())

	second, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.False(t, second.Changed())
	assert.Zero(t, second.Expired)
	assert.Zero(t, second.Deleted)
	assert.Zero(t, second.Completed)
}

func TestSweepSummaryString(t *testing.T) {
	assert.Equal(t, "没有发现需要清理的预约。", SweepSummary{}.String())
	assert.Contains(t, SweepSummary{Expired: 2, Deleted: 1, Completed: 3}.String(), "2")
}
