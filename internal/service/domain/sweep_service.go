package domain

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/repository"
)

// StaleAfter is how long a pending booking may wait for players before the
// sweep marks it expired.
const StaleAfter = 24 * time.Hour

// SweepSummary counts the rows each sweep pass touched.
type SweepSummary struct {
	Expired   int64 `json:"expired"`
	Deleted   int64 `json:"deleted"`
	Completed int64 `json:"completed"`
}

func (s SweepSummary) Changed() bool {
	return s.Expired > 0 || s.Deleted > 0 || s.Completed > 0
}

func (s SweepSummary) String() string {
	if !s.Changed() {
		return "没有发现需要清理的预约。"
	}
	return fmt.Sprintf("标记过期 %d 条，删除已截止未成行 %d 条，标记完成 %d 条。",
		s.Expired, s.Deleted, s.Completed)
}

type SweepService interface {
	// Sweep expires stale pending bookings, deletes pending bookings whose
	// interval has already passed, and marks finished confirmed bookings
	// completed. Every pass uses conditional updates, so running it twice
	// in a row changes nothing the second time.
	Sweep() (SweepSummary, error)
}

type sweepService struct {
	db       *gorm.DB
	bookings repository.BookingRepo

	now func() time.Time
}

var _ SweepService = (*sweepService)(nil)

func NewSweepService(db *gorm.DB, bookings repository.BookingRepo) *sweepService {
	return &sweepService{
		db:       db,
		bookings: bookings,
		now:      time.Now,
	}
}

func (s *sweepService) Sweep() (SweepSummary, error) {
	var summary SweepSummary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		now := s.now()

		expired, err := bookings.ExpireStalePending(now.Add(-StaleAfter))
		if err != nil {
			return err
		}
		// a pending booking whose interval already passed can never be
		// fulfilled, drop it outright
		deleted, err := bookings.DeleteDeadPending(now)
		if err != nil {
			return err
		}
		completed, err := bookings.CompleteFinished(now)
		if err != nil {
			return err
		}

		summary = SweepSummary{
			Expired:   expired,
			Deleted:   deleted,
			Completed: completed,
		}
		return nil
	})
	return summary, err
}
