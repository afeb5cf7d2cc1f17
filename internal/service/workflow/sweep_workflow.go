package workflow

import (
	"go.uber.org/zap"

	"github.com/qs-lzh/mahjong-booking/internal/cache"
	"github.com/qs-lzh/mahjong-booking/internal/mq"
	"github.com/qs-lzh/mahjong-booking/internal/service/domain"
)

// SweepWorkflow is the cron entry point for the expiration sweep.
type SweepWorkflow struct {
	sweep  domain.SweepService
	cache  *cache.RedisCache
	events EventSink
	logger *zap.Logger
}

func NewSweepWorkflow(sweep domain.SweepService, redisCache *cache.RedisCache,
	events EventSink, logger *zap.Logger) *SweepWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepWorkflow{
		sweep:  sweep,
		cache:  redisCache,
		events: events,
		logger: logger,
	}
}

func (w *SweepWorkflow) Run() (domain.SweepSummary, error) {
	summary, err := w.sweep.Sweep()
	if err != nil {
		w.logger.Error("expiration sweep failed", zap.Error(err))
		return summary, err
	}
	w.logger.Info("expiration sweep finished",
		zap.Int64("expired", summary.Expired),
		zap.Int64("deleted", summary.Deleted),
		zap.Int64("completed", summary.Completed),
	)
	if !summary.Changed() {
		return summary, nil
	}

	if w.cache != nil {
		if err := w.cache.Invalidate(cache.PendingBookingsKey); err != nil {
			w.logger.Warn("failed to invalidate pending bookings cache", zap.Error(err))
		}
	}
	if w.events != nil {
		if err := w.events.Publish(mq.BookingEventMessage{
			Event: mq.EventSweep,
			Note:  summary.String(),
		}); err != nil {
			w.logger.Warn("failed to publish sweep event", zap.Error(err))
		}
	}
	return summary, nil
}
