package workflow

import (
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/mahjong-booking/internal/cache"
	"github.com/qs-lzh/mahjong-booking/internal/service/domain"
)

// ScheduleWorkflow fronts the schedule views with the redis cache.
type ScheduleWorkflow struct {
	schedule domain.ScheduleService
	cache    *cache.RedisCache
	logger   *zap.Logger
}

func NewScheduleWorkflow(schedule domain.ScheduleService, redisCache *cache.RedisCache, logger *zap.Logger) *ScheduleWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleWorkflow{
		schedule: schedule,
		cache:    redisCache,
		logger:   logger,
	}
}

func (w *ScheduleWorkflow) StoreStatus(storeID uint) (*domain.StoreStatus, error) {
	key := cache.MakeStoreStatusKey(storeID)
	if w.cache != nil {
		var cached domain.StoreStatus
		if err := w.cache.Get(key, &cached); err == nil {
			return &cached, nil
		}
	}
	status, err := w.schedule.StoreStatus(storeID)
	if err != nil {
		return nil, err
	}
	if w.cache != nil {
		if err := w.cache.Set(key, status, cache.StoreStatusTTL); err != nil {
			w.logger.Warn("failed to cache store status", zap.Uint("store_id", storeID), zap.Error(err))
		}
	}
	return status, nil
}

func (w *ScheduleWorkflow) Timetable(storeID uint, from time.Time, hours int) (*domain.Timetable, error) {
	return w.schedule.Timetable(storeID, from, hours)
}
