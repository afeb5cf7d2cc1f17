package workflow

import (
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/mahjong-booking/internal/cache"
	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/mq"
	"github.com/qs-lzh/mahjong-booking/internal/service/domain"
)

// EventSink publishes booking events for the notification worker. The
// rabbitmq producer implements it; tests pass nil or a stub.
type EventSink interface {
	Publish(event mq.BookingEventMessage) error
}

// BookingWorkflow wraps the booking service with the side effects a
// mutation fans out to: cache invalidation and participant notifications.
type BookingWorkflow struct {
	bookings domain.BookingService
	cache    *cache.RedisCache
	events   EventSink
	logger   *zap.Logger
}

func NewBookingWorkflow(bookings domain.BookingService, redisCache *cache.RedisCache,
	events EventSink, logger *zap.Logger) *BookingWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingWorkflow{
		bookings: bookings,
		cache:    redisCache,
		events:   events,
		logger:   logger,
	}
}

func (w *BookingWorkflow) Create(creatorID, storeID uint, start, end time.Time, numGames int) (*model.Booking, error) {
	booking, err := w.bookings.Create(creatorID, storeID, start, end, numGames)
	if err != nil {
		return nil, err
	}
	w.invalidate(cache.PendingBookingsKey)
	return booking, nil
}

func (w *BookingWorkflow) Join(userID, bookingID uint) (*model.Booking, bool, error) {
	booking, confirmed, err := w.bookings.Join(userID, bookingID)
	if err != nil {
		return nil, false, err
	}
	w.invalidate(cache.PendingBookingsKey, cache.MakeStoreStatusKey(booking.StoreID))
	if confirmed {
		w.publish(mq.BookingEventMessage{
			Event:     mq.EventBookingConfirmed,
			BookingID: booking.ID,
			StoreID:   booking.StoreID,
			UserIDs:   participantIDs(booking),
			Note:      "对局已满4人，成功成行",
		})
	}
	return booking, confirmed, nil
}

func (w *BookingWorkflow) Leave(userID, bookingID uint) (*domain.LeaveResult, error) {
	result, err := w.bookings.Leave(userID, bookingID)
	if err != nil {
		return nil, err
	}
	w.invalidate(cache.PendingBookingsKey)
	if result.Reopened {
		w.invalidate(cache.MakeStoreStatusKey(result.Booking.StoreID))
		w.publish(mq.BookingEventMessage{
			Event:     mq.EventBookingReopened,
			BookingID: result.Booking.ID,
			StoreID:   result.Booking.StoreID,
			UserIDs:   participantIDs(result.Booking),
			Note:      "有人退出，对局重新开放加入",
		})
	}
	return result, nil
}

func (w *BookingWorkflow) AssignTable(bookingID, tableID uint) (*model.Booking, error) {
	booking, err := w.bookings.AssignTable(bookingID, tableID)
	if err != nil {
		return nil, err
	}
	w.invalidate(cache.MakeStoreStatusKey(booking.StoreID))
	return booking, nil
}

func (w *BookingWorkflow) Cancel(bookingID uint) (*model.Booking, error) {
	booking, err := w.bookings.Cancel(bookingID)
	if err != nil {
		return nil, err
	}
	w.invalidate(cache.PendingBookingsKey, cache.MakeStoreStatusKey(booking.StoreID))
	w.publish(mq.BookingEventMessage{
		Event:     mq.EventBookingCanceled,
		BookingID: booking.ID,
		StoreID:   booking.StoreID,
		UserIDs:   participantIDs(booking),
		Note:      "对局已被门店取消",
	})
	return booking, nil
}

func (w *BookingWorkflow) WalkIn(staffID, tableID uint, numGames int) (*model.Booking, error) {
	booking, err := w.bookings.WalkIn(staffID, tableID, numGames)
	if err != nil {
		return nil, err
	}
	w.invalidate(cache.MakeStoreStatusKey(booking.StoreID))
	return booking, nil
}

func (w *BookingWorkflow) GetBooking(id uint) (*model.Booking, error) {
	return w.bookings.GetBooking(id)
}

// PendingBookings serves the joinable-bookings list from redis, refilling
// on a miss.
func (w *BookingWorkflow) PendingBookings() ([]model.Booking, error) {
	if w.cache != nil {
		var cached []model.Booking
		if err := w.cache.Get(cache.PendingBookingsKey, &cached); err == nil {
			return cached, nil
		}
	}
	bookings, err := w.bookings.PendingBookings()
	if err != nil {
		return nil, err
	}
	if w.cache != nil {
		if err := w.cache.Set(cache.PendingBookingsKey, bookings, cache.PendingBookingsTTL); err != nil {
			w.logger.Warn("failed to cache pending bookings", zap.Error(err))
		}
	}
	return bookings, nil
}

func (w *BookingWorkflow) MyBookings(userID uint) ([]model.Booking, error) {
	return w.bookings.MyBookings(userID)
}

func (w *BookingWorkflow) MyGames(userID uint) ([]model.Booking, map[model.GamePhase]int, error) {
	return w.bookings.MyGames(userID)
}

func (w *BookingWorkflow) publish(event mq.BookingEventMessage) {
	if w.events == nil {
		return
	}
	if err := w.events.Publish(event); err != nil {
		w.logger.Warn("failed to publish booking event",
			zap.String("event", event.Event),
			zap.Uint("booking_id", event.BookingID),
			zap.Error(err),
		)
	}
}

func (w *BookingWorkflow) invalidate(keys ...string) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Invalidate(keys...); err != nil {
		w.logger.Warn("failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func participantIDs(booking *model.Booking) []uint {
	ids := make([]uint, 0, len(booking.Participants))
	for i := range booking.Participants {
		ids = append(ids, booking.Participants[i].ID)
	}
	return ids
}
