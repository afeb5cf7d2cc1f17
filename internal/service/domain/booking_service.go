package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/repository"
	"github.com/qs-lzh/mahjong-booking/internal/service"
)

const (
	// maxLivePending caps how many open bookings one user may have created.
	maxLivePending = 2
	// leaveCutoff is how long before start a confirmed booking can still
	// be left.
	leaveCutoff = time.Hour
	// walkInGames is the default session count for a staff walk-in booking.
	walkInGames = 4
)

// LeaveResult reports what happened to the booking after a participant left.
type LeaveResult struct {
	// Deleted is set when the last participant left a pending booking and
	// the record was removed entirely.
	Deleted bool
	// Reopened is set when a confirmed booking reverted to pending.
	Reopened bool
	Booking  *model.Booking
}

type BookingService interface {
	Create(creatorID, storeID uint, start, end time.Time, numGames int) (*model.Booking, error)
	Join(userID, bookingID uint) (booking *model.Booking, confirmed bool, err error)
	Leave(userID, bookingID uint) (*LeaveResult, error)
	AssignTable(bookingID, tableID uint) (*model.Booking, error)
	Cancel(bookingID uint) (*model.Booking, error)
	WalkIn(staffID, tableID uint, numGames int) (*model.Booking, error)

	GetBooking(id uint) (*model.Booking, error)
	PendingBookings() ([]model.Booking, error)
	MyBookings(userID uint) ([]model.Booking, error)
	MyGames(userID uint) ([]model.Booking, map[model.GamePhase]int, error)
}

type bookingService struct {
	db       *gorm.DB
	bookings repository.BookingRepo
	users    repository.UserRepo
	stores   repository.StoreRepo
	tables   repository.TableRepo

	now func() time.Time
}

var _ BookingService = (*bookingService)(nil)

func NewBookingService(db *gorm.DB, bookings repository.BookingRepo, users repository.UserRepo,
	stores repository.StoreRepo, tables repository.TableRepo) *bookingService {
	return &bookingService{
		db:       db,
		bookings: bookings,
		users:    users,
		stores:   stores,
		tables:   tables,
		now:      time.Now,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	return err
}

func (s *bookingService) Create(creatorID, storeID uint, start, end time.Time, numGames int) (*model.Booking, error) {
	end, numGames, err := NormalizeSchedule(start, end, numGames)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)

		creator, err := s.users.WithTx(tx).GetByID(creatorID)
		if err != nil {
			return notFound(err)
		}
		if _, err := s.stores.WithTx(tx).GetByID(storeID); err != nil {
			return notFound(err)
		}

		now := s.now()
		live, err := bookings.CountLivePendingByCreator(creatorID, now)
		if err != nil {
			return err
		}
		if live >= maxLivePending {
			return service.ErrPendingLimit
		}
		overlapping, err := bookings.CountConfirmedOverlapping(creatorID, start, end)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return service.ErrOverlapSelf
		}

		booking = &model.Booking{
			CreatorID:        creatorID,
			StoreID:          storeID,
			StartTime:        start,
			EndTime:          end,
			NumGames:         numGames,
			ParticipantCount: 1,
			Status:           model.StatusPending,
		}
		if err := bookings.Create(booking); err != nil {
			return err
		}
		// the creator always takes the first seat
		return bookings.AppendParticipant(booking, creator)
	})
	if err != nil {
		return nil, err
	}
	return s.GetBooking(booking.ID)
}

func (s *bookingService) Join(userID, bookingID uint) (*model.Booking, bool, error) {
	var confirmed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)

		user, err := s.users.WithTx(tx).GetByID(userID)
		if err != nil {
			return notFound(err)
		}
		booking, err := bookings.GetByIDLocked(bookingID)
		if err != nil {
			return notFound(err)
		}

		joined, err := bookings.HasParticipant(booking.ID, userID)
		if err != nil {
			return err
		}
		if joined {
			return service.ErrAlreadyJoined
		}
		if booking.ParticipantCount >= model.MaxParticipants {
			return service.ErrRosterFull
		}
		if booking.Status != model.StatusPending {
			return service.ErrBookingClosed
		}

		// conditional update so two concurrent joins can never both take
		// the last seat
		rows, err := bookings.IncrementRosterIfOpen(booking.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return service.ErrRosterFull
		}
		if err := bookings.AppendParticipant(booking, user); err != nil {
			return err
		}

		if booking.ParticipantCount+1 == model.MaxParticipants {
			ok, err := bookings.CASStatus(booking.ID, model.StatusPending, model.StatusConfirmed)
			if err != nil {
				return err
			}
			if !ok {
				return service.ErrBookingClosed
			}
			confirmed = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	booking, err := s.GetBooking(bookingID)
	return booking, confirmed, err
}

func (s *bookingService) Leave(userID, bookingID uint) (*LeaveResult, error) {
	result := &LeaveResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)

		user, err := s.users.WithTx(tx).GetByID(userID)
		if err != nil {
			return notFound(err)
		}
		booking, err := bookings.GetByIDLocked(bookingID)
		if err != nil {
			return notFound(err)
		}

		joined, err := bookings.HasParticipant(booking.ID, userID)
		if err != nil {
			return err
		}
		if !joined {
			return service.ErrNotParticipant
		}

		switch booking.Status {
		case model.StatusPending:
			if err := bookings.RemoveParticipant(booking, user); err != nil {
				return err
			}
			if booking.ParticipantCount <= 1 {
				// nobody left: drop the record instead of keeping an
				// orphaned empty booking
				result.Deleted = true
				return bookings.Delete(booking)
			}
			return bookings.DecrementRoster(booking.ID)

		case model.StatusConfirmed:
			if !s.now().Before(booking.StartTime.Add(-leaveCutoff)) {
				return service.ErrTooCloseToStart
			}
			if err := bookings.RemoveParticipant(booking, user); err != nil {
				return err
			}
			if err := bookings.DecrementRoster(booking.ID); err != nil {
				return err
			}
			// reopen the seat for others
			ok, err := bookings.CASStatus(booking.ID, model.StatusConfirmed, model.StatusPending)
			if err != nil {
				return err
			}
			if !ok {
				return service.ErrBookingClosed
			}
			result.Reopened = true
			return nil

		default:
			return service.ErrBookingClosed
		}
	})
	if err != nil {
		return nil, err
	}
	if !result.Deleted {
		result.Booking, err = s.GetBooking(bookingID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *bookingService) AssignTable(bookingID, tableID uint) (*model.Booking, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)

		booking, err := bookings.GetByIDLocked(bookingID)
		if err != nil {
			return notFound(err)
		}
		if booking.Status.IsTerminal() {
			return service.ErrBookingClosed
		}
		table, err := s.tables.WithTx(tx).GetByID(tableID)
		if err != nil {
			return notFound(err)
		}
		if table.StoreID != booking.StoreID {
			return service.ErrWrongStore
		}

		others, err := bookings.ListActiveOnTable(tableID, booking.ID)
		if err != nil {
			return err
		}
		for i := range others {
			if others[i].Overlaps(booking.StartTime, booking.EndTime) {
				return service.ErrTableConflict
			}
		}
		return bookings.SetTable(booking.ID, tableID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetBooking(bookingID)
}

func (s *bookingService) Cancel(bookingID uint) (*model.Booking, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)

		booking, err := bookings.GetByIDLocked(bookingID)
		if err != nil {
			return notFound(err)
		}
		if booking.Status.IsTerminal() {
			return service.ErrBookingClosed
		}
		ok, err := bookings.CASStatus(booking.ID, booking.Status, model.StatusCanceled)
		if err != nil {
			return err
		}
		if !ok {
			return service.ErrBookingClosed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetBooking(bookingID)
}

// WalkIn creates a confirmed booking starting now for customers who show up
// at the counter without a reservation. Staff-only; the roster is not
// tracked for walk-ins.
func (s *bookingService) WalkIn(staffID, tableID uint, numGames int) (*model.Booking, error) {
	if numGames <= 0 {
		numGames = walkInGames
	}
	var booking *model.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)

		if _, err := s.users.WithTx(tx).GetByID(staffID); err != nil {
			return notFound(err)
		}
		table, err := s.tables.WithTx(tx).GetByID(tableID)
		if err != nil {
			return notFound(err)
		}

		start := s.now()
		end, numGames, err := NormalizeSchedule(start, time.Time{}, numGames)
		if err != nil {
			return err
		}

		others, err := bookings.ListActiveOnTable(tableID, 0)
		if err != nil {
			return err
		}
		for i := range others {
			if others[i].Overlaps(start, end) {
				return service.ErrTableOccupied
			}
		}

		booking = &model.Booking{
			CreatorID: staffID,
			StoreID:   table.StoreID,
			TableID:   &table.ID,
			StartTime: start,
			EndTime:   end,
			NumGames:  numGames,
			Status:    model.StatusConfirmed,
		}
		return bookings.Create(booking)
	})
	if err != nil {
		return nil, err
	}
	return s.GetBooking(booking.ID)
}

func (s *bookingService) GetBooking(id uint) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return booking, nil
}

func (s *bookingService) PendingBookings() ([]model.Booking, error) {
	return s.bookings.ListPending(s.now())
}

func (s *bookingService) MyBookings(userID uint) ([]model.Booking, error) {
	now := s.now()
	return s.bookings.ListForUser(userID,
		[]model.BookingStatus{model.StatusPending, model.StatusConfirmed}, &now)
}

func (s *bookingService) MyGames(userID uint) ([]model.Booking, map[model.GamePhase]int, error) {
	games, err := s.bookings.ListForUser(userID,
		[]model.BookingStatus{model.StatusConfirmed, model.StatusCompleted}, nil)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	phases := map[model.GamePhase]int{
		model.PhaseNotStarted: 0,
		model.PhaseInProgress: 0,
		model.PhaseCompleted:  0,
	}
	for i := range games {
		phases[games[i].Phase(now)]++
	}
	return games, phases, nil
}
