package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
)

type BookingRepo interface {
	WithTx(tx *gorm.DB) BookingRepo

	Create(booking *model.Booking) error
	GetByID(id uint) (*model.Booking, error)
	// GetByIDLocked fetches the row under FOR UPDATE (postgres) so that
	// concurrent joins and table assignments serialize on the booking.
	GetByIDLocked(id uint) (*model.Booking, error)
	Delete(booking *model.Booking) error

	AppendParticipant(booking *model.Booking, user *model.User) error
	RemoveParticipant(booking *model.Booking, user *model.User) error
	HasParticipant(bookingID, userID uint) (bool, error)
	// IncrementRosterIfOpen bumps participant_count only while the booking
	// is still PENDING with a free seat; returns the rows affected.
	IncrementRosterIfOpen(id uint) (int64, error)
	DecrementRoster(id uint) error
	// CASStatus transitions status from -> to and reports whether the row
	// was still in the expected state.
	CASStatus(id uint, from, to model.BookingStatus) (bool, error)
	SetTable(id uint, tableID uint) error

	ListPending(now time.Time) ([]model.Booking, error)
	ListForUser(userID uint, statuses []model.BookingStatus, endAfter *time.Time) ([]model.Booking, error)
	CountLivePendingByCreator(creatorID uint, now time.Time) (int64, error)
	CountConfirmedOverlapping(userID uint, start, end time.Time) (int64, error)
	ListActiveOnTable(tableID uint, excludeID uint) ([]model.Booking, error)
	CurrentOnTable(tableID uint, now time.Time) (*model.Booking, error)
	ListScheduledInRange(storeID uint, from, to time.Time) ([]model.Booking, error)

	ExpireStalePending(cutoff time.Time) (int64, error)
	DeleteDeadPending(now time.Time) (int64, error)
	CompleteFinished(now time.Time) (int64, error)
}

type bookingRepoGorm struct {
	db *gorm.DB
}

var _ BookingRepo = (*bookingRepoGorm)(nil)

func NewBookingRepoGorm(db *gorm.DB) *bookingRepoGorm {
	return &bookingRepoGorm{
		db: db,
	}
}

func (r *bookingRepoGorm) WithTx(tx *gorm.DB) BookingRepo {
	return &bookingRepoGorm{
		db: tx,
	}
}

func (r *bookingRepoGorm) Create(booking *model.Booking) error {
	return r.db.Create(booking).Error
}

func (r *bookingRepoGorm) GetByID(id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.Preload("Participants").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepoGorm) GetByIDLocked(id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := WithRowLock(r.db).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepoGorm) Delete(booking *model.Booking) error {
	// clear the join table first, then the row itself
	if err := r.db.Model(booking).Association("Participants").Clear(); err != nil {
		return err
	}
	return r.db.Delete(booking).Error
}

func (r *bookingRepoGorm) AppendParticipant(booking *model.Booking, user *model.User) error {
	return r.db.Model(booking).Association("Participants").Append(user)
}

func (r *bookingRepoGorm) RemoveParticipant(booking *model.Booking, user *model.User) error {
	return r.db.Model(booking).Association("Participants").Delete(user)
}

func (r *bookingRepoGorm) HasParticipant(bookingID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("booking_participants").
		Where("booking_id = ? AND user_id = ?", bookingID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *bookingRepoGorm) IncrementRosterIfOpen(id uint) (int64, error) {
	res := r.db.Model(&model.Booking{}).
		Where("id = ? AND status = ? AND participant_count < ?", id, model.StatusPending, model.MaxParticipants).
		Update("participant_count", gorm.Expr("participant_count + 1"))
	return res.RowsAffected, res.Error
}

func (r *bookingRepoGorm) DecrementRoster(id uint) error {
	return r.db.Model(&model.Booking{}).
		Where("id = ? AND participant_count > 0", id).
		Update("participant_count", gorm.Expr("participant_count - 1")).Error
}

func (r *bookingRepoGorm) CASStatus(id uint, from, to model.BookingStatus) (bool, error) {
	res := r.db.Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *bookingRepoGorm) SetTable(id uint, tableID uint) error {
	return r.db.Model(&model.Booking{}).
		Where("id = ?", id).
		Update("table_id", tableID).Error
}

func (r *bookingRepoGorm) ListPending(now time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.Preload("Participants").
		Where("status = ? AND end_time >= ?", model.StatusPending, now).
		Order("start_time").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepoGorm) ListForUser(userID uint, statuses []model.BookingStatus, endAfter *time.Time) ([]model.Booking, error) {
	query := r.db.Preload("Participants").
		Joins("JOIN booking_participants bp ON bp.booking_id = bookings.id").
		Where("bp.user_id = ?", userID).
		Where("bookings.status IN ?", statuses)
	if endAfter != nil {
		query = query.Where("bookings.end_time >= ?", *endAfter)
	}
	var bookings []model.Booking
	err := query.Order("bookings.start_time").Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepoGorm) CountLivePendingByCreator(creatorID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Booking{}).
		Where("creator_id = ? AND status = ? AND end_time >= ?", creatorID, model.StatusPending, now).
		Count(&count).Error
	return count, err
}

func (r *bookingRepoGorm) CountConfirmedOverlapping(userID uint, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Booking{}).
		Joins("JOIN booking_participants bp ON bp.booking_id = bookings.id").
		Where("bp.user_id = ?", userID).
		Where("bookings.status = ?", model.StatusConfirmed).
		Where("bookings.start_time < ? AND bookings.end_time > ?", end, start).
		Count(&count).Error
	return count, err
}

func (r *bookingRepoGorm) ListActiveOnTable(tableID uint, excludeID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.
		Where("table_id = ? AND id <> ?", tableID, excludeID).
		Where("status NOT IN ?", []model.BookingStatus{model.StatusCanceled, model.StatusExpired}).
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepoGorm) CurrentOnTable(tableID uint, now time.Time) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.Preload("Participants").
		Where("table_id = ? AND status = ?", tableID, model.StatusConfirmed).
		Where("start_time <= ? AND end_time > ?", now, now).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepoGorm) ListScheduledInRange(storeID uint, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.Preload("Participants").
		Where("store_id = ?", storeID).
		Where("status IN ?", []model.BookingStatus{model.StatusConfirmed, model.StatusCompleted}).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepoGorm) ExpireStalePending(cutoff time.Time) (int64, error) {
	res := r.db.Model(&model.Booking{}).
		Where("status = ? AND created_at < ?", model.StatusPending, cutoff).
		Update("status", model.StatusExpired)
	return res.RowsAffected, res.Error
}

func (r *bookingRepoGorm) DeleteDeadPending(now time.Time) (int64, error) {
	var ids []uint
	err := r.db.Model(&model.Booking{}).
		Where("status = ? AND end_time < ?", model.StatusPending, now).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.db.Exec("DELETE FROM booking_participants WHERE booking_id IN ?", ids).Error; err != nil {
		return 0, err
	}
	res := r.db.Delete(&model.Booking{}, ids)
	return res.RowsAffected, res.Error
}

func (r *bookingRepoGorm) CompleteFinished(now time.Time) (int64, error) {
	res := r.db.Model(&model.Booking{}).
		Where("status = ? AND end_time <= ?", model.StatusConfirmed, now).
		Update("status", model.StatusCompleted)
	return res.RowsAffected, res.Error
}
