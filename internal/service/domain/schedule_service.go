package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/repository"
)

// TimetableHours is the default width of the hour-by-hour grid.
const TimetableHours = 24

// TableStatus pairs a table with the game currently in progress on it,
// if any.
type TableStatus struct {
	Table   model.MahjongTable `json:"table"`
	Current *model.Booking     `json:"current,omitempty"`
}

// StoreStatus is the live occupancy dashboard for one store.
type StoreStatus struct {
	Store  model.Store   `json:"store"`
	Now    time.Time     `json:"now"`
	Tables []TableStatus `json:"tables"`
}

// TimetableRow holds, per hourly slot, the bookings occupying one table.
// A nil Table marks the bucket for confirmed bookings that have not been
// assigned a table yet.
type TimetableRow struct {
	Table    *model.MahjongTable `json:"table,omitempty"`
	Bookings [][]*model.Booking  `json:"bookings"`
}

// Timetable is the table-by-hour grid for one store. A booking occupies
// every hourly bucket [slot, slot+1h) that its interval overlaps.
type Timetable struct {
	Store model.Store    `json:"store"`
	From  time.Time      `json:"from"`
	Slots []time.Time    `json:"slots"`
	Rows  []TimetableRow `json:"rows"`
}

type ScheduleService interface {
	StoreStatus(storeID uint) (*StoreStatus, error)
	// Timetable builds the grid starting from the top of the hour
	// containing `from`, spanning `hours` hourly slots.
	Timetable(storeID uint, from time.Time, hours int) (*Timetable, error)
}

type scheduleService struct {
	db       *gorm.DB
	stores   repository.StoreRepo
	bookings repository.BookingRepo

	now func() time.Time
}

var _ ScheduleService = (*scheduleService)(nil)

func NewScheduleService(db *gorm.DB, stores repository.StoreRepo, bookings repository.BookingRepo) *scheduleService {
	return &scheduleService{
		db:       db,
		stores:   stores,
		bookings: bookings,
		now:      time.Now,
	}
}

func (s *scheduleService) StoreStatus(storeID uint) (*StoreStatus, error) {
	store, err := s.stores.GetByID(storeID)
	if err != nil {
		return nil, notFound(err)
	}
	now := s.now()
	status := &StoreStatus{
		Store: *store,
		Now:   now,
	}
	for i := range store.Tables {
		entry := TableStatus{Table: store.Tables[i]}
		current, err := s.bookings.CurrentOnTable(store.Tables[i].ID, now)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		entry.Current = current
		status.Tables = append(status.Tables, entry)
	}
	return status, nil
}

func (s *scheduleService) Timetable(storeID uint, from time.Time, hours int) (*Timetable, error) {
	store, err := s.stores.GetByID(storeID)
	if err != nil {
		return nil, notFound(err)
	}
	if from.IsZero() {
		from = s.now()
	}
	if hours <= 0 {
		hours = TimetableHours
	}
	from = from.Truncate(time.Hour)
	to := from.Add(time.Duration(hours) * time.Hour)

	bookings, err := s.bookings.ListScheduledInRange(storeID, from, to)
	if err != nil {
		return nil, err
	}

	grid := &Timetable{
		Store: *store,
		From:  from,
	}
	for i := 0; i < hours; i++ {
		grid.Slots = append(grid.Slots, from.Add(time.Duration(i)*time.Hour))
	}

	byTable := make(map[uint][]*model.Booking)
	var unassigned []*model.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.TableID == nil {
			unassigned = append(unassigned, b)
		} else {
			byTable[*b.TableID] = append(byTable[*b.TableID], b)
		}
	}

	for i := range store.Tables {
		table := &store.Tables[i]
		grid.Rows = append(grid.Rows, bucketRow(table, byTable[table.ID], grid.Slots))
	}
	grid.Rows = append(grid.Rows, bucketRow(nil, unassigned, grid.Slots))
	return grid, nil
}

func bucketRow(table *model.MahjongTable, bookings []*model.Booking, slots []time.Time) TimetableRow {
	row := TimetableRow{
		Table:    table,
		Bookings: make([][]*model.Booking, len(slots)),
	}
	for i, slot := range slots {
		slotEnd := slot.Add(time.Hour)
		for _, b := range bookings {
			if b.Overlaps(slot, slotEnd) {
				row.Bookings[i] = append(row.Bookings[i], b)
			}
		}
	}
	return row
}
