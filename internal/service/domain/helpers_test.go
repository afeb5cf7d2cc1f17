package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.MahjongTable{},
		&model.Booking{},
	))
	return db
}

type fixture struct {
	db  *gorm.DB
	svc *bookingService

	store      model.Store
	otherStore model.Store
	tables     []model.MahjongTable
	otherTable model.MahjongTable
	users      []model.User

	base time.Time
}

// newFixture seeds one store with two tables, a second store with one
// table, and five users. The service clock is pinned to f.base.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:   db,
		base: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	f.store = model.Store{Name: "大钟寺", Address: "北京市海淀区大钟寺"}
	require.NoError(t, db.Create(&f.store).Error)
	f.otherStore = model.Store{Name: "五道口", Address: "北京市海淀区五道口购物中心"}
	require.NoError(t, db.Create(&f.otherStore).Error)

	for i := 1; i <= 2; i++ {
		table := model.MahjongTable{StoreID: f.store.ID, TableNumber: fmt.Sprintf("%d", i)}
		require.NoError(t, db.Create(&table).Error)
		f.tables = append(f.tables, table)
	}
	f.otherTable = model.MahjongTable{StoreID: f.otherStore.ID, TableNumber: "1"}
	require.NoError(t, db.Create(&f.otherTable).Error)

	for i := 1; i <= 5; i++ {
		user := model.User{Name: fmt.Sprintf("玩家%d", i)}
		require.NoError(t, db.Create(&user).Error)
		f.users = append(f.users, user)
	}

	f.svc = NewBookingService(db,
		repository.NewBookingRepoGorm(db),
		repository.NewUserRepoGorm(db),
		repository.NewStoreRepoGorm(db),
		repository.NewTableRepoGorm(db),
	)
	f.svc.now = func() time.Time { return f.base }
	return f
}

// confirmedBooking inserts a booking row directly, with the given users as
// participants.
func (f *fixture) confirmedBooking(t *testing.T, storeID uint, tableID *uint,
	start, end time.Time, users ...model.User) *model.Booking {
	t.Helper()
	booking := &model.Booking{
		CreatorID:        f.users[0].ID,
		StoreID:          storeID,
		TableID:          tableID,
		StartTime:        start,
		EndTime:          end,
		NumGames:         1,
		ParticipantCount: len(users),
		Status:           model.StatusConfirmed,
		Participants:     users,
	}
	require.NoError(t, f.db.Create(booking).Error)
	return booking
}
