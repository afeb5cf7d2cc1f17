package app

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/config"
	"github.com/qs-lzh/mahjong-booking/internal/cache"
	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/repository"
	"github.com/qs-lzh/mahjong-booking/internal/seed"
	"github.com/qs-lzh/mahjong-booking/internal/service/domain"
	"github.com/qs-lzh/mahjong-booking/internal/service/workflow"
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger

	UserRepo    repository.UserRepo
	StoreRepo   repository.StoreRepo
	TableRepo   repository.TableRepo
	BookingRepo repository.BookingRepo

	BookingService  domain.BookingService
	StoreService    domain.StoreService
	ScheduleService domain.ScheduleService
	SweepService    domain.SweepService

	BookingWorkflow  *workflow.BookingWorkflow
	ScheduleWorkflow *workflow.ScheduleWorkflow
	SweepWorkflow    *workflow.SweepWorkflow
}

// New wires the repositories, services and workflows together. redisCache
// and events may be nil (tests, or deployments without redis/rabbitmq);
// the workflows degrade to plain database access.
func New(config *config.Config, db *gorm.DB, redisCache *cache.RedisCache,
	events workflow.EventSink, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	userRepo := repository.NewUserRepoGorm(db)
	storeRepo := repository.NewStoreRepoGorm(db)
	tableRepo := repository.NewTableRepoGorm(db)
	bookingRepo := repository.NewBookingRepoGorm(db)

	bookingService := domain.NewBookingService(db, bookingRepo, userRepo, storeRepo, tableRepo)
	storeService := domain.NewStoreService(db, storeRepo, tableRepo)
	scheduleService := domain.NewScheduleService(db, storeRepo, bookingRepo)
	sweepService := domain.NewSweepService(db, bookingRepo)

	bookingWorkflow := workflow.NewBookingWorkflow(bookingService, redisCache, events, logger)
	scheduleWorkflow := workflow.NewScheduleWorkflow(scheduleService, redisCache, logger)
	sweepWorkflow := workflow.NewSweepWorkflow(sweepService, redisCache, events, logger)

	return &App{
		Config: config,
		DB:     db,
		Cache:  redisCache,
		Logger: logger,

		UserRepo:    userRepo,
		StoreRepo:   storeRepo,
		TableRepo:   tableRepo,
		BookingRepo: bookingRepo,

		BookingService:  bookingService,
		StoreService:    storeService,
		ScheduleService: scheduleService,
		SweepService:    sweepService,

		BookingWorkflow:  bookingWorkflow,
		ScheduleWorkflow: scheduleWorkflow,
		SweepWorkflow:    sweepWorkflow,
	}
}

// Init migrates the schema and writes the default stores.
func (app *App) Init() error {
	if err := app.DB.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.MahjongTable{},
		&model.Booking{},
	); err != nil {
		return err
	}
	return seed.EnsureDefaults(app.DB)
}

func (app *App) Close() error {
	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
