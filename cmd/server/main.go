package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/config"
	"github.com/qs-lzh/mahjong-booking/internal/app"
	"github.com/qs-lzh/mahjong-booking/internal/cache"
	"github.com/qs-lzh/mahjong-booking/internal/handler"
	"github.com/qs-lzh/mahjong-booking/internal/mq"
	"github.com/qs-lzh/mahjong-booking/internal/service/workflow"
	"github.com/qs-lzh/mahjong-booking/internal/util"
	"github.com/qs-lzh/mahjong-booking/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := util.InitLogger()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	db := mustConnectDB(cfg.DatabaseDSN, logger)

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		redisCache, err = cache.NewRedisCache(cfg.CacheURL)
		if err != nil {
			logger.Fatal("failed to create redis cache", zap.Error(err))
		}
		if err := redisCache.Ping(); err != nil {
			logger.Fatal("failed to reach redis", zap.Error(err))
		}
	} else {
		logger.Warn("CACHE_URL not set, dashboard caching disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events workflow.EventSink
	if cfg.MQURL != "" {
		mqConn, err := mq.NewMQConn(cfg.MQURL)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer mqConn.Close()
		if err := mq.InitQueues(mqConn); err != nil {
			logger.Fatal("failed to declare queues", zap.Error(err))
		}
		events = mq.NewProducer(mqConn)

		notifier := worker.NewNotifier(mqConn, logger)
		if err := notifier.Start(ctx); err != nil {
			logger.Fatal("failed to start notification worker", zap.Error(err))
		}
	} else {
		logger.Warn("RABBIT_MQ_URL not set, booking notifications disabled")
	}

	application := app.New(cfg, db, redisCache, events, logger)
	if err := application.Init(); err != nil {
		logger.Fatal("failed to init application", zap.Error(err))
	}
	defer application.Close()

	// periodic expiration sweep
	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepCron, func() {
		if summary, err := application.SweepWorkflow.Run(); err == nil && summary.Changed() {
			logger.Info("sweep", zap.String("summary", summary.String()))
		}
	}); err != nil {
		logger.Fatal("invalid SWEEP_CRON expression", zap.String("spec", cfg.SweepCron), zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	router := gin.New()
	router.Use(gin.Recovery(), util.RequestLogger(logger))
	handler.RegisterRoutes(router, application)

	logger.Info("mahjong booking service starting", zap.String("addr", cfg.Addr))
	if err := router.Run(cfg.Addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func mustConnectDB(dsn string, logger *zap.Logger) *gorm.DB {
	var db *gorm.DB
	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return db
		}
		logger.Warn("database connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("max", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(5 * time.Second)
		}
	}
	logger.Fatal("failed to connect to database", zap.Error(err))
	return nil
}
