package config

import (
	"os"

	"github.com/qs-lzh/mahjong-booking/internal/util"
)

type Config struct {
	DatabaseDSN string
	Addr        string
	CacheURL    string
	MQURL       string
	SweepCron   string
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}
	databaseDSN := os.Getenv("DATABASE_DSN")
	addr := os.Getenv("ADDR")
	cacheURL := os.Getenv("CACHE_URL")
	mqURL := os.Getenv("RABBIT_MQ_URL")
	sweepCron := os.Getenv("SWEEP_CRON")
	if sweepCron == "" {
		sweepCron = "@hourly"
	}
	return &Config{
		DatabaseDSN: databaseDSN,
		Addr:        addr,
		CacheURL:    cacheURL,
		MQURL:       mqURL,
		SweepCron:   sweepCron,
	}, nil
}
