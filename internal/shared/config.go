package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	RedisAddr   string // empty = embedded in-process redis
	RedisDB     int
	RedisPass   string
	SeedFile    string // empty = embedded sample data
	CMSBase     string
	CMSKey      string
	Workers     int
	SubmitRPS   float64
	SubmitBurst int
	CacheTTL    time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		SeedFile:    env("SEED_FILE", ""),
		CMSBase:     env("CMS_BASE_URL", "https://data.cms.gov/provider-data/api/1"),
		CMSKey:      env("CMS_API_KEY", ""),
		Workers:     atoi("IMPORT_WORKERS", 8),
		SubmitRPS:   float64(atoi("SUBMIT_RPS", 10)),
		SubmitBurst: atoi("SUBMIT_BURST", 20),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
