package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	server "bedside/internal/adapters/http_server"
	"bedside/internal/adapters/observability"
	redisad "bedside/internal/adapters/redis"
	"bedside/internal/app"
	"bedside/internal/shared"
	"bedside/internal/storage/memory"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// store
	seed, err := memory.LoadSeed(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("seed load failed")
	}
	store, err := memory.New(seed)
	if err != nil {
		log.Fatal().Err(err).Msg("seed rejected")
	}
	log.Info().
		Int("facilities", len(seed.Facilities)).
		Int("clinicians", len(seed.Clinicians)).
		Int("reviews", len(seed.Reviews)).
		Msg("directory seeded")

	// cache: external redis when configured, embedded otherwise so all
	// state stays in-process
	var cache *redisad.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	} else {
		var stop func()
		cache, stop, err = redisad.NewEmbedded()
		if err != nil {
			log.Fatal().Err(err).Msg("embedded redis failed")
		}
		defer stop()
		log.Info().Msg("using embedded cache")
	}

	// deps
	q := app.NewQueryService(store, cache, cfg.CacheTTL)
	in := app.NewIntakeService(store, cache)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:           q,
		I:           in,
		SubmitRPS:   cfg.SubmitRPS,
		SubmitBurst: cfg.SubmitBurst,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
