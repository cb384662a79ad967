package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/adapters/hbnbapi"
	server "hbnb_web/internal/adapters/http_server"
	"hbnb_web/internal/adapters/observability"
	redisad "hbnb_web/internal/adapters/redis"
	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
	"hbnb_web/internal/shared"
	mysqlrepo "hbnb_web/internal/storage/mysql"
)

func main() {
	// .env is optional
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()

	// journal is optional
	var journal domain.Journal
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect failed")
		}
		defer db.Close()
		j := mysqlrepo.New(db)
		if err := j.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("journal schema failed")
		}
		journal = j
		log.Info().Msg("database connection ok")
	}

	// metrics and the journal listing stay off the public listener
	observability.Serve(cfg.MetricsAddr, server.Internal(observability.MetricsHandler(reg), journal))
	if cfg.MetricsAddr == "" && journal != nil {
		log.Warn().Msg("METRICS_ADDR is empty, journal listing not served")
	}

	// deps
	rdb := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	cache := redisad.NewCache(rdb)

	api := hbnbapi.New(cfg.APIBase, hbnbapi.WithTimeout(cfg.APITimeout), hbnbapi.WithRateLimit(cfg.APIRPS))
	handlers := &server.Handlers{
		Queries:  app.NewQueryService(api, cache, cfg.CacheTTL),
		Places:   app.NewPlaceWorkflow(api, journal, app.ParseCompensation(cfg.Compensation), cfg.BatchLimit),
		Accounts: app.NewAccountService(api),
		Reviews:  app.NewReviewService(api),
		Journal:  journal,
	}

	// http
	sessions := server.Sessions(func(sid string) domain.KV {
		return redisad.NewKV(rdb, sid, cfg.SessionTTL)
	}, cfg.CookieSecure, cfg.SessionTTL)
	srv := server.New(cfg.APITimeout+5*time.Second, sessions)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	if err := srv.MountHandlers(handlers); err != nil {
		log.Fatal().Err(err).Msg("mount handlers failed")
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("api", cfg.APIBase).
			Str("compensation", cfg.Compensation).
			Msg("web listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("web stopped")
}
