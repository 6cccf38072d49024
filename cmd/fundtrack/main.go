package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"fundtrack/internal/application/port"
	appsvc "fundtrack/internal/application/service"
	"fundtrack/internal/application/usecase/tracker"
	"fundtrack/internal/infrastructure/config"
	"fundtrack/internal/infrastructure/logger"
	"fundtrack/internal/infrastructure/quote/eastmoney"
	"fundtrack/internal/infrastructure/storage/memory"
	"fundtrack/internal/infrastructure/storage/postgres"
	rediscache "fundtrack/internal/infrastructure/storage/redis"
	"fundtrack/internal/infrastructure/storage/sqlite"
	"fundtrack/internal/interfaces/httpapi"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open store failed")
	}
	defer store.Close()

	var cache port.EstimateCache
	if cfg.Redis.Enabled {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
		cache = rediscache.New(rdb, cfg.Redis.Prefix, cfg.Redis.Channel, time.Duration(cfg.Redis.TTLSec)*time.Second)
		defer cache.Close()
	}

	gateway := eastmoney.New(
		eastmoney.WithBaseURLs(cfg.Quote.GzURL, cfg.Quote.F10URL, cfg.Quote.SearchURL),
		eastmoney.WithTimeout(time.Duration(cfg.Quote.TimeoutSec)*time.Second),
	)

	intraday := appsvc.NewIntradayService(store)
	hub := httpapi.NewHub()
	defer hub.Close()

	trk := tracker.NewService(tracker.ServiceDeps{
		Store:        store,
		Gateway:      gateway,
		Intraday:     intraday,
		Cache:        cache,
		Broadcast:    hub,
		RefreshEvery: time.Duration(cfg.App.RefreshEverySec) * time.Second,
		PruneEvery:   time.Duration(cfg.App.PruneEveryMin) * time.Minute,
	})

	server := httpapi.NewServer(httpapi.Deps{
		Portfolio: appsvc.NewPortfolioService(store),
		Watchlist: appsvc.NewWatchlistService(store),
		Intraday:  intraday,
		Export:    appsvc.NewExportService(store),
		Tracker:   trk,
		Gateway:   gateway,
		Hub:       hub,
	})

	log.Info().
		Str("config", *configPath).
		Str("listen", cfg.App.Listen).
		Str("driver", cfg.Storage.Driver).
		Int("refresh_every_sec", cfg.App.RefreshEverySec).
		Msg("fundtrack started")

	go func() {
		if err := trk.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("tracker exited")
		}
	}()

	if err := server.Run(ctx, cfg.App.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("http server exited")
	}
}

func openStore(cfg *config.Config) (port.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.New(cfg.Storage.SQLite.Path)
	case "postgres":
		return postgres.New(cfg.Storage.Postgres.DSN)
	case "memory":
		return memory.New(), nil
	default:
		return nil, errors.New("unknown storage driver " + cfg.Storage.Driver)
	}
}
