package config

import (
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		Listen          string `toml:"listen"`
		LogLevel        string `toml:"log_level"`
		RefreshEverySec int    `toml:"refresh_every_sec"`
		PruneEveryMin   int    `toml:"prune_every_min"`
	} `toml:"app"`

	Quote struct {
		GzURL      string `toml:"gz_url"`
		F10URL     string `toml:"f10_url"`
		SearchURL  string `toml:"search_url"`
		TimeoutSec int    `toml:"timeout_sec"`
	} `toml:"quote"`

	Storage struct {
		Driver string `toml:"driver"` // sqlite | postgres | memory

		SQLite struct {
			Path string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			DSN string `toml:"dsn"`
		} `toml:"postgres"`
	} `toml:"storage"`

	Redis struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
		Prefix  string `toml:"prefix"`
		Channel string `toml:"channel"`
		TTLSec  int    `toml:"ttl_sec"`
	} `toml:"redis"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.App.Listen) == "" {
		cfg.App.Listen = ":8390"
	}
	if strings.TrimSpace(cfg.App.LogLevel) == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.RefreshEverySec <= 0 {
		cfg.App.RefreshEverySec = 60
	}
	if cfg.App.PruneEveryMin <= 0 {
		cfg.App.PruneEveryMin = 60
	}
	if cfg.Quote.TimeoutSec <= 0 {
		cfg.Quote.TimeoutSec = 10
	}
	if strings.TrimSpace(cfg.Storage.Driver) == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Driver == "sqlite" && strings.TrimSpace(cfg.Storage.SQLite.Path) == "" {
		cfg.Storage.SQLite.Path = "data/fundtrack.db"
	}
	if cfg.Redis.TTLSec <= 0 {
		cfg.Redis.TTLSec = 300
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "sqlite", "postgres", "memory":
	default:
		return errors.New("storage.driver must be sqlite, postgres or memory")
	}
	if cfg.Storage.Driver == "postgres" && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but driver is postgres")
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	return nil
}
