package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ``))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Listen != ":8390" {
		t.Errorf("listen default: got %q", cfg.App.Listen)
	}
	if cfg.App.LogLevel != "info" {
		t.Errorf("log level default: got %q", cfg.App.LogLevel)
	}
	if cfg.App.RefreshEverySec != 60 {
		t.Errorf("refresh default: got %d", cfg.App.RefreshEverySec)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLite.Path == "" {
		t.Errorf("storage defaults: got %q %q", cfg.Storage.Driver, cfg.Storage.SQLite.Path)
	}
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[app]
listen = ":9000"
refresh_every_sec = 30

[storage]
driver = "postgres"
[storage.postgres]
dsn = "postgres://localhost/fundtrack"

[redis]
enabled = true
addr = "localhost:6379"
prefix = "ft"
ttl_sec = 120
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Listen != ":9000" || cfg.App.RefreshEverySec != 30 {
		t.Errorf("app section mismatch: %+v", cfg.App)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.Postgres.DSN == "" {
		t.Errorf("storage section mismatch: %+v", cfg.Storage)
	}
	if !cfg.Redis.Enabled || cfg.Redis.TTLSec != 120 {
		t.Errorf("redis section mismatch: %+v", cfg.Redis)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown driver", "[storage]\ndriver = \"mysql\"\n", "storage.driver"},
		{"postgres without dsn", "[storage]\ndriver = \"postgres\"\n", "storage.postgres.dsn"},
		{"redis without addr", "[redis]\nenabled = true\n", "redis.addr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
