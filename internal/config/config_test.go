package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
http_addr: ":9090"
db_driver: postgres
db_dsn: postgres://db/quiz
cors_origins:
  - http://localhost:5173
redis:
  addr: localhost:6379
  ttl: 5m
dev_mode: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://db/quiz" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != "5m" {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if !cfg.DevMode {
		t.Fatal("dev_mode not read")
	}

	// Environment wins over the file.
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEV_MODE", "false")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want env override", cfg.HTTPAddr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.DevMode {
		t.Error("DEV_MODE=false not applied")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file: %v", err)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("5m", time.Minute); got != 5*time.Minute {
		t.Errorf("TTLDuration(5m) = %v", got)
	}
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Errorf("TTLDuration(empty) = %v", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Errorf("TTLDuration(bogus) = %v", got)
	}
}
