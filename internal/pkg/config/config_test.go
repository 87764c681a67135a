package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.DB.Driver != DriverMongo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWT.AccessTTL != time.Hour || cfg.JWT.RefreshTTL != 168*time.Hour {
		t.Fatalf("unexpected token TTLs: %+v", cfg.JWT)
	}
	if cfg.Storage.Driver != DriverLocal || cfg.Storage.MaxFileSize != 5<<20 || cfg.Storage.BaseURL != "/uploads" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.Window != 15*time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.SearchEnabled() || cfg.Redis.Enabled {
		t.Fatalf("optional backends should be off by default")
	}
	if !cfg.Pretty() {
		t.Fatalf("development should default to pretty logs")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"ENV":               "production",
		"DB_DRIVER":         "memory",
		"ELASTIC_ADDRESSES": "http://es1:9200,http://es2:9200",
		"CORS_ORIGINS":      "https://a.example,https://b.example",
		"JWT_ACCESS_TTL":    "15m",
		"LOG_PRETTY":        "true",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Elastic.Addresses) != 2 || !cfg.SearchEnabled() {
		t.Fatalf("unexpected elastic addresses: %v", cfg.Elastic.Addresses)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.JWT.AccessTTL != 15*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.Pretty() {
		t.Fatalf("LOG_PRETTY should override production default")
	}
}

func TestLoadFrom_RequiresSecret(t *testing.T) {
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadFrom_RejectsBadDrivers(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"DB_DRIVER":      "postgres",
		"STORAGE_DRIVER": "minio",
	}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"DB_DRIVER", "MINIO_ENDPOINT"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadFrom_Bootstrap(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"ADMIN_EMAIL":    "admin@cms.com",
		"ADMIN_PASSWORD": "Admin123!",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Bootstrap.Enabled() || cfg.Bootstrap.AdminUsername != "admin" {
		t.Fatalf("unexpected bootstrap config: %+v", cfg.Bootstrap)
	}

	_, err = LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":  "s3cret",
		"ADMIN_EMAIL": "admin@cms.com",
	}))
	if err == nil || !strings.Contains(err.Error(), "ADMIN_PASSWORD") {
		t.Fatalf("expected missing password error, got %v", err)
	}
}
