package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads so defaults are exercised; t.Setenv
// restores the originals when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
		"MAX_HEADER_BYTES", "GIN_MODE", "LOG_LEVEL", "LOG_PRETTY", "SWAGGER_ENABLED",
		"API_BASE_PATH", "STORE_DRIVER", "BLOB_API_URL", "BLOB_READ_WRITE_TOKEN",
		"BLOB_PATHNAME", "DB_PATH", "RATE_RPS", "RATE_BURST", "CORS_ALLOWED_ORIGINS",
		"ENABLE_HSTS", "HSTS_MAX_AGE", "IDEMPOTENCY_TTL", "OTEL_ENABLED",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLOB_READ_WRITE_TOKEN", "tok")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.APIBasePath != "/" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.StoreDriver != StoreDriverBlob {
		t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
	}
	if cfg.Blob.Pathname != "movies.json" {
		t.Fatalf("Blob.Pathname = %q", cfg.Blob.Pathname)
	}
	if cfg.LogLevel != "info" || cfg.GinMode != "release" {
		t.Fatalf("logging defaults: %q %q", cfg.LogLevel, cfg.GinMode)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate defaults: %v %v", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("IdempotencyTTL = %v", cfg.IdempotencyTTL)
	}
	if cfg.OTEL.Enabled {
		t.Fatalf("OTEL must be disabled by default")
	}
}

func TestLoad_BlobDriverRequiresToken(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "BLOB_READ_WRITE_TOKEN") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_SQLiteDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "watchlist.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StoreDriverSQLite || cfg.DBPath != "watchlist.db" {
		t.Fatalf("sqlite config: %q %q", cfg.StoreDriver, cfg.DBPath)
	}
}

func TestLoad_UnknownDriverRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "s3")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"negative rps", map[string]string{"RATE_RPS": "-1"}},
		{"zero burst", map[string]string{"RATE_BURST": "0"}},
		{"sample ratio out of range", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("BLOB_READ_WRITE_TOKEN", "tok")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_Normalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLOB_READ_WRITE_TOKEN", "tok")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("API_BASE_PATH", "api/v1/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LOG_LEVEL not normalized: %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GIN_MODE not coerced: %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH not normalized: %q", cfg.APIBasePath)
	}
}

func TestHelpers(t *testing.T) {
	t.Setenv("X_STR", "")
	if getenv("X_STR", "d") != "d" {
		t.Fatalf("empty env must fall back to default")
	}
	t.Setenv("X_DUR", "250ms")
	if getdur("X_DUR", time.Second) != 250*time.Millisecond {
		t.Fatalf("duration parsing failed")
	}
	t.Setenv("X_BOOL", "on")
	if !getbool("X_BOOL", false) {
		t.Fatalf("'on' must be truthy")
	}
	if got := splitCSV(" a, b ,,c "); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("splitCSV = %#v", got)
	}
}
