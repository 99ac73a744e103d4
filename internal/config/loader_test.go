package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := parse(envFrom(map[string]string{"BOOKING_NOTIFY_EMAIL": "admin@example.com"}))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if cfg.HTTPPort != 8080 || cfg.Addr() != ":8080" {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.Store != StoreSQLite || cfg.SQLitePath != "booking.db" {
		t.Fatalf("unexpected store defaults: %q %q", cfg.Store, cfg.SQLitePath)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisPrefix != "booking:" {
		t.Fatalf("unexpected redis defaults: %q %q", cfg.RedisAddr, cfg.RedisPrefix)
	}
	if cfg.NATSURL != "" || cfg.NATSSubjectPrefix != "booking" || cfg.WebhookURL != "" {
		t.Fatalf("unexpected notification defaults: %+v", cfg)
	}
	if cfg.NotifyTimeout != 5*time.Second || cfg.CacheTTL != 0 {
		t.Fatalf("unexpected durations: notify=%v cache=%v", cfg.NotifyTimeout, cfg.CacheTTL)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "json" {
		t.Fatalf("unexpected log defaults: %v %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := parse(envFrom(map[string]string{
		"BOOKING_HTTP_PORT":           "9090",
		"BOOKING_STORE":               "Redis",
		"BOOKING_REDIS_ADDR":          "cache:6380",
		"BOOKING_REDIS_DB":            "2",
		"BOOKING_NATS_URL":            "nats://bus:4222",
		"BOOKING_NATS_SUBJECT_PREFIX": "study",
		"BOOKING_WEBHOOK_URL":         "https://hooks.example.com/booking",
		"BOOKING_NOTIFY_EMAIL":        "admin@example.com",
		"BOOKING_NOTIFY_TIMEOUT":      "2s",
		"BOOKING_CACHE_TTL":           "30s",
		"BOOKING_CONFIRM_OWNERS":      "true",
		"BOOKING_ADMIN_TOKEN":         "secret",
		"BOOKING_LOG_LEVEL":           "debug",
		"BOOKING_LOG_FORMAT":          "TEXT",
	}))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if cfg.HTTPPort != 9090 || cfg.Store != StoreRedis || cfg.RedisAddr != "cache:6380" || cfg.RedisDB != 2 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.NATSURL != "nats://bus:4222" || cfg.NATSSubjectPrefix != "study" {
		t.Fatalf("unexpected nats settings: %q %q", cfg.NATSURL, cfg.NATSSubjectPrefix)
	}
	if cfg.NotifyTimeout != 2*time.Second || cfg.CacheTTL != 30*time.Second || !cfg.ConfirmOwners {
		t.Fatalf("unexpected notification settings: %+v", cfg)
	}
	if cfg.AdminToken != "secret" || cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "text" {
		t.Fatalf("unexpected admin/log settings: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing admin inbox",
			env:  map[string]string{},
			want: "missing required environment variables: BOOKING_NOTIFY_EMAIL",
		},
		{
			name: "missing reported before invalid",
			env:  map[string]string{"BOOKING_HTTP_PORT": "http", "BOOKING_LOG_FORMAT": "xml"},
			want: "missing required environment variables: BOOKING_NOTIFY_EMAIL; invalid environment variable values: BOOKING_HTTP_PORT, BOOKING_LOG_FORMAT",
		},
		{
			name: "invalid values collected",
			env: map[string]string{
				"BOOKING_NOTIFY_EMAIL":   "admin@example.com",
				"BOOKING_HTTP_PORT":      "-1",
				"BOOKING_STORE":          "postgres",
				"BOOKING_NOTIFY_TIMEOUT": "0s",
				"BOOKING_LOG_LEVEL":      "loud",
			},
			want: "invalid environment variable values: BOOKING_HTTP_PORT, BOOKING_STORE, BOOKING_NOTIFY_TIMEOUT, BOOKING_LOG_LEVEL",
		},
		{
			name: "malformed inbox",
			env:  map[string]string{"BOOKING_NOTIFY_EMAIL": "admin"},
			want: "invalid environment variable values: BOOKING_NOTIFY_EMAIL",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := parse(envFrom(tc.env))
			if err == nil {
				t.Fatalf("expected error %q, got nil", tc.want)
			}
			if err.Error() != tc.want {
				t.Fatalf("expected error %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.env")
	content := "BOOKING_NOTIFY_EMAIL=file@example.com\nBOOKING_HTTP_PORT=7070\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	// The environment wins over the file.
	t.Setenv("BOOKING_HTTP_PORT", "6060")
	t.Setenv("BOOKING_NOTIFY_EMAIL", "")
	if err := os.Unsetenv("BOOKING_NOTIFY_EMAIL"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cfg.NotifyEmail != "file@example.com" {
		t.Fatalf("expected email from file, got %q", cfg.NotifyEmail)
	}
	if cfg.HTTPPort != 6060 {
		t.Fatalf("expected environment port 6060, got %d", cfg.HTTPPort)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
