// Package config reads BOOKING_* settings from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/study-scheduler/internal/logging"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort int

	Store         string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	NATSURL           string
	NATSSubjectPrefix string
	WebhookURL        string
	NotifyEmail       string
	NotifyTimeout     time.Duration
	ConfirmOwners     bool

	AdminToken      string
	VenuesFile      string
	CacheTTL        time.Duration
	ShutdownTimeout time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads ./.env when present, then parses the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	return parse(os.Getenv)
}

// LoadFile reads the dotenv file at path, which must exist, then parses the environment.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return parse(os.Getenv)
}

func parse(getenv func(string) string) (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		Store:             StoreSQLite,
		SQLitePath:        "booking.db",
		RedisAddr:         "localhost:6379",
		RedisPrefix:       "booking:",
		NATSSubjectPrefix: "booking",
		NotifyTimeout:     5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		LogLevel:          slog.LevelInfo,
		LogFormat:         "json",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)
	value := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := value("BOOKING_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if v := strings.ToLower(value("BOOKING_STORE")); v != "" {
		switch v {
		case StoreSQLite, StoreRedis, StoreMemory:
			cfg.Store = v
		default:
			invalid = append(invalid, "BOOKING_STORE")
		}
	}
	if v := value("BOOKING_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := value("BOOKING_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	cfg.RedisPassword = getenv("BOOKING_REDIS_PASSWORD")
	if v := value("BOOKING_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			invalid = append(invalid, "BOOKING_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}
	if v := value("BOOKING_REDIS_PREFIX"); v != "" {
		cfg.RedisPrefix = v
	}

	cfg.NATSURL = value("BOOKING_NATS_URL")
	if v := value("BOOKING_NATS_SUBJECT_PREFIX"); v != "" {
		cfg.NATSSubjectPrefix = v
	}
	cfg.WebhookURL = value("BOOKING_WEBHOOK_URL")

	if v := value("BOOKING_NOTIFY_EMAIL"); v == "" {
		missing = append(missing, "BOOKING_NOTIFY_EMAIL")
	} else if !strings.Contains(v, "@") {
		invalid = append(invalid, "BOOKING_NOTIFY_EMAIL")
	} else {
		cfg.NotifyEmail = v
	}

	parseDuration := func(key string, allowZero bool, target *time.Duration) {
		v := value(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 || (d == 0 && !allowZero) {
			invalid = append(invalid, key)
			return
		}
		*target = d
	}
	parseDuration("BOOKING_NOTIFY_TIMEOUT", false, &cfg.NotifyTimeout)
	parseDuration("BOOKING_CACHE_TTL", true, &cfg.CacheTTL)
	parseDuration("BOOKING_SHUTDOWN_TIMEOUT", false, &cfg.ShutdownTimeout)

	if v := value("BOOKING_CONFIRM_OWNERS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, "BOOKING_CONFIRM_OWNERS")
		} else {
			cfg.ConfirmOwners = enabled
		}
	}

	cfg.AdminToken = value("BOOKING_ADMIN_TOKEN")
	cfg.VenuesFile = value("BOOKING_VENUES_FILE")

	if level, err := logging.ParseLevel(value("BOOKING_LOG_LEVEL")); err != nil {
		invalid = append(invalid, "BOOKING_LOG_LEVEL")
	} else {
		cfg.LogLevel = level
	}
	if v := strings.ToLower(value("BOOKING_LOG_FORMAT")); v != "" {
		if v != "json" && v != "text" {
			invalid = append(invalid, "BOOKING_LOG_FORMAT")
		} else {
			cfg.LogFormat = v
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing required environment variables: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variable values: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.HTTPPort)
}
