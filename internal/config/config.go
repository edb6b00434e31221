package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"apdash-backend/internal/dashboard"
	"apdash-backend/internal/responder"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Typing latency before an assistant reply is appended
	ResponseDelay   time.Duration
	SupersedePolicy responder.SupersedePolicy
	DefaultRole     dashboard.Role
	// 0 keeps every turn
	MaxTurns int
	// Empty means the catalog compiled into the binary
	CatalogFile string
	LogLevel    logrus.Level
	LogFormat   string
}

// Load reads the environment, after merging an optional .env file. Bad
// values are reported through log and replaced by their defaults.
func Load(log logrus.FieldLogger) Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:            getEnvDefault("PORT", "8080"),
		AllowedOrigin:   getEnvDefault("ALLOWED_ORIGIN", "*"),
		ResponseDelay:   getEnvDurationDefault(log, "RESPONSE_DELAY", time.Second),
		SupersedePolicy: responder.CancelSuperseded,
		DefaultRole:     dashboard.RoleAPClerk,
		MaxTurns:        getEnvIntDefault(log, "MAX_TURNS", 0),
		CatalogFile:     os.Getenv("CATALOG_FILE"),
		LogLevel:        logrus.InfoLevel,
		LogFormat:       getEnvDefault("LOG_FORMAT", "text"),
	}
	if v := os.Getenv("SUPERSEDE_POLICY"); v != "" {
		if p, err := responder.ParsePolicy(v); err == nil {
			cfg.SupersedePolicy = p
		} else {
			log.WithError(err).Warn("ignoring SUPERSEDE_POLICY")
		}
	}
	if v := os.Getenv("DEFAULT_ROLE"); v != "" {
		if r, err := dashboard.ParseRole(v); err == nil {
			cfg.DefaultRole = r
		} else {
			log.WithError(err).Warn("ignoring DEFAULT_ROLE")
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			cfg.LogLevel = lvl
		} else {
			log.WithError(err).Warn("ignoring LOG_LEVEL")
		}
	}
	if cfg.ResponseDelay < 0 {
		log.WithField("value", cfg.ResponseDelay).Warn("RESPONSE_DELAY is negative; using 0")
		cfg.ResponseDelay = 0
	}
	return cfg
}

// NewLogger builds the process logger for cfg.
func NewLogger(cfg Config) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(cfg.LogLevel)
	if strings.EqualFold(cfg.LogFormat, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationDefault(log logrus.FieldLogger, key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("invalid duration; using default")
		return def
	}
	return d
}

func getEnvIntDefault(log logrus.FieldLogger, key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("invalid integer; using default")
		return def
	}
	return n
}
