// Package config loads application configuration from environment
// variables.  A local .env file is read first when present; variables
// already set in the environment win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string        // APP_ENV: dev, test or prod
	Port           string        // APP_PORT: HTTP port to listen on
	DBUser         string        // DB_USER
	DBPass         string        // DB_PASS (optional)
	DBHost         string        // DB_HOST
	DBPort         string        // DB_PORT
	DBName         string        // DB_NAME
	DBMaxOpenConns int           // DB_MAX_OPEN_CONNS (default 25)
	AutoMigrate    bool          // DB_AUTO_MIGRATE: create missing tables at startup
	JWTSecret      string        // JWT_SECRET: HMAC key for access tokens
	AccessTTLMin   int           // ACCESS_TOKEN_TTL_MIN: lifetime of minted tokens
	RabbitMQURL    string        // RABBITMQ_URL (optional; notifications stay in the DB without it)
	NotifyLogDir   string        // NOTIFICATION_LOG_DIR (default "logs")
	ShutdownGrace  time.Duration // SHUTDOWN_GRACE (default 10s)
}

// Dev reports whether the app runs in the development environment.
func (c Config) Dev() bool { return c.Env == "dev" }

// Load reads the .env file if any and the environment.  Missing or
// malformed required variables are fatal.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("config: .env not loaded")
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		logrus.Fatal(err)
	}
	return cfg
}

// FromEnv builds a Config from lookup.  All problems are reported at once.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := &env{lookup: lookup}
	cfg := Config{
		Env:            e.must("APP_ENV"),
		Port:           e.must("APP_PORT"),
		DBUser:         e.must("DB_USER"),
		DBPass:         e.get("DB_PASS", ""),
		DBHost:         e.must("DB_HOST"),
		DBPort:         e.must("DB_PORT"),
		DBName:         e.must("DB_NAME"),
		DBMaxOpenConns: envInt(e.get("DB_MAX_OPEN_CONNS", ""), 25),
		AutoMigrate:    envBool(e.get("DB_AUTO_MIGRATE", ""), false),
		JWTSecret:      e.must("JWT_SECRET"),
		AccessTTLMin:   e.mustInt("ACCESS_TOKEN_TTL_MIN"),
		RabbitMQURL:    e.get("RABBITMQ_URL", ""),
		NotifyLogDir:   e.get("NOTIFICATION_LOG_DIR", "logs"),
		ShutdownGrace:  envDur(e.get("SHUTDOWN_GRACE", ""), 10*time.Second),
	}
	if len(e.problems) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(e.problems, "; "))
	}
	return cfg, nil
}

type env struct {
	lookup   func(string) (string, bool)
	problems []string
}

func (e *env) get(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

// must retrieves a required variable and records it as missing when unset
// or empty.
func (e *env) must(key string) string {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		e.problems = append(e.problems, "missing required env var "+key)
	}
	return v
}

// mustInt is like must but also requires a positive integer.
func (e *env) mustInt(key string) int {
	s := e.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		e.problems = append(e.problems, fmt.Sprintf("invalid int for %s: %q", key, s))
	}
	return n
}
