// Package config reads settings from an optional .env file and INVENTARIO_*
// environment variables. Command-line flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backends the item table can live in.
const (
	BackendSQLite = "sqlite"
	BackendSheet  = "sheet"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the server settings.
type Config struct {
	DBPath  string
	Addr    string
	LogPath string

	// Backend selects where the item table is kept.
	Backend   string
	SheetPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	// UploadURL is the photo upload bridge. Empty keeps photos in the database.
	UploadURL    string
	RequirePhoto bool

	SessionTTL    time.Duration
	SweepSchedule string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		DBPath:        "inventario.sqlite3",
		Addr:          ":8080",
		Backend:       BackendSQLite,
		SheetPath:     "inventario.csv",
		RedisKey:      "inventario:items",
		SessionTTL:    12 * time.Hour,
		SweepSchedule: "@every 5m",
	}
}

// Load reads envFile (if it exists) into the process environment and then
// builds a Config from it. Variables already set in the environment win over
// the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from INVENTARIO_* variables.
func FromEnv(getenv func(string) string) (*Config, error) {
	c := Default()

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("INVENTARIO_DB", &c.DBPath)
	str("INVENTARIO_ADDR", &c.Addr)
	str("INVENTARIO_LOG", &c.LogPath)
	str("INVENTARIO_BACKEND", &c.Backend)
	str("INVENTARIO_SHEET", &c.SheetPath)
	str("INVENTARIO_REDIS_ADDR", &c.RedisAddr)
	str("INVENTARIO_REDIS_PASSWORD", &c.RedisPassword)
	str("INVENTARIO_REDIS_KEY", &c.RedisKey)
	str("INVENTARIO_UPLOAD_URL", &c.UploadURL)
	str("INVENTARIO_SWEEP_SCHEDULE", &c.SweepSchedule)

	if v := getenv("INVENTARIO_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("INVENTARIO_REDIS_DB: %w", err)
		}
		c.RedisDB = n
	}
	if v := getenv("INVENTARIO_REQUIRE_PHOTO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("INVENTARIO_REQUIRE_PHOTO: %w", err)
		}
		c.RequirePhoto = b
	}
	if v := getenv("INVENTARIO_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("INVENTARIO_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}

	return c, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path required")
	}
	switch c.Backend {
	case BackendSQLite, BackendMemory:
	case BackendSheet:
		if c.SheetPath == "" {
			return errors.New("sheet backend needs a sheet path")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis backend needs a redis address")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s, %s or %s)",
			c.Backend, BackendSQLite, BackendSheet, BackendRedis, BackendMemory)
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	return nil
}
