package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadSettings.
const (
	EnvAddr     = "SPCALC_ADDR"
	EnvDBDriver = "SPCALC_DB_DRIVER"
	EnvDBDSN    = "SPCALC_DB_DSN"
	EnvCatalog  = "SPCALC_CATALOG"
	EnvWorkers  = "SPCALC_WORKERS"
	EnvLogLevel = "SPCALC_LOG_LEVEL"
)

// Settings is the runtime configuration of the CLI and server. A catalog file
// backs an in-memory store; a DSN backs a SQL store and wins when both are
// set.
type Settings struct {
	Addr     string
	DBDriver string
	DBDSN    string
	Catalog  string
	Workers  int
	LogLevel slog.Level
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Addr:     ":8080",
		DBDriver: "sqlite",
		Workers:  8,
		LogLevel: slog.LevelInfo,
	}
}

// LoadSettings reads settings from the environment. Variables in envFile
// are loaded first without overriding ones already set; a missing envFile
// is not an error.
func LoadSettings(envFile string) (Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	s := DefaultSettings()
	if v := lookup(EnvAddr); v != "" {
		s.Addr = v
	}
	if v := lookup(EnvDBDriver); v != "" {
		s.DBDriver = v
	}
	s.DBDSN = lookup(EnvDBDSN)
	s.Catalog = lookup(EnvCatalog)

	if v := lookup(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Settings{}, fmt.Errorf("%s must be a positive integer, got %q", EnvWorkers, v)
		}
		s.Workers = n
	}
	if v := lookup(EnvLogLevel); v != "" {
		if err := s.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	return s, nil
}

// UsesDatabase reports whether the settings select a SQL store.
func (s Settings) UsesDatabase() bool {
	return s.DBDSN != ""
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
