// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Environment names accepted in MILIM_ENV.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds the settings of a milim process.
type Config struct {
	Addr     string // MILIM_ADDR
	DataDir  string // MILIM_DATA_DIR, empty means the bundled dataset
	DataURL  string // MILIM_DATA_URL, archive fetched when DataDir has no dataset
	DB       string // MILIM_DB
	Workers  int    // MILIM_WORKERS
	PageSize int    // MILIM_PAGE_SIZE
	PageStep int    // MILIM_PAGE_STEP
	Env      string // MILIM_ENV
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:     ":8080",
		DB:       ":memory:",
		Workers:  4,
		PageSize: 20,
		PageStep: 10,
		Env:      EnvProduction,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and builds a Config from it. Missing files are ignored;
// variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment.
func FromEnv() (Config, error) {
	d := Default()
	c := Config{
		Addr:    getEnv("MILIM_ADDR", d.Addr),
		DataDir: getEnv("MILIM_DATA_DIR", d.DataDir),
		DataURL: getEnv("MILIM_DATA_URL", d.DataURL),
		DB:      getEnv("MILIM_DB", d.DB),
		Env:     getEnv("MILIM_ENV", d.Env),
	}

	var err error
	if c.Workers, err = getEnvInt("MILIM_WORKERS", d.Workers); err != nil {
		return Config{}, err
	}
	if c.PageSize, err = getEnvInt("MILIM_PAGE_SIZE", d.PageSize); err != nil {
		return Config{}, err
	}
	if c.PageStep, err = getEnvInt("MILIM_PAGE_STEP", d.PageStep); err != nil {
		return Config{}, err
	}

	switch c.Env {
	case EnvProduction, EnvDevelopment:
	default:
		return Config{}, fmt.Errorf("MILIM_ENV: unknown environment %q", c.Env)
	}
	return c, nil
}

// Logger builds the zap logger for the configured environment.
func (c Config) Logger() (*zap.Logger, error) {
	if c.Env == EnvDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
