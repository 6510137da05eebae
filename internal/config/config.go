// Package config loads server settings from an optional .env file and
// STATLAB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds process settings. LLM settings live in llm.Config.
type Config struct {
	Addr            string `validate:"required"`
	DBPath          string
	LogMode         string        `validate:"omitempty,oneof=dev development prod production"`
	LogLevel        string        `validate:"omitempty,oneof=debug info warn error"`
	GinMode         string        `validate:"omitempty,oneof=debug release test"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	CORSOrigins     []string      `validate:"dive,required"`

	// GenerateOnMiss authors a question with the LLM when the corpus has
	// none for a recommendation.
	GenerateOnMiss bool

	// Seed fixes the selection random source; zero means time-seeded.
	Seed uint64
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:            ":8080",
		LogMode:         "dev",
		GinMode:         "release",
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		GenerateOnMiss:  true,
	}
}

// LoadDotEnv loads the given .env files, or ./.env when none are given.
// Missing files are ignored and variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads .env and the environment over Default and validates the
// result.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

// FromEnv reads STATLAB_* variables over Default.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("STATLAB_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.DBPath = os.Getenv("STATLAB_DB")
	if v := os.Getenv("STATLAB_LOG_MODE"); v != "" {
		cfg.LogMode = strings.ToLower(v)
	}
	cfg.LogLevel = strings.ToLower(os.Getenv("STATLAB_LOG_LEVEL"))
	if v := os.Getenv("STATLAB_GIN_MODE"); v != "" {
		cfg.GinMode = strings.ToLower(v)
	}
	if v := os.Getenv("STATLAB_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("STATLAB_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := os.Getenv("STATLAB_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("STATLAB_GENERATE_ON_MISS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("STATLAB_GENERATE_ON_MISS: %w", err)
		}
		cfg.GenerateOnMiss = b
	}
	if v := os.Getenv("STATLAB_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("STATLAB_SEED: %w", err)
		}
		cfg.Seed = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
