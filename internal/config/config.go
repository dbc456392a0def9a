// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds the settings of cmd/bgserver.
type Server struct {
	Host           string        `env:"BGRULES_HOST" envDefault:"localhost"`
	Port           int           `env:"BGRULES_PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"BGRULES_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"BGRULES_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout    time.Duration `env:"BGRULES_IDLE_TIMEOUT" envDefault:"120s"`
	MaxFastWorkers int           `env:"BGRULES_MAX_FAST_WORKERS" envDefault:"0"`
	MaxSlowWorkers int           `env:"BGRULES_MAX_SLOW_WORKERS" envDefault:"0"`
	// DBPath is the SQLite journal file. Empty disables the journal.
	DBPath string `env:"BGRULES_DB_PATH"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer returns the server settings from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Server{}, fmt.Errorf("BGRULES_PORT %d out of range", cfg.Port)
	}
	return cfg, nil
}

// Exitf prints a message to stderr and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
