// Package config loads server configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the full server configuration. All values come from
// environment variables with sensible development defaults.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		// Defaults applied to search requests that omit a tunable.
		PopulationSize int     `env:"SEARCH_POPULATION_SIZE" envDefault:"25"`
		AbandonCount   int     `env:"SEARCH_ABANDON_COUNT" envDefault:"10"`
		Generations    int     `env:"SEARCH_GENERATIONS" envDefault:"300"`
		BaseStepSize   float64 `env:"SEARCH_BASE_STEP_SIZE" envDefault:"0.03"`
	}
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}
