package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML configuration file and unmarshals it into the
// specified type. T must be a struct type that can be unmarshaled from YAML.
func LoadConfig[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg T
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv loads environment variables from a .env file. A missing file is
// not an error. Variables already present in the real environment win over
// file entries.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load assembles the effective client configuration: the YAML file first,
// MINSTREL_* environment variables layered on top, then defaults for
// whatever is still unset. The result is validated before it is returned.
//
// path may be empty, in which case the file layer is skipped and the
// configuration comes from the environment and defaults alone.
func Load(path string) (*Config, error) {
	logger := log.With().Str("com", "config-loader").Logger()

	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig[Config](path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if generated := cfg.ApplyDefaults(); generated {
		logger.Debug().Str("client_id", cfg.ClientID).Msg("generated client id")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger.Info().
		Str("server_url", cfg.ServerURL).
		Float64("poll_interval", cfg.PollInterval).
		Msg("loaded client configuration")

	return cfg, nil
}
