package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/siherrmann/recipegraph/core/intent"
	"github.com/siherrmann/recipegraph/core/pipeline"
	"github.com/siherrmann/recipegraph/helper"
)

// DefaultEnvFile is read when no env file is given and it exists.
const DefaultEnvFile = ".env"

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Host         string `env:"RECIPES_HOST" envDefault:"0.0.0.0"`
	Port         string `env:"RECIPES_PORT" envDefault:"8000"`
	DefaultLimit int    `env:"RECIPES_DEFAULT_LIMIT" envDefault:"20"`
}

// Address returns host:port for the listener.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// Config is the process configuration.
type Config struct {
	Database  helper.DatabaseConfiguration
	Graph     helper.GraphConfiguration
	Embedder  pipeline.EmbedderConfig
	Extractor intent.ExtractorConfig
	Server    ServerConfig

	VocabPath string `env:"RECIPES_VOCAB_PATH" envDefault:"recipes-data/controlled_vocab.json"`
	LogLevel  string `env:"RECIPES_LOG_LEVEL" envDefault:"info"`
	// Recreate stored functions on start
	ForceSQL bool `env:"RECIPES_FORCE_SQL" envDefault:"false"`
}

// Load reads the configuration from the environment after applying envFile.
// An empty envFile loads DefaultEnvFile when it exists. Variables already set
// in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, helper.NewError("load env file", err)
		}
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, helper.NewError("load env file", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, helper.NewError("parse configuration", err)
	}
	if config.Server.DefaultLimit <= 0 {
		config.Server.DefaultLimit = 20
	}

	return config, nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
