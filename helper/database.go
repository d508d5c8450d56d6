package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings of the recipes Postgres database.
type DatabaseConfiguration struct {
	Host     string `env:"RECIPES_DB_HOST" envDefault:"localhost"`
	Port     string `env:"RECIPES_DB_PORT" envDefault:"5432"`
	Database string `env:"RECIPES_DB_NAME" envDefault:"recipes"`
	Username string `env:"RECIPES_DB_USER" envDefault:"recipe_user"`
	Password string `env:"RECIPES_DB_PASSWORD" envDefault:"recipe_pass"`
	SSLMode  string `env:"RECIPES_DB_SSLMODE" envDefault:"disable"`
	// Pool
	MaxOpenConns int `env:"RECIPES_DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int `env:"RECIPES_DB_MAX_IDLE_CONNS" envDefault:"5"`
}

// NewDatabaseConfiguration reads the database configuration from the environment.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{}
	if err := env.Parse(config); err != nil {
		return nil, NewError("parse database configuration", err)
	}
	return config, nil
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode,
	)
}

// Database is a pooled connection to Postgres, safe for concurrent use.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens the connection pool and verifies it with a ping.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewError("database configuration validation", fmt.Errorf("configuration is nil"))
	}
	if logger == nil {
		logger = NewLogger(os.Stdout, slog.LevelInfo)
	}

	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open database", err)
	}
	instance.SetMaxOpenConns(config.MaxOpenConns)
	instance.SetMaxIdleConns(config.MaxIdleConns)
	instance.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := instance.PingContext(ctx); err != nil {
		instance.Close()
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
