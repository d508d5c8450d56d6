package helper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v6"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphConfiguration holds the connection settings of the recipe knowledge graph.
type GraphConfiguration struct {
	URI      string `env:"RECIPES_GRAPH_URI" envDefault:"bolt://localhost:7687"`
	Username string `env:"RECIPES_GRAPH_USER" envDefault:"neo4j"`
	Password string `env:"RECIPES_GRAPH_PASSWORD" envDefault:"recipe_pass"`
	Database string `env:"RECIPES_GRAPH_DATABASE"`
}

// NewGraphConfiguration reads the graph configuration from the environment.
func NewGraphConfiguration() (*GraphConfiguration, error) {
	config := &GraphConfiguration{}
	if err := env.Parse(config); err != nil {
		return nil, NewError("parse graph configuration", err)
	}
	return config, nil
}

// NewGraphDriver creates a Neo4j driver and verifies the server is reachable.
// The driver owns a connection pool and is safe for concurrent use.
func NewGraphDriver(ctx context.Context, config *GraphConfiguration, logger *slog.Logger) (neo4j.DriverWithContext, error) {
	if config == nil {
		return nil, NewError("graph configuration validation", fmt.Errorf("configuration is nil"))
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, NewError("create graph driver", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, NewError("verify graph connectivity", err)
	}

	if logger != nil {
		logger.Info("Connected to graph", slog.String("uri", config.URI))
	}

	return driver, nil
}
