package helper

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseName     = "recipes"
	testDatabaseUser     = "recipe_user"
	testDatabasePassword = "recipe_pass"
	testGraphUser        = "neo4j"
	testGraphPassword    = "recipe_pass"
)

// MustStartPostgresContainer starts a Postgres container with the pgvector extension available.
// It returns the teardown function and the mapped host port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("error starting postgres container: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", fmt.Errorf("error getting mapped port: %w", err)
	}

	return container.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points the database configuration at a test container.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("RECIPES_DB_HOST", "localhost")
	t.Setenv("RECIPES_DB_PORT", port)
	t.Setenv("RECIPES_DB_NAME", testDatabaseName)
	t.Setenv("RECIPES_DB_USER", testDatabaseUser)
	t.Setenv("RECIPES_DB_PASSWORD", testDatabasePassword)
	t.Setenv("RECIPES_DB_SSLMODE", "disable")
}

// NewTestDatabase connects to the test database and panics on failure.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := NewLogger(os.Stdout, slog.LevelWarn)
	db, err := NewDatabase("recipes_test", config, logger)
	if err != nil {
		log.Panicf("error connecting to test database: %v", err)
	}
	return db
}

// MustStartNeo4jContainer starts a Neo4j container and returns the teardown function and its bolt URI.
func MustStartNeo4jContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	request := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": testGraphUser + "/" + testGraphPassword,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Started."),
			wait.ForListeningPort("7687/tcp"),
		).WithDeadline(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("error starting neo4j container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container.Terminate, "", fmt.Errorf("error getting container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "7687/tcp")
	if err != nil {
		return container.Terminate, "", fmt.Errorf("error getting mapped port: %w", err)
	}

	return container.Terminate, fmt.Sprintf("bolt://%s:%s", host, port.Port()), nil
}

// SetTestGraphConfigEnvs points the graph configuration at a test container.
func SetTestGraphConfigEnvs(t *testing.T, uri string) {
	t.Setenv("RECIPES_GRAPH_URI", uri)
	t.Setenv("RECIPES_GRAPH_USER", testGraphUser)
	t.Setenv("RECIPES_GRAPH_PASSWORD", testGraphPassword)
	t.Setenv("RECIPES_GRAPH_DATABASE", "")
}
