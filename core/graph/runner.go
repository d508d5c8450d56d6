package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes one Cypher query and returns all records.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

// DriverRunner runs queries on a Neo4j driver.
type DriverRunner struct {
	driver   neo4j.DriverWithContext
	database string
	write    bool
}

// NewDriverRunner creates a runner routed to readers.
// An empty database name uses the server default.
func NewDriverRunner(driver neo4j.DriverWithContext, database string) *DriverRunner {
	return &DriverRunner{
		driver:   driver,
		database: database,
	}
}

// NewDriverWriteRunner creates a runner routed to writers.
func NewDriverWriteRunner(driver neo4j.DriverWithContext, database string) *DriverRunner {
	return &DriverRunner{
		driver:   driver,
		database: database,
		write:    true,
	}
}

// Run executes the query eagerly.
func (r *DriverRunner) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	options := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithWritersRouting()}
	if !r.write {
		options[0] = neo4j.ExecuteQueryWithReadersRouting()
	}
	if r.database != "" {
		options = append(options, neo4j.ExecuteQueryWithDatabase(r.database))
	}

	result, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params, neo4j.EagerResultTransformer, options...)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}
