package cyphersql

import (
	"context"
	"fmt"

	"github.com/cyphersql/compiler/engine/executor"
	"github.com/cyphersql/compiler/engine/plancache"
	"github.com/cyphersql/compiler/engine/schema"
)

// Client ties compilation, plan caching, and execution together over
// one sqlite database.
type Client struct {
	runner *executor.Runner
	cache  plancache.Cache
}

// Open opens path (":memory:" for an ephemeral database), applies the
// relational schema, and wraps the result in a Client. maxConcurrent
// bounds simultaneous Query calls; 0 means unbounded.
func Open(ctx context.Context, path string, maxConcurrent int64) (*Client, error) {
	runner, err := executor.Open(path, maxConcurrent)
	if err != nil {
		return nil, err
	}
	if err := schema.Apply(ctx, runner.DB()); err != nil {
		runner.Close()
		return nil, err
	}
	return &Client{runner: runner}, nil
}

// WithCache attaches a plan cache so repeated Query calls with the same
// Cypher text skip the parse+transform cycle.
func (c *Client) WithCache(cache plancache.Cache) *Client {
	c.cache = cache
	return c
}

// Close closes the wrapped executor.Runner.
func (c *Client) Close() error {
	return c.runner.Close()
}

// Query compiles cypher and runs it, binding params by name.
func (c *Client) Query(ctx context.Context, cypher string, params map[string]any) (*executor.Rows, error) {
	compiled, err := Compile(cypher, Options{Cache: c.cache})
	if err != nil {
		return nil, err
	}
	rows, err := c.runner.Run(ctx, &executor.Compiled{SQL: compiled.SQL, Params: compiled.Params}, params)
	if err != nil {
		return nil, fmt.Errorf("executing compiled query: %w", err)
	}
	return rows, nil
}

// Stats reports row counts across the schema's tables.
func (c *Client) Stats(ctx context.Context) (*schema.Stats, error) {
	return schema.CollectStats(ctx, c.runner.DB())
}
