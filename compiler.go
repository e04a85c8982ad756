// Package cyphersql parses Cypher queries and compiles them to SQL
// against the relational property-graph schema in engine/schema.
package cyphersql

import (
	"fmt"

	"github.com/cyphersql/compiler/engine/dialect/mysqlcheck"
	"github.com/cyphersql/compiler/engine/dialect/pgcheck"
	"github.com/cyphersql/compiler/engine/parser"
	"github.com/cyphersql/compiler/engine/plancache"
	"github.com/cyphersql/compiler/engine/transform"
)

// Options configures a Compile call.
type Options struct {
	// Cache, when non-nil, is consulted before parsing and populated
	// after a successful compile, keyed on the raw Cypher text.
	Cache plancache.Cache
	// CheckPortability runs the compiled SQL through pgcheck and
	// mysqlcheck as a lint; a failure is returned as an error rather
	// than silently ignored, but never changes the SQL returned.
	CheckPortability bool
}

// Result is the compiled query: SQL text plus the ordered, deduplicated
// parameter names the caller must bind before executing it.
type Result struct {
	SQL    string
	Params []string
}

// Compile parses cypher and transforms it into SQL. On a parse error
// the transform is never invoked, matching the transform's "borrows,
// does not own" contract with the AST.
func Compile(cypher string, opts Options) (*Result, error) {
	if opts.Cache != nil {
		if plan, ok := opts.Cache.Get(cypher); ok {
			return &Result{SQL: plan.SQL, Params: plan.Params}, nil
		}
	}

	stmt, err := parser.Parse(cypher)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	tr, err := transform.TransformStatement(stmt)
	if err != nil {
		return nil, fmt.Errorf("transform error: %w", err)
	}

	if opts.CheckPortability {
		if err := pgcheck.Check(tr.SQL); err != nil {
			return nil, fmt.Errorf("postgres portability check failed: %w", err)
		}
		if err := mysqlcheck.Check(tr.SQL); err != nil {
			return nil, fmt.Errorf("mysql portability check failed: %w", err)
		}
	}

	if opts.Cache != nil {
		opts.Cache.Put(cypher, &plancache.Plan{SQL: tr.SQL, Params: tr.Params})
	}

	return &Result{SQL: tr.SQL, Params: tr.Params}, nil
}
