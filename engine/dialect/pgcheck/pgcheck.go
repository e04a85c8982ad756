// Package pgcheck validates that a rewritten SQLite query still parses
// as Postgres, as an opt-in portability lint — never part of the
// correctness contract of the primary transform.
package pgcheck

import (
	pg_query "github.com/pganalyze/pg_query_go/v5"

	"github.com/cyphersql/compiler/engine/dialect"
)

// Check rewrites sql for Postgres placeholder syntax and parses it,
// returning the parser's error if the rewrite produced invalid SQL.
func Check(sql string) error {
	_, err := pg_query.Parse(dialect.RewriteForPostgres(sql))
	return err
}
