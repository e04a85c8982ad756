// Package mysqlcheck validates that a rewritten SQLite query still
// parses as MySQL, as an opt-in portability lint.
package mysqlcheck

import (
	"github.com/pingcap/tidb/parser"
	_ "github.com/pingcap/tidb/types/parser_driver"

	"github.com/cyphersql/compiler/engine/dialect"
)

// Check rewrites sql for MySQL placeholder syntax and parses it with
// tidb's parser, returning its error if the rewrite produced invalid
// SQL. tidb's Parse accepts a semicolon-separated batch directly, so
// multi-statement write output needs no further splitting.
func Check(sql string) error {
	p := parser.New()
	_, _, err := p.Parse(dialect.RewriteForMySQL(sql), "", "")
	return err
}
