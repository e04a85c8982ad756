// Package dialect produces a best-effort Postgres/MySQL-flavored
// rewrite of the SQLite SQL the transform emits, for portability
// linting only — it is never a second code path for the primary
// transform, and its output is never returned to the caller as the
// compiled query.
package dialect

import (
	"regexp"
	"strconv"
)

var namedParamRe = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// RewriteForPostgres applies a handful of syntax substitutions that let
// pg_query_go accept SQLite-flavored SQL it would otherwise reject
// outright: `:name` placeholders renumbered to `$1`, `$2`, ... in
// first-appearance order (pg_query_go has no concept of named binds).
func RewriteForPostgres(sql string) string {
	return renumberParams(sql)
}

// RewriteForMySQL applies the same placeholder renumbering; tidb's
// parser accepts SQLite's json_* calls as ordinary function calls, so
// no further rewrite is needed to get a syntax-level parse.
func RewriteForMySQL(sql string) string {
	return renumberParams(sql)
}

func renumberParams(sql string) string {
	seen := make(map[string]int)
	next := 1
	return namedParamRe.ReplaceAllStringFunc(sql, func(m string) string {
		name := m[1:]
		n, ok := seen[name]
		if !ok {
			n = next
			seen[name] = n
			next++
		}
		return "$" + strconv.Itoa(n)
	})
}
