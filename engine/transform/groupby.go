package transform

import (
	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/mapping"
)

// containsAggregate reports whether e contains an aggregate function
// call anywhere in its tree. RETURN/WITH use this to decide whether
// non-aggregate items need an implicit GROUP BY, matching Cypher's
// "mixing aggregate and non-aggregate return items groups by the
// non-aggregate ones" rule.
func containsAggregate(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.FunctionCall:
		if entry, ok := mapping.Lookup(n.Name); ok && entry.Family == mapping.FamAggregate {
			return true
		}
		for _, a := range n.Args {
			if containsAggregate(a) {
				return true
			}
		}
		return false
	case *ast.BinaryOp:
		return containsAggregate(n.Left) || containsAggregate(n.Right)
	case *ast.NotExpr:
		return containsAggregate(n.Child)
	case *ast.NullCheck:
		return containsAggregate(n.Child)
	case *ast.Property:
		return containsAggregate(n.Base)
	case *ast.Case:
		if n.Subject != nil && containsAggregate(n.Subject) {
			return true
		}
		for _, br := range n.Branches {
			if containsAggregate(br.When) || containsAggregate(br.Then) {
				return true
			}
		}
		return n.Else != nil && containsAggregate(n.Else)
	default:
		return false
	}
}

// addImplicitGroupBy adds sql to b's GROUP BY for every projected item
// whose expression does not itself contain an aggregate, but only
// when at least one item in the same projection list does — a
// projection of entirely plain columns needs no GROUP BY at all.
func addImplicitGroupBy(items []itemSQL, anyAggregate bool, add func(string)) {
	if !anyAggregate {
		return
	}
	for _, it := range items {
		if !it.isAggregate {
			add(it.sql)
		}
	}
}

type itemSQL struct {
	sql         string
	isAggregate bool
}
