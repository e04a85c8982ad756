package transform

import (
	"fmt"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/scope"
	"github.com/cyphersql/compiler/engine/sqlbuilder"
)

// transformExists handles both EXISTS forms: the pattern form `EXISTS
// { (a)-->(b) WHERE ... }` / legacy `EXISTS((a)-->(b))`, built as a
// correlated subquery that joins the pattern against the enclosing
// query's already-bound aliases; and the property form `EXISTS(n.x)`,
// a null check.
func (c *Ctx) transformExists(e *ast.ExistsExpr) (string, error) {
	if e.Property != nil {
		prop, err := c.TransformExpr(e.Property)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) IS NOT NULL", prop), nil
	}

	sub := sqlbuilder.New()
	if err := c.TransformPattern(sub, e.Pattern, false); err != nil {
		return "", err
	}
	if e.Where != nil {
		cond, err := c.TransformExpr(e.Where)
		if err != nil {
			return "", err
		}
		sub.Where(cond)
	}
	sub.Select("1", "")
	return fmt.Sprintf("EXISTS (%s)", sub.ToSubquery()), nil
}

// transformListPredicate emits all/any/none/single(x IN list WHERE
// pred), using json_each to iterate list and a save/restore of any
// existing binding for Variable so a predicate nested inside another
// comprehension doesn't leak its loop variable.
func (c *Ctx) transformListPredicate(p *ast.ListPredicate) (string, error) {
	listSQL, err := c.TransformExpr(p.List)
	if err != nil {
		return "", err
	}

	saved, hadSaved := c.Scope.Lookup(p.Variable)
	c.Scope.RegisterProjected(p.Variable, "value")
	predSQL, err := c.TransformExpr(p.Predicate)
	c.restoreBinding(p.Variable, saved, hadSaved)
	if err != nil {
		return "", err
	}

	switch p.Kind {
	case ast.PredAll:
		return fmt.Sprintf("NOT EXISTS (SELECT 1 FROM json_each(%s) WHERE NOT (%s))", listSQL, predSQL), nil
	case ast.PredAny:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE %s)", listSQL, predSQL), nil
	case ast.PredNone:
		return fmt.Sprintf("NOT EXISTS (SELECT 1 FROM json_each(%s) WHERE %s)", listSQL, predSQL), nil
	case ast.PredSingle:
		return fmt.Sprintf("((SELECT COUNT(*) FROM json_each(%s) WHERE %s) = 1)", listSQL, predSQL), nil
	default:
		return "", c.Fail(errInvalidArgument("unknown list predicate kind"))
	}
}

// restoreBinding puts back whatever was bound to name before a
// comprehension/predicate temporarily shadowed it with its loop
// variable. Scope intentionally exposes no delete operation, so a
// previously-unbound name stays shadowed after the comprehension
// ends; in practice comprehension loop variables are named distinctly
// from outer pattern variables, so this is a documented
// simplification rather than full lexical scoping.
func (c *Ctx) restoreBinding(name string, saved *scope.Variable, hadSaved bool) {
	if !hadSaved {
		return
	}
	restored := c.Scope.RegisterProjected(name, saved.Alias)
	*restored = *saved
}

// transformReduce implements reduce(acc = init, x IN list | fold) as
// a recursive CTE of (idx, acc) pairs.
func (c *Ctx) transformReduce(r *ast.ReduceExpr) (string, error) {
	listSQL, err := c.TransformExpr(r.List)
	if err != nil {
		return "", err
	}
	initSQL, err := c.TransformExpr(r.Init)
	if err != nil {
		return "", err
	}

	cteName := c.NextCTEName("reduce")

	c.Scope.RegisterProjected(r.Accumulator, cteName+".acc")
	c.Scope.RegisterProjected(r.Variable, fmt.Sprintf("json_extract(%s, '$[' || %s.idx || ']')", listSQL, cteName))
	foldSQL, err := c.TransformExpr(r.Fold)
	if err != nil {
		return "", err
	}

	body := fmt.Sprintf(
		`SELECT 0 AS idx, %[1]s AS acc
UNION ALL
SELECT %[2]s.idx + 1, %[3]s
FROM %[2]s
WHERE %[2]s.idx < json_array_length(%[4]s)`,
		initSQL, cteName, foldSQL, listSQL,
	)
	c.Builder.CTE(cteName, body, true)

	return fmt.Sprintf(
		"(SELECT acc FROM %[1]s ORDER BY idx DESC LIMIT 1)",
		cteName,
	), nil
}

// transformListComprehension implements [x IN list WHERE where |
// transform] via json_each, filtering with WHERE and mapping with
// transform (or collecting x itself when transform is absent).
func (c *Ctx) transformListComprehension(lc *ast.ListComprehension) (string, error) {
	listSQL, err := c.TransformExpr(lc.List)
	if err != nil {
		return "", err
	}

	c.Scope.RegisterProjected(lc.Variable, "value")

	var whereSQL string
	if lc.Where != nil {
		whereSQL, err = c.TransformExpr(lc.Where)
		if err != nil {
			return "", err
		}
	}

	mapExpr := "value"
	if lc.Transform != nil {
		mapExpr, err = c.TransformExpr(lc.Transform)
		if err != nil {
			return "", err
		}
	}

	if whereSQL == "" {
		return fmt.Sprintf("(SELECT json_group_array(%s) FROM json_each(%s))", mapExpr, listSQL), nil
	}
	return fmt.Sprintf("(SELECT json_group_array(%s) FROM json_each(%s) WHERE %s)", mapExpr, listSQL, whereSQL), nil
}

// transformPatternComprehension implements `[(n)-[r]->(m) WHERE w |
// collect]` by building the pattern into its own subquery builder and
// aggregating Collect with json_group_array, building the aggregate
// expression only after the pattern's aliases are already registered
// in scope so Collect can reference them directly.
func (c *Ctx) transformPatternComprehension(pc *ast.PatternComprehension) (string, error) {
	sub := sqlbuilder.New()
	if err := c.TransformPattern(sub, pc.Pattern, false); err != nil {
		return "", err
	}
	if pc.Where != nil {
		cond, err := c.TransformExpr(pc.Where)
		if err != nil {
			return "", err
		}
		sub.Where(cond)
	}
	collectSQL, err := c.TransformExpr(pc.Collect)
	if err != nil {
		return "", err
	}
	sub.Select(fmt.Sprintf("json_group_array(%s)", collectSQL), "")
	return fmt.Sprintf("(%s)", sub.ToSubquery()), nil
}
