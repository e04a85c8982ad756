package transform

import (
	"fmt"
	"strings"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/scope"
	"github.com/cyphersql/compiler/engine/sqlbuilder"
)

// TransformPattern wires every node/relationship in path into b,
// registering each bound variable in c.Scope. optional selects LEFT
// JOIN instead of INNER/CROSS JOIN for OPTIONAL MATCH patterns.
func (c *Ctx) TransformPattern(b *sqlbuilder.Builder, path *ast.Path, optional bool) error {
	nodes := path.Nodes()
	rels := path.Rels()

	aliases := make([]string, len(nodes))
	for i, np := range nodes {
		alias, err := c.transformNodePattern(b, np, optional)
		if err != nil {
			return err
		}
		aliases[i] = alias
	}

	for i, rel := range rels {
		cteName, err := c.transformRelPattern(b, aliases[i], rel, aliases[i+1], optional)
		if err != nil {
			return err
		}
		if cteName != "" && path.Kind != ast.PathNormal {
			b.Where(fmt.Sprintf(
				"%[1]s.depth = (SELECT MIN(depth) FROM %[1]s WHERE start_id = %[2]s.id AND end_id = %[3]s.id)",
				cteName, aliases[i], aliases[i+1],
			))
		}
	}

	if path.Variable != "" {
		c.Scope.RegisterPath(path.Variable, path)
	}
	return nil
}

// transformNodePattern joins/registers one node pattern and returns
// its SQL alias. A node variable already bound earlier in the query
// is reused verbatim rather than joining a second copy of the nodes
// table; labels and properties written on that repeated occurrence
// are not applied.
func (c *Ctx) transformNodePattern(b *sqlbuilder.Builder, np *ast.NodePattern, optional bool) (string, error) {
	if np.Variable != "" {
		if v, ok := c.Scope.Lookup(np.Variable); ok && v.Kind == scope.KindNode {
			return v.Alias, nil
		}
	}

	v := c.Scope.RegisterNode(np.Variable)
	alias := v.Alias

	kind := sqlbuilder.JoinInner
	if optional {
		kind = sqlbuilder.JoinLeft
	}

	if np.Properties != nil && len(np.Properties.Entries) > 0 {
		// The first property pair picks a property-table-rooted join
		// (prop table -> property_keys -> nodes) instead of starting
		// from the nodes table directly, since filtering by a known
		// property value up front typically narrows cardinality more
		// than joining every node row first.
		first := np.Properties.Entries[0]
		rest := np.Properties.Entries[1:]

		propTable := "node_props_" + propertyTableSuffix(first.Value)
		prevComparison := c.InComparison
		c.InComparison = true
		valSQL, err := c.TransformExpr(first.Value)
		c.InComparison = prevComparison
		if err != nil {
			return "", err
		}

		propAlias := "_prop_" + alias
		pkAlias := "_pk_" + alias

		if !b.HasFrom() {
			b.From(propTable, propAlias)
		} else {
			b.Join(kind, propTable, propAlias, "")
		}
		b.Join(kind, "property_keys", pkAlias, fmt.Sprintf(
			"%s.id = %s.key_id AND %s.key = '%s' AND %s.value = %s",
			pkAlias, propAlias, pkAlias, escapeString(first.Key), propAlias, valSQL,
		))
		b.Join(kind, "nodes", alias, fmt.Sprintf("%s.id = %s.node_id", alias, propAlias))

		for _, entry := range rest {
			prevComparison := c.InComparison
			c.InComparison = true
			valSQL, err := c.TransformExpr(entry.Value)
			c.InComparison = prevComparison
			if err != nil {
				return "", err
			}
			b.Where(fmt.Sprintf("%s = %s", propertyAccessSQL(alias, entry.Key, false, true), valSQL))
		}
	} else if !b.HasFrom() {
		b.From("nodes", alias)
	} else {
		crossKind := sqlbuilder.JoinCross
		if optional {
			crossKind = sqlbuilder.JoinLeft
		}
		b.Join(crossKind, "nodes", alias, "")
	}

	for i, label := range np.Labels {
		labelAlias := fmt.Sprintf("%s_lbl%d", alias, i)
		b.Join(kind, "node_labels", labelAlias, fmt.Sprintf(
			"%s.node_id = %s.id AND %s.label = '%s'",
			labelAlias, alias, labelAlias, escapeString(label),
		))
	}

	return alias, nil
}

// relDirection resolves which end of rel is the edges-table source
// vs. target, given its arrow flags; an undirected pattern (neither
// or both arrows present) returns matchBoth=true so the caller ORs
// both orientations together.
func relDirection(rel *ast.RelPattern, leftAlias, rightAlias string) (source, target string, matchBoth bool) {
	switch {
	case rel.RightArrow && !rel.LeftArrow:
		return leftAlias, rightAlias, false
	case rel.LeftArrow && !rel.RightArrow:
		return rightAlias, leftAlias, false
	default:
		return leftAlias, rightAlias, true
	}
}

func (c *Ctx) transformRelPattern(b *sqlbuilder.Builder, leftAlias string, rel *ast.RelPattern, rightAlias string, optional bool) (string, error) {
	if rel.VarLen.Present {
		return c.transformVarLenRelPattern(b, leftAlias, rel, rightAlias, optional)
	}

	v := c.Scope.RegisterEdge(rel.Variable)
	alias := v.Alias

	kind := sqlbuilder.JoinInner
	if optional {
		kind = sqlbuilder.JoinLeft
	}

	source, target, matchBoth := relDirection(rel, leftAlias, rightAlias)
	var onCond string
	if matchBoth {
		onCond = fmt.Sprintf(
			"((%[1]s.source_id = %[2]s.id AND %[1]s.target_id = %[3]s.id) OR (%[1]s.source_id = %[3]s.id AND %[1]s.target_id = %[2]s.id))",
			alias, leftAlias, rightAlias,
		)
	} else {
		onCond = fmt.Sprintf("%s.source_id = %s.id AND %s.target_id = %s.id", alias, source, alias, target)
	}

	if len(rel.Types) > 0 {
		typeParts := make([]string, len(rel.Types))
		for i, t := range rel.Types {
			typeParts[i] = fmt.Sprintf("%s.type = '%s'", alias, escapeString(t))
		}
		onCond = fmt.Sprintf("(%s) AND (%s)", onCond, strings.Join(typeParts, " OR "))
	}

	b.Join(kind, "edges", alias, onCond)

	if rel.Properties != nil {
		for _, entry := range rel.Properties.Entries {
			prevComparison := c.InComparison
			c.InComparison = true
			valSQL, err := c.TransformExpr(entry.Value)
			c.InComparison = prevComparison
			if err != nil {
				return "", err
			}
			b.Where(fmt.Sprintf("%s = %s", propertyAccessSQL(alias, entry.Key, true, true), valSQL))
		}
	}
	return "", nil
}

// transformVarLenRelPattern builds the recursive CTE that walks a
// `*min..max` relationship.6: columns
// (start_id, end_id, depth, path_ids, visited), cycle detection via
// `visited NOT LIKE '%,tgt,%'`, and a MIN(depth) filter layered on for
// shortestPath()/allShortestPaths() patterns. It returns the CTE's
// name so the caller can add the shortest-path MIN(depth) filter.
func (c *Ctx) transformVarLenRelPattern(b *sqlbuilder.Builder, leftAlias string, rel *ast.RelPattern, rightAlias string, optional bool) (string, error) {
	cteName := c.NextCTEName("varlen_path")
	maxDepth := rel.VarLen.Max
	if rel.VarLen.Unbounded {
		maxDepth = 100
	}

	var typeFilter string
	if len(rel.Types) > 0 {
		parts := make([]string, len(rel.Types))
		for i, t := range rel.Types {
			parts[i] = fmt.Sprintf("e.type = '%s'", escapeString(t))
		}
		typeFilter = " AND (" + strings.Join(parts, " OR ") + ")"
	}

	source, target := "e.source_id", "e.target_id"
	if rel.LeftArrow && !rel.RightArrow {
		source, target = "e.target_id", "e.source_id"
	}

	body := fmt.Sprintf(
		`SELECT %[1]s AS start_id, %[2]s AS end_id, 1 AS depth,
       CAST(%[1]s AS TEXT) || ',' || CAST(%[2]s AS TEXT) AS path_ids,
       ',' || CAST(%[1]s AS TEXT) || ',' || CAST(%[2]s AS TEXT) || ',' AS visited
FROM edges e
WHERE 1=1%[3]s
UNION ALL
SELECT cte.start_id, %[2]s, cte.depth + 1,
       cte.path_ids || ',' || CAST(%[2]s AS TEXT),
       cte.visited || CAST(%[2]s AS TEXT) || ','
FROM edges e
JOIN %[4]s cte ON %[1]s = cte.end_id
WHERE cte.depth < %[5]d%[3]s AND cte.visited NOT LIKE '%%,' || CAST(%[2]s AS TEXT) || ',%%'`,
		source, target, typeFilter, cteName, maxDepth,
	)
	b.CTE(cteName, body, true)

	kind := sqlbuilder.JoinInner
	if optional {
		kind = sqlbuilder.JoinLeft
	}
	b.Join(kind, cteName, cteName, fmt.Sprintf(
		"%s.start_id = %s.id AND %s.end_id = %s.id",
		cteName, leftAlias, cteName, rightAlias,
	))

	if rel.VarLen.Min > 1 {
		b.Where(fmt.Sprintf("%s.depth >= %d", cteName, rel.VarLen.Min))
	}

	if rel.Variable != "" {
		c.Scope.RegisterProjected(rel.Variable, fmt.Sprintf("%s.path_ids", cteName))
	}
	return cteName, nil
}
