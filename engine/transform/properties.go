package transform

import (
	"fmt"

	"github.com/cyphersql/compiler/engine/ast"
)

// propertyTableSuffix picks which typed property table a literal value
// belongs to (int/real/bool), falling back to text for strings and for
// any non-literal expression whose runtime type can't be known at
// compile time.
func propertyTableSuffix(value ast.Expr) string {
	lit, ok := value.(*ast.Literal)
	if !ok {
		return "text"
	}
	switch lit.Kind {
	case ast.LitInteger:
		return "int"
	case ast.LitDecimal:
		return "real"
	case ast.LitBoolean:
		return "bool"
	default:
		return "text"
	}
}

// propertyKeyLookup returns the subselect that resolves a property
// name to its property_keys.id, shared by every typed-table branch
// below.
func propertyKeyLookup(key string) string {
	return fmt.Sprintf("(SELECT id FROM property_keys WHERE key = '%s')", escapeString(key))
}

// typedValueSubselect returns `(SELECT value FROM <table> WHERE
// <idColumn> = alias.id AND key_id = <keyLookup>)`, the shape repeated
// across all four typed property tables for both nodes and edges.
func typedValueSubselect(table, idColumn, alias, key string) string {
	return fmt.Sprintf(
		"(SELECT value FROM %s WHERE %s = %s.id AND key_id = %s)",
		table, idColumn, alias, propertyKeyLookup(key),
	)
}

// propertyAccessSQL emits the COALESCE-over-four-typed-tables read for
// alias.key. comparisonContext controls the COALESCE ordering and
// casting:
//
//   - comparison context (inside WHERE, a binary operator operand, an
//     ORDER BY key): numeric types are kept distinct so comparisons and
//     sorts behave numerically — int, then real, then text, then bool.
//   - return context (a bare RETURN/WITH projection): every branch is
//     coerced to TEXT so the column has one stable type, with booleans
//     spelled out as the strings "true"/"false" rather than 0/1.
//
// isEdge selects the edge_props_* tables and an "edge_id" join column
// instead of node_props_* / "node_id".
func propertyAccessSQL(alias, key string, isEdge, comparisonContext bool) string {
	prefix := "node_props_"
	idCol := "node_id"
	if isEdge {
		prefix = "edge_props_"
		idCol = "edge_id"
	}
	intVal := typedValueSubselect(prefix+"int", idCol, alias, key)
	realVal := typedValueSubselect(prefix+"real", idCol, alias, key)
	textVal := typedValueSubselect(prefix+"text", idCol, alias, key)
	boolVal := typedValueSubselect(prefix+"bool", idCol, alias, key)

	if comparisonContext {
		return fmt.Sprintf("COALESCE(%s, %s, %s, %s)", intVal, realVal, textVal, boolVal)
	}

	boolAsText := fmt.Sprintf(
		"CASE %s WHEN 1 THEN 'true' WHEN 0 THEN 'false' END",
		boolVal,
	)
	return fmt.Sprintf(
		"COALESCE(%s, CAST(%s AS TEXT), CAST(%s AS TEXT), %s)",
		textVal, intVal, realVal, boolAsText,
	)
}

// aggregatePropertyJoinSQL resolves prop via three LEFT JOINs (int,
// real, text property tables) routed through a per-call alias prefix,
// queued on the pending-join buffer for the Finalizer to splice in
// immediately before WHERE, instead of the ordinary per-row COALESCE
// subquery — letting the aggregate read the joined columns directly.
func (c *Ctx) aggregatePropertyJoinSQL(prop *ast.Property) (string, error) {
	alias, isEdge, err := c.baseAlias(prop.Base)
	if err != nil {
		return "", err
	}
	idCol, tablePrefix := "node_id", "node_props_"
	if isEdge {
		idCol, tablePrefix = "edge_id", "edge_props_"
	}

	prefix := c.NextCTEName("aggprop")
	intAlias := prefix + "_int"
	realAlias := prefix + "_real"
	textAlias := prefix + "_text"
	keyLookup := propertyKeyLookup(prop.Key)

	for _, j := range []struct{ table, alias string }{
		{tablePrefix + "int", intAlias},
		{tablePrefix + "real", realAlias},
		{tablePrefix + "text", textAlias},
	} {
		c.AddPendingJoin(fmt.Sprintf(
			"LEFT JOIN %s AS %s ON %s.%s = %s.id AND %s.key_id = %s",
			j.table, j.alias, j.alias, idCol, alias, j.alias, keyLookup,
		))
	}

	return fmt.Sprintf(
		"COALESCE(%s.value, %s.value, CAST(%s.value AS REAL))",
		intAlias, realAlias, textAlias,
	), nil
}

// escapeString doubles embedded single quotes for safe inline
// SQL-literal embedding; property keys and label names come from the
// parsed query text, not user-controlled runtime values, but the
// transform still never splices them unescaped.
func escapeString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
