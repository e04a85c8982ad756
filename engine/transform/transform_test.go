package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphersql/compiler/engine/parser"
)

func compile(t *testing.T, cypher string) *Result {
	t.Helper()
	stmt, err := parser.Parse(cypher)
	require.NoError(t, err, "parsing %q", cypher)
	res, err := TransformStatement(stmt)
	require.NoError(t, err, "transforming %q", cypher)
	return res
}

// S1: a simple property MATCH/RETURN compiles to a single SELECT over
// the nodes table with a COALESCE property read and a bound parameter.
func TestSimplePropertyMatchReturn(t *testing.T) {
	res := compile(t, `MATCH (n:Person {name: $name}) RETURN n.age AS age`)

	assert.Contains(t, res.SQL, "SELECT")
	assert.Contains(t, res.SQL, "FROM")
	assert.Contains(t, res.SQL, "COALESCE")
	assert.Contains(t, res.SQL, ":name")
	assert.Equal(t, []string{"name"}, res.Params)
}

// S2: a variable-length relationship traversal compiles to a recursive
// CTE with cycle detection over a comma-joined visited list.
func TestVariableLengthTraversalEmitsCycleSafeRecursiveCTE(t *testing.T) {
	res := compile(t, `MATCH (a)-[:KNOWS*1..3]->(b) RETURN a, b`)

	assert.Contains(t, res.SQL, "WITH RECURSIVE")
	assert.Contains(t, res.SQL, "path_ids")
	assert.Contains(t, res.SQL, "visited NOT LIKE")
	assert.True(t, strings.Index(res.SQL, "WITH RECURSIVE") < strings.Index(res.SQL, "SELECT"))
}

// S3: a WITH clause carrying an aggregate introduces an implicit
// GROUP BY over the non-aggregated projected columns.
func TestWithClauseAggregateImpliesGroupBy(t *testing.T) {
	res := compile(t, `MATCH (n:Person)-[:KNOWS]->(m) WITH n, count(m) AS degree RETURN n, degree`)

	assert.Contains(t, res.SQL, "GROUP BY")
	assert.Contains(t, res.SQL, "COUNT(")
}

// S4: UNWIND compiles to a json_each-backed CTE rather than an inline
// UNION ALL of literal values, since the list may be a bound parameter.
func TestUnwindEmitsJSONEachCTE(t *testing.T) {
	res := compile(t, `UNWIND [1, 2, 3] AS x RETURN x`)

	assert.Contains(t, res.SQL, "json_each(")
	assert.Contains(t, res.SQL, "SELECT value FROM json_each(")
}

// S5: pageRank() unrolls into a fixed count of sequential CTEs rather
// than a single recursive step, matching the 20-iteration unroll.
func TestPageRankUnrollsFixedIterationCount(t *testing.T) {
	res := compile(t, `MATCH (n) RETURN n, pageRank(n) AS score ORDER BY score DESC`)

	require.Contains(t, res.SQL, "_pagerank_0_pr0")
	assert.Contains(t, res.SQL, "_pagerank_0_pr20")
	assert.NotContains(t, res.SQL, "_pagerank_0_pr21")
}

// S6: an IS NOT NULL check on a property in comparison context reads
// straight from the typed property tables, not the projection-context
// COALESCE-to-NULL form.
func TestPropertyNullCheckInComparisonContext(t *testing.T) {
	res := compile(t, `MATCH (n:Person) WHERE n.email IS NOT NULL RETURN n`)

	assert.Contains(t, res.SQL, "IS NOT NULL")
	assert.Contains(t, res.SQL, "property_keys")
}

// Invariant 1: clause emission order in the final SQL text always
// matches SELECT/FROM/JOIN/WHERE/GROUP BY/ORDER BY/LIMIT regardless of
// how the Cypher clauses were interleaved, and the CTE prefix (if any)
// is excluded from the ordering check since it's prepended separately.
func TestEmissionOrderIsCanonicalRegardlessOfClauseOrder(t *testing.T) {
	res := compile(t, `MATCH (n:Person) WHERE n.age > 18 RETURN n.name ORDER BY n.name LIMIT 10`)

	body := res.SQL
	wantOrder := []string{"SELECT", "FROM", "WHERE", "ORDER BY", "LIMIT"}
	last := -1
	for _, kw := range wantOrder {
		idx := strings.Index(body, kw)
		require.NotEqual(t, -1, idx, "missing %q in: %s", kw, body)
		assert.Greater(t, idx, last, "expected %q after previous clause in: %s", kw, body)
		last = idx
	}
}

// Invariant 3: alias uniqueness — two anonymous node patterns in one
// query never collide on the same default alias.
func TestAnonymousAliasesAreUnique(t *testing.T) {
	res := compile(t, `MATCH (:Person)-[:KNOWS]->(:Person) RETURN 1`)

	assert.Contains(t, res.SQL, "_gql_default_alias_0")
	assert.Contains(t, res.SQL, "_gql_default_alias_1")
}

// Invariant 4: a parameter referenced more than once still appears
// exactly once in the compiled parameter list, at its first-use position.
func TestRepeatedParameterDedupes(t *testing.T) {
	res := compile(t, `MATCH (n:Person) WHERE n.age > $minAge AND n.age < $minAge + 10 RETURN n`)

	assert.Equal(t, []string{"minAge"}, res.Params)
	assert.Equal(t, 2, strings.Count(res.SQL, ":minAge"))
}

// Invariant 8: compiling the same statement twice from independent
// Ctx values yields byte-identical SQL — the builder carries no
// cross-call state leakage.
func TestCompilingTwiceIsIdempotent(t *testing.T) {
	const cypher = `MATCH (n:Person)-[:KNOWS]->(m:Person) WHERE n.age > $age RETURN n.name, m.name`

	first := compile(t, cypher)
	second := compile(t, cypher)

	assert.Equal(t, first.SQL, second.SQL)
	assert.Equal(t, first.Params, second.Params)
}

// A property-aggregate access (e.g. avg(n.age)) routes through three
// LEFT JOINs to the typed property tables instead of a per-row
// COALESCE subquery, and each joined alias appears exactly once,
// positioned before WHERE.
func TestPropertyAggregateJoinInjectedOnce(t *testing.T) {
	res := compile(t, `MATCH (n:Person) WHERE n.age > 0 RETURN avg(n.age) AS average`)

	assert.Equal(t, 1, strings.Count(res.SQL, "LEFT JOIN node_props_int AS _aggprop_"))
	assert.Equal(t, 1, strings.Count(res.SQL, "LEFT JOIN node_props_real AS _aggprop_"))
	assert.Equal(t, 1, strings.Count(res.SQL, "LEFT JOIN node_props_text AS _aggprop_"))

	whereIdx := strings.Index(res.SQL, "\nWHERE ")
	joinIdx := strings.LastIndex(res.SQL[:whereIdx], "LEFT JOIN node_props_text AS _aggprop_")
	require.NotEqual(t, -1, whereIdx)
	require.NotEqual(t, -1, joinIdx)
	assert.Less(t, joinIdx, whereIdx)
}

func TestUnsupportedFunctionIsAnError(t *testing.T) {
	stmt, err := parser.Parse(`MATCH (n) RETURN totallyMadeUpFunction(n.age)`)
	require.NoError(t, err)

	_, err = TransformStatement(stmt)
	require.Error(t, err)
}
