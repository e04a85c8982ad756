package transform

import (
	"fmt"
	"strings"

	"github.com/cyphersql/compiler/engine/ast"
)

// pageRankIterations is the fixed unrolling depth for pageRank()'s
// sequential-CTE approximation.
const pageRankIterations = 20

const dampingFactor = "0.85"

// nextIndex reserves the next per-construct counter value, used to
// name pageRank/labelPropagation's whole family of CTEs
// ("_pagerank_<idx>_nc", "_pagerank_<idx>_pr0" ... ) so two calls in
// the same query never collide.
func (c *Ctx) nextIndex() int {
	i := c.cteCounter
	c.cteCounter++
	return i
}

func (c *Ctx) dispatchAlgo(fc *ast.FunctionCall) (string, error) {
	switch strings.ToUpper(fc.Name) {
	case "PAGERANK":
		return c.pageRank(fc, "", "")
	case "TOPPAGERANK":
		if len(fc.Args) != 1 {
			return "", c.Fail(errInvalidArgument("topPageRank() takes exactly one argument"))
		}
		limitSQL, err := c.argSQL(fc.Args[0])
		if err != nil {
			return "", err
		}
		return c.pageRank(fc, "", limitSQL)
	case "PERSONALIZEDPAGERANK":
		if len(fc.Args) != 1 {
			return "", c.Fail(errInvalidArgument("personalizedPageRank() takes exactly one argument"))
		}
		seedSQL, err := c.argSQL(fc.Args[0])
		if err != nil {
			return "", err
		}
		return c.pageRank(fc, seedSQL, "")
	case "LABELPROPAGATION", "COMMUNITIES":
		return c.labelPropagation(fc)
	case "COMMUNITYOF":
		return c.communityOf(fc)
	case "COMMUNITYMEMBERS":
		return c.communityMembers(fc)
	case "COMMUNITYCOUNT":
		return c.communityCount(fc)
	default:
		return "", c.Fail(errUnsupportedFunction(fc.Name))
	}
}

// pageRank builds the node-count / out-degree / pr0..prN CTE chain
// from and returns a json_group_array of {node_id,score}
// ordered by score descending. seedSQL non-empty selects the
// personalized teleport term (concentrated on the seed node instead
// of spread uniformly); limitSQL non-empty wraps the result in an
// outer LIMIT for topPageRank().
func (c *Ctx) pageRank(fc *ast.FunctionCall, seedSQL, limitSQL string) (string, error) {
	idx := c.nextIndex()
	ncName := fmt.Sprintf("_pagerank_%d_nc", idx)
	odName := fmt.Sprintf("_pagerank_%d_od", idx)

	c.Builder.CTE(ncName, "SELECT COUNT(*) AS cnt FROM nodes", false)
	c.Builder.CTE(odName, "SELECT source_id AS node_id, COUNT(*) AS out_degree FROM edges GROUP BY source_id", false)

	teleport := fmt.Sprintf("(1.0 - %s) / (SELECT cnt FROM %s)", dampingFactor, ncName)
	if seedSQL != "" {
		teleport = fmt.Sprintf(
			"(CASE WHEN n.id = %s THEN (1.0 - %s) ELSE 0.0 END)",
			seedSQL, dampingFactor,
		)
	}

	pr0Name := fmt.Sprintf("_pagerank_%d_pr0", idx)
	c.Builder.CTE(pr0Name, fmt.Sprintf(
		"SELECT n.id AS node_id, 1.0 / (SELECT cnt FROM %s) AS score FROM nodes n",
		ncName,
	), false)

	prevName := pr0Name
	for i := 1; i <= pageRankIterations; i++ {
		curName := fmt.Sprintf("_pagerank_%d_pr%d", idx, i)
		body := fmt.Sprintf(
			`SELECT n.id AS node_id,
       %[1]s + %[2]s * COALESCE(SUM(prev.score / od.out_degree), 0) AS score
FROM nodes n
LEFT JOIN edges e ON e.target_id = n.id
LEFT JOIN %[3]s prev ON prev.node_id = e.source_id
LEFT JOIN %[4]s od ON od.node_id = e.source_id
GROUP BY n.id`,
			teleport, dampingFactor, prevName, odName,
		)
		c.Builder.CTE(curName, body, false)
		prevName = curName
	}

	inner := fmt.Sprintf(
		"SELECT node_id, score FROM %s ORDER BY score DESC, node_id ASC",
		prevName,
	)
	if limitSQL != "" {
		inner += fmt.Sprintf(" LIMIT %s", limitSQL)
	}
	return fmt.Sprintf(
		"(SELECT json_group_array(json_object('node_id', node_id, 'score', score)) FROM (%s))",
		inner,
	), nil
}

// labelPropagation implements label-propagation
// unrolling: each node's community is seeded from its own id, then
// repeatedly updated to the most common neighboring community, ties
// broken by the lowest label id via `ROW_NUMBER() OVER (PARTITION BY
// node ORDER BY COUNT(*) DESC, label ASC)`.
func (c *Ctx) labelPropagation(fc *ast.FunctionCall) (string, error) {
	idx := c.nextIndex()
	lp0Name := fmt.Sprintf("_labelprop_%d_lp0", idx)
	c.Builder.CTE(lp0Name, "SELECT id AS node_id, id AS label FROM nodes", false)

	prevName := lp0Name
	for i := 1; i <= pageRankIterations; i++ {
		curName := fmt.Sprintf("_labelprop_%d_lp%d", idx, i)
		body := fmt.Sprintf(
			`SELECT node_id, label FROM (
  SELECT n.id AS node_id, prev.label AS label,
         ROW_NUMBER() OVER (PARTITION BY n.id ORDER BY COUNT(*) DESC, prev.label ASC) AS rn
  FROM nodes n
  JOIN edges e ON e.target_id = n.id OR e.source_id = n.id
  JOIN %[1]s prev ON prev.node_id = (CASE WHEN e.target_id = n.id THEN e.source_id ELSE e.target_id END)
  GROUP BY n.id, prev.label
) ranked
WHERE rn = 1`,
			prevName,
		)
		c.Builder.CTE(curName, body, false)
		prevName = curName
	}

	return fmt.Sprintf(
		"(SELECT json_group_array(json_object('node_id', node_id, 'community', label)) FROM %s)",
		prevName,
	), nil
}

func (c *Ctx) communityOf(fc *ast.FunctionCall) (string, error) {
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument("communityOf() takes exactly one argument"))
	}
	result, err := c.labelPropagation(fc)
	if err != nil {
		return "", err
	}
	nodeSQL, err := c.argSQL(fc.Args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"(SELECT json_extract(value, '$.community') FROM json_each(%s) WHERE json_extract(value, '$.node_id') = %s)",
		result, nodeSQL,
	), nil
}

func (c *Ctx) communityMembers(fc *ast.FunctionCall) (string, error) {
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument("communityMembers() takes exactly one argument"))
	}
	result, err := c.labelPropagation(fc)
	if err != nil {
		return "", err
	}
	commSQL, err := c.argSQL(fc.Args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"(SELECT json_group_array(json_extract(value, '$.node_id')) FROM json_each(%s) WHERE json_extract(value, '$.community') = %s)",
		result, commSQL,
	), nil
}

func (c *Ctx) communityCount(fc *ast.FunctionCall) (string, error) {
	result, err := c.labelPropagation(fc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"(SELECT COUNT(DISTINCT json_extract(value, '$.community')) FROM json_each(%s))",
		result,
	), nil
}
