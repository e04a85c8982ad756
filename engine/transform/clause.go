package transform

import (
	"fmt"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/scope"
	"github.com/cyphersql/compiler/engine/sqlbuilder"
)

// TransformClause dispatches one clause to its handler, then marks
// every currently bound variable Inherited afterward so the next
// clause's pattern transform can tell "already bound" from "needs a
// fresh join".
func (c *Ctx) TransformClause(clause ast.Clause) error {
	var err error
	switch cl := clause.(type) {
	case *ast.MatchClause:
		err = c.transformMatchClause(cl)
	case *ast.CreateClause:
		err = c.transformCreateClause(cl)
	case *ast.MergeClause:
		err = c.transformMergeClause(cl)
	case *ast.SetClause:
		err = c.transformSetClause(cl)
	case *ast.RemoveClause:
		err = c.transformRemoveClause(cl)
	case *ast.DeleteClause:
		err = c.transformDeleteClause(cl)
	case *ast.ReturnClause:
		err = c.transformReturnClause(cl)
	case *ast.WithClause:
		err = c.transformWithClause(cl)
	case *ast.UnwindClause:
		err = c.transformUnwindClause(cl)
	case *ast.ForeachClause:
		err = c.transformForeachClause(cl)
	case *ast.LoadCSVClause:
		err = c.Fail(errNotImplemented("LOAD CSV is not supported by this transform"))
	default:
		err = c.Fail(errUnsupportedClause(fmt.Sprintf("unsupported clause %T", clause)))
	}
	if err != nil {
		return err
	}
	c.Scope.MarkAllInherited()
	return nil
}

func (c *Ctx) transformMatchClause(m *ast.MatchClause) error {
	for _, p := range m.Patterns {
		if err := c.TransformPattern(c.Builder, p, m.Optional); err != nil {
			return err
		}
	}
	if m.Where != nil {
		prev := c.InComparison
		c.InComparison = true
		cond, err := c.TransformExpr(m.Where)
		c.InComparison = prev
		if err != nil {
			return err
		}
		c.Builder.Where(cond)
	}
	return nil
}

func (c *Ctx) transformReturnClause(r *ast.ReturnClause) error {
	if r.Distinct {
		c.Builder.Distinct()
	}
	var items []itemSQL
	anyAggregate := false
	for _, item := range r.Items {
		sql, alias, err := c.transformProjectionItem(item)
		if err != nil {
			return err
		}
		c.Builder.Select(sql, alias)
		isAgg := containsAggregate(item.Expr)
		anyAggregate = anyAggregate || isAgg
		items = append(items, itemSQL{sql: sql, isAggregate: isAgg})
	}
	addImplicitGroupBy(items, anyAggregate, c.Builder.GroupBy)
	for _, s := range r.OrderBy {
		prev := c.InComparison
		c.InComparison = true
		sql, err := c.TransformExpr(s.Expr)
		c.InComparison = prev
		if err != nil {
			return err
		}
		c.Builder.OrderBy(sql, s.Desc)
	}
	limit, offset := -1, -1
	if r.Limit != nil {
		n, err := c.literalInt(r.Limit)
		if err != nil {
			return err
		}
		limit = n
	}
	if r.Skip != nil {
		n, err := c.literalInt(r.Skip)
		if err != nil {
			return err
		}
		offset = n
	}
	if limit >= 0 || offset >= 0 {
		c.Builder.Limit(limit, offset)
	}
	return nil
}

// transformProjectionItem renders one RETURN/WITH item and picks its
// column alias: the explicit AS name, else a bare variable's own name,
// else a fresh generated alias. It registers nothing in scope;
// transformWithClause does that for WITH items.
func (c *Ctx) transformProjectionItem(item *ast.ReturnItem) (sql, alias string, err error) {
	alias = item.Alias
	if alias == "" {
		if id, ok := item.Expr.(*ast.Identifier); ok {
			alias = id.Name
		} else {
			alias = c.Scope.NextAlias()
		}
	}
	sql, err = c.TransformExpr(item.Expr)
	return sql, alias, err
}

func (c *Ctx) literalInt(e ast.Expr) (int, error) {
	l, ok := e.(*ast.Literal)
	if !ok || l.Kind != ast.LitInteger {
		return 0, c.Fail(errInvalidArgument("LIMIT/SKIP require an integer literal"))
	}
	return int(l.Int), nil
}

// transformWithClause behaves like RETURN but then resets Scope to
// just the projected items (each one rebound as a KindProjected
// variable aliased to its own projection column), matching Cypher's
// WITH scope-reset semantics, and lifts the prior FROM/JOIN state into
// a fresh CTE so the next clause builds on top of it instead of
// continuing to accumulate onto the same FROM.
func (c *Ctx) transformWithClause(w *ast.WithClause) error {
	if w.Distinct {
		c.Builder.Distinct()
	}
	type projected struct{ name, alias string }
	var projections []projected
	var items []itemSQL
	anyAggregate := false
	for _, item := range w.Items {
		sql, alias, err := c.transformProjectionItem(item)
		if err != nil {
			return err
		}
		c.Builder.Select(sql, alias)
		name := alias
		if item.Alias == "" {
			if id, ok := item.Expr.(*ast.Identifier); ok {
				name = id.Name
			}
		}
		projections = append(projections, projected{name: name, alias: alias})
		isAgg := containsAggregate(item.Expr)
		anyAggregate = anyAggregate || isAgg
		items = append(items, itemSQL{sql: sql, isAggregate: isAgg})
	}
	addImplicitGroupBy(items, anyAggregate, c.Builder.GroupBy)
	if w.Where != nil {
		prev := c.InComparison
		c.InComparison = true
		cond, err := c.TransformExpr(w.Where)
		c.InComparison = prev
		if err != nil {
			return err
		}
		c.Builder.Where(cond)
	}
	for _, s := range w.OrderBy {
		sql, err := c.TransformExpr(s.Expr)
		if err != nil {
			return err
		}
		c.Builder.OrderBy(sql, s.Desc)
	}

	cteName := c.NextCTEName("with")
	cteBody := c.Builder.ToSubquery()
	priorCTEs := c.Builder.GetCTEs()
	hadRecursive := c.Builder.HasRecursiveCTE()

	c.Reset()
	for _, prior := range priorCTEs {
		c.Builder.CTERaw(prior)
	}
	if hadRecursive {
		c.Builder.MarkRecursive()
	}
	c.Builder.CTE(cteName, cteBody, false)
	c.Builder.From(cteName, cteName)
	for _, p := range projections {
		c.Scope.RegisterProjected(p.name, cteName+"."+p.alias)
	}
	return nil
}

func (c *Ctx) transformUnwindClause(u *ast.UnwindClause) error {
	listSQL, err := c.TransformExpr(u.List)
	if err != nil {
		return err
	}
	cteName := c.NextCTEName("unwind")
	c.Builder.CTE(cteName, fmt.Sprintf("SELECT value FROM json_each(%s)", listSQL), false)
	c.Builder.Join(sqlbuilder.JoinCross, cteName, cteName, "")
	c.Scope.RegisterProjected(u.Alias, cteName+".value")
	return nil
}

func (c *Ctx) transformForeachClause(f *ast.ForeachClause) error {
	listSQL, err := c.TransformExpr(f.List)
	if err != nil {
		return err
	}
	cteName := c.NextCTEName("foreach")
	c.Builder.CTE(cteName, fmt.Sprintf("SELECT value FROM json_each(%s)", listSQL), false)
	c.Scope.RegisterProjected(f.Variable, cteName+".value")
	for _, body := range f.Body {
		if err := c.TransformClause(body); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Write clauses — accumulate statements onto Writer instead of Builder.
// ---------------------------------------------------------------------------

const createScratchTable = "_cypher_create_scratch"

func (c *Ctx) ensureCreateScratch() {
	if c.Writer == nil {
		c.Writer = sqlbuilder.NewWriteBuilder()
	}
	if c.scratchReady {
		return
	}
	c.Writer.Raw(fmt.Sprintf("CREATE TEMP TABLE IF NOT EXISTS %s (var_name TEXT PRIMARY KEY, node_id INTEGER)", createScratchTable))
	c.Writer.Raw(fmt.Sprintf("DELETE FROM %s", createScratchTable))
	c.scratchReady = true
}

// scratchRef returns the SQL expression that reads back a
// previously-recorded node's id for var (see ensureCreateScratch).
func scratchRef(varName string) string {
	return fmt.Sprintf("(SELECT node_id FROM %s WHERE var_name = '%s')", createScratchTable, escapeString(varName))
}

func (c *Ctx) transformCreateClause(cc *ast.CreateClause) error {
	c.ensureCreateScratch()
	for _, path := range cc.Patterns {
		if err := c.createPath(path); err != nil {
			return err
		}
	}
	return nil
}

func (c *Ctx) createPath(path *ast.Path) error {
	nodes := path.Nodes()
	rels := path.Rels()
	scratchNames := make([]string, len(nodes))

	for i, np := range nodes {
		name := np.Variable
		if name == "" {
			name = c.Scope.NextAlias()
		}
		scratchNames[i] = name

		if np.Variable != "" && c.Scope.IsBound(np.Variable) {
			continue // reuses a node already matched earlier in the query
		}
		if err := c.createNode(np, name); err != nil {
			return err
		}
		c.Scope.RegisterNode(np.Variable)
	}

	for i, rel := range rels {
		if err := c.createRel(rel, scratchNames[i], scratchNames[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Ctx) createNode(np *ast.NodePattern, scratchName string) error {
	c.Writer.Raw("INSERT INTO nodes DEFAULT VALUES")
	c.Writer.Raw(fmt.Sprintf(
		"INSERT INTO %s (var_name, node_id) VALUES ('%s', last_insert_rowid()) ON CONFLICT(var_name) DO UPDATE SET node_id = excluded.node_id",
		createScratchTable, escapeString(scratchName),
	))
	for _, label := range np.Labels {
		c.Writer.Raw(fmt.Sprintf(
			"INSERT INTO node_labels (node_id, label) VALUES (%s, '%s')",
			scratchRef(scratchName), escapeString(label),
		))
	}
	if np.Properties != nil {
		if err := c.createProperties("node", scratchRef(scratchName), np.Properties); err != nil {
			return err
		}
	}
	return nil
}

func (c *Ctx) createRel(rel *ast.RelPattern, leftScratch, rightScratch string) error {
	source, target := leftScratch, rightScratch
	if rel.LeftArrow && !rel.RightArrow {
		source, target = rightScratch, leftScratch
	}
	relType := ""
	if len(rel.Types) > 0 {
		relType = rel.Types[0]
	}
	c.Writer.InsertValues(sqlbuilder.InsertNormal, "edges", "source_id, target_id, type", fmt.Sprintf(
		"%s, %s, '%s'", scratchRef(source), scratchRef(target), escapeString(relType),
	))
	if rel.Variable != "" {
		c.Writer.Raw(fmt.Sprintf(
			"INSERT INTO %s (var_name, node_id) VALUES ('%s', last_insert_rowid()) ON CONFLICT(var_name) DO UPDATE SET node_id = excluded.node_id",
			createScratchTable, escapeString(rel.Variable),
		))
		c.Scope.RegisterEdge(rel.Variable)
	}
	if rel.Properties != nil {
		if err := c.createProperties("edge", scratchRef(rel.Variable), rel.Properties); err != nil {
			return err
		}
	}
	return nil
}

// createProperties emits an INSERT into the correctly-typed props
// table for each map-literal entry, based on the literal's own kind;
// non-literal property values fall back to the text table via
// CAST(... AS TEXT), since the target type can't be known until the
// expression is evaluated by the engine.
func (c *Ctx) createProperties(entityKind, idExpr string, m *ast.MapLiteral) error {
	idCol := "node_id"
	tablePrefix := "node_props_"
	if entityKind == "edge" {
		idCol, tablePrefix = "edge_id", "edge_props_"
	}
	for _, entry := range m.Entries {
		c.Writer.Raw(fmt.Sprintf("INSERT OR IGNORE INTO property_keys (key) VALUES ('%s')", escapeString(entry.Key)))
		table := tablePrefix + "text"
		valueSQL := ""
		switch lit := entry.Value.(type) {
		case *ast.Literal:
			switch lit.Kind {
			case ast.LitInteger:
				table = tablePrefix + "int"
				valueSQL = fmt.Sprintf("%d", lit.Int)
			case ast.LitDecimal:
				table = tablePrefix + "real"
				valueSQL = fmt.Sprintf("%g", lit.Decimal)
			case ast.LitBoolean:
				table = tablePrefix + "bool"
				if lit.Bool {
					valueSQL = "1"
				} else {
					valueSQL = "0"
				}
			default:
				valueSQL = c.transformLiteral(lit)
			}
		default:
			sql, err := c.TransformExpr(entry.Value)
			if err != nil {
				return err
			}
			valueSQL = fmt.Sprintf("CAST(%s AS TEXT)", sql)
		}
		c.Writer.InsertSelect(sqlbuilder.InsertNormal, table, idCol+", key_id, value", fmt.Sprintf(
			"SELECT %s, (SELECT id FROM property_keys WHERE key = '%s'), %s",
			idExpr, escapeString(entry.Key), valueSQL,
		))
	}
	return nil
}

func (c *Ctx) transformSetClause(s *ast.SetClause) error {
	if c.Writer == nil {
		c.Writer = sqlbuilder.NewWriteBuilder()
	}
	for _, item := range s.Items {
		if err := c.applySetItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (c *Ctx) applySetItem(item *ast.SetItem) error {
	v, ok := c.Scope.Lookup(item.Variable)
	if !ok {
		return c.Fail(errUnboundVariable(fmt.Sprintf("variable %q is not bound in this scope", item.Variable)))
	}
	isEdge := v.Kind == scope.KindEdge
	idCol, tablePrefix := "node_id", "node_props_"
	if isEdge {
		idCol, tablePrefix = "edge_id", "edge_props_"
	}

	fromClause := c.CurrentFromClause()

	if item.Label != "" {
		c.Writer.InsertSelect(sqlbuilder.InsertOrIgnore, "node_labels", "node_id, label", fmt.Sprintf(
			"SELECT %s.id, '%s'\n%s",
			v.Alias, escapeString(item.Label), fromClause,
		))
		return nil
	}

	valueSQL, err := c.TransformExpr(item.Value)
	if err != nil {
		return err
	}
	c.Writer.Raw(fmt.Sprintf("INSERT OR IGNORE INTO property_keys (key) VALUES ('%s')", escapeString(item.Property)))
	for _, suffix := range []string{"text", "int", "real", "bool"} {
		c.Writer.DeleteWhereIn(tablePrefix+suffix, idCol, fmt.Sprintf(
			"SELECT %s.id\n%s", v.Alias, fromClause,
		))
	}
	c.Writer.InsertSelect(sqlbuilder.InsertNormal, tablePrefix+"text", idCol+", key_id, value", fmt.Sprintf(
		"SELECT %s.id, (SELECT id FROM property_keys WHERE key = '%s'), %s\n%s",
		v.Alias, escapeString(item.Property), valueSQL, fromClause,
	))
	return nil
}

func (c *Ctx) transformRemoveClause(r *ast.RemoveClause) error {
	if c.Writer == nil {
		c.Writer = sqlbuilder.NewWriteBuilder()
	}
	for _, item := range r.Items {
		v, ok := c.Scope.Lookup(item.Variable)
		if !ok {
			return c.Fail(errUnboundVariable(fmt.Sprintf("variable %q is not bound in this scope", item.Variable)))
		}
		if item.Label != "" {
			c.Writer.Delete("node_labels", fmt.Sprintf("node_id = %s.id AND label = '%s'", v.Alias, escapeString(item.Label)))
			continue
		}
		idCol, tablePrefix := "node_id", "node_props_"
		if v.Kind == scope.KindEdge {
			idCol, tablePrefix = "edge_id", "edge_props_"
		}
		for _, suffix := range []string{"text", "int", "real", "bool"} {
			c.Writer.Delete(tablePrefix+suffix, fmt.Sprintf(
				"%s = %s.id AND key_id = (SELECT id FROM property_keys WHERE key = '%s')",
				idCol, v.Alias, escapeString(item.Property),
			))
		}
	}
	return nil
}

func (c *Ctx) transformDeleteClause(d *ast.DeleteClause) error {
	if c.Writer == nil {
		c.Writer = sqlbuilder.NewWriteBuilder()
	}
	for _, expr := range d.Items {
		id, ok := expr.(*ast.Identifier)
		if !ok {
			return c.Fail(errInvalidArgument("DELETE requires a direct variable reference"))
		}
		v, ok := c.Scope.Lookup(id.Name)
		if !ok {
			return c.Fail(errUnboundVariable(fmt.Sprintf("variable %q is not bound in this scope", id.Name)))
		}
		if v.Kind == scope.KindEdge {
			c.Writer.Delete("edges", fmt.Sprintf("id = %s.id", v.Alias))
			continue
		}
		if d.Detach {
			c.Writer.Delete("edges", fmt.Sprintf("source_id = %s.id OR target_id = %s.id", v.Alias, v.Alias))
		}
		// Non-DETACH DELETE never verifies the node has no remaining
		// edges before deleting it.
		c.Writer.Delete("nodes", fmt.Sprintf("id = %s.id", v.Alias))
	}
	return nil
}

// transformMergeClause resolves MERGE as MATCH-or-CREATE: it tries the
// pattern as an optional MATCH; ON CREATE/ON MATCH SET items are then
// applied unconditionally against whichever branch produced a
// binding, since expressing "if no row matched" requires data the
// transform layer alone cannot observe before execution.
func (c *Ctx) transformMergeClause(m *ast.MergeClause) error {
	if err := c.TransformPattern(c.Builder, m.Pattern, true); err != nil {
		return err
	}
	for _, item := range m.OnMatchSets {
		if err := c.applySetItem(item); err != nil {
			return err
		}
	}
	for _, item := range m.OnCreateSets {
		if err := c.applySetItem(item); err != nil {
			return err
		}
	}
	return nil
}
