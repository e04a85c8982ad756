package transform

import "github.com/cyphersql/compiler/engine/ast"

// Result is the output of compiling one Cypher statement: the
// assembled SQL (read query, write statements, or both joined by the
// Finalizer) and the named parameters referenced, in first-appearance
// order, for the caller to bind by name.
type Result struct {
	SQL    string
	Params []string
}

// TransformStatement walks stmt and returns the compiled SQL, per
// data flow: parser -> AST -> TransformCtx walks it via
// Scope -> writes SqlBuilder -> accumulates CTEs -> Finalizer
// concatenates -> SQL string + parameter list.
func TransformStatement(stmt ast.Statement) (*Result, error) {
	c := New()
	switch s := stmt.(type) {
	case *ast.Query:
		if err := c.transformQueryBody(s); err != nil {
			return nil, err
		}
	case *ast.Union:
		if err := c.transformUnion(s); err != nil {
			return nil, err
		}
	default:
		return nil, c.Fail(errInvalidArgument("unsupported top-level statement"))
	}
	return c.Finalize()
}

func (c *Ctx) transformQueryBody(q *ast.Query) error {
	for _, clause := range q.Clauses {
		if err := c.TransformClause(clause); err != nil {
			return err
		}
	}
	return nil
}

// transformUnion compiles each branch with a fresh Builder/Scope
// (InUnion set so clause handlers know not to leak Select aliases
// across branches) and combines them with UNION [ALL], matching
// UNION handling.
func (c *Ctx) transformUnion(u *ast.Union) error {
	c.InUnion = true
	defer func() { c.InUnion = false }()

	branches := make([]string, len(u.Queries))
	for i, q := range u.Queries {
		c.Reset()
		if err := c.transformQueryBody(q); err != nil {
			return err
		}
		c.flushPendingJoins()
		branches[i] = c.Builder.ToString()
	}

	var sql string
	sql = branches[0]
	for i := 1; i < len(branches); i++ {
		joiner := "UNION"
		if u.All[i-1] {
			joiner = "UNION ALL"
		}
		sql = sql + "\n" + joiner + "\n" + branches[i]
	}
	c.Builder = nil // the union's combined text bypasses Builder; Finalize uses unionSQL below
	c.unionSQL = sql
	return nil
}
