package transform

// flushPendingJoins drains Ctx's pending-property-join buffer into the
// Builder immediately before WHERE/output is finalized. JoinRaw always
// appends after the last JOIN and before WHERE is ever rendered, so
// ordering is correct by construction.
func (c *Ctx) flushPendingJoins() {
	for _, join := range c.TakePendingJoins() {
		c.Builder.JoinRaw(join)
	}
}

// Finalize drains pending joins, renders the SQL (read builder,
// accumulated write statements, or both joined with a semicolon), and
// returns the compiled Result. It is the transform's single exit
// point; every entry point (TransformStatement) funnels through it.
func (c *Ctx) Finalize() (*Result, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}

	var sql string
	switch {
	case c.unionSQL != "":
		sql = c.unionSQL
	case c.Writer != nil && c.Writer.Len() > 0 && c.Builder != nil && c.Builder.HasFrom():
		c.flushPendingJoins()
		sql = c.Writer.ToString() + ";\n" + c.Builder.ToString()
	case c.Writer != nil && c.Writer.Len() > 0:
		sql = c.Writer.ToString()
	case c.Builder != nil:
		c.flushPendingJoins()
		sql = c.Builder.ToString()
	}

	return &Result{SQL: sql, Params: c.Params()}, nil
}
