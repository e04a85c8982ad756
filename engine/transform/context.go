// Package transform walks a parsed Cypher AST and emits SQL against
// the relational property-graph schema (engine/schema), split into one
// Go file per concern instead of one shared struct.
package transform

import (
	"fmt"
	"strings"

	"github.com/cyphersql/compiler/engine/scope"
	"github.com/cyphersql/compiler/engine/sqlbuilder"
)

// Ctx owns everything one query transform needs: the SqlBuilder being
// assembled, the variable Scope, the ordered/deduplicated parameter
// list, a CTE counter, the pending-property-join buffer the Finalizer
// flushes, and a handful of transient flags, all folded into
// this struct; there is exactly one Ctx per query (or per UNION
// branch), never shared across goroutines.
type Ctx struct {
	Builder *sqlbuilder.Builder
	Scope   *scope.Scope
	// Writer accumulates INSERT/UPDATE/DELETE statements for
	// CREATE/SET/REMOVE/DELETE/MERGE clauses; nil until the first write
	// clause in a query allocates it.
	Writer       *sqlbuilder.WriteBuilder
	scratchReady bool

	paramOrder []string
	paramSeen  map[string]bool

	cteCounter int

	// pendingJoins accumulates JOINs that an aggregate-over-property
	// access or a map projection discovers it needs, so they can be
	// flushed once immediately before WHERE is finalized rather than
	// injected mid-expression.
	pendingJoins []string

	InComparison bool   // current expression is being evaluated as an operand of a comparison/arithmetic operator, not projected directly
	InUnion      bool
	CurrentGraph string

	// unionSQL holds a UNION statement's fully combined branches; when
	// set, Finalize emits it instead of rendering Builder.
	unionSQL string

	err error
}

// New returns a fresh Ctx ready to transform one query.
func New() *Ctx {
	return &Ctx{
		Builder:   sqlbuilder.New(),
		Scope:     scope.New(),
		paramSeen: make(map[string]bool),
	}
}

// Reset clears the builder/scope/pending-joins for a new UNION branch
// or subquery, while keeping the parameter list and CTE counter
// global across the whole statement.
func (c *Ctx) Reset() {
	c.Builder = sqlbuilder.New()
	c.Scope.Reset()
	c.pendingJoins = nil
}

// NextCTEName returns a fresh, globally unique CTE name of the form
// "_<prefix>_<n>", matching the original's per-construct counters
// (_varlen_path_N, _with_N, _unwind_N, _pagerank_N_*).
func (c *Ctx) NextCTEName(prefix string) string {
	name := fmt.Sprintf("_%s_%d", prefix, c.cteCounter)
	c.cteCounter++
	return name
}

// Param records name (first-appearance order, deduplicated) and
// returns its SQL placeholder. An empty name is an unnamed positional
// parameter, which always renders as a bare "?" and is never
// deduplicated against anything.
func (c *Ctx) Param(name string) string {
	if name == "" {
		return "?"
	}
	if !c.paramSeen[name] {
		c.paramSeen[name] = true
		c.paramOrder = append(c.paramOrder, name)
	}
	return ":" + name
}

// Params returns every named parameter seen so far, in first-appearance order.
func (c *Ctx) Params() []string { return append([]string(nil), c.paramOrder...) }

// AddPendingJoin queues a JOIN fragment for the Finalizer to flush
// before WHERE is emitted.
func (c *Ctx) AddPendingJoin(join string) {
	c.pendingJoins = append(c.pendingJoins, join)
}

// TakePendingJoins drains and returns the pending-join buffer.
func (c *Ctx) TakePendingJoins() []string {
	out := c.pendingJoins
	c.pendingJoins = nil
	return out
}

// CurrentFromClause renders the builder's current FROM/JOIN/WHERE
// chain as a standalone suffix, for splicing onto a write clause's
// INSERT ... SELECT so its SELECT can still reference an alias bound
// by an earlier MATCH/MERGE pattern.
func (c *Ctx) CurrentFromClause() string {
	var sb strings.Builder
	sb.WriteString("FROM ")
	sb.WriteString(c.Builder.GetFrom())
	if joins := c.Builder.GetJoins(); joins != "" {
		sb.WriteString("\n")
		sb.WriteString(joins)
	}
	if where := c.Builder.GetWhere(); where != "" {
		sb.WriteString("\nWHERE ")
		sb.WriteString(where)
	}
	return sb.String()
}

// Fail records err in the Ctx's error slot if one isn't already set
// (first-error-wins) and returns it unchanged, so call sites can write
// `return c.Fail(err)`.
func (c *Ctx) Fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return err
}

// Err returns the first error recorded against this Ctx, if any.
func (c *Ctx) Err() error { return c.err }
