// Package sqlbuilder assembles SQL text clause-by-clause so that
// engine/transform can call its setters in whatever order the AST
// walk visits them and still get canonical SQL out: CTE -> SELECT ->
// FROM -> JOIN -> WHERE -> GROUP BY -> ORDER BY -> LIMIT/OFFSET, using
// strings.Builder to accumulate each clause's fragments.
package sqlbuilder

import (
	"fmt"
	"strings"
)

// JoinType is the SQL join kind sql_join() originally took as an enum.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinCross
)

func (j JoinType) sql() string {
	switch j {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinCross:
		return "CROSS JOIN"
	default:
		return "JOIN"
	}
}

type selectItem struct {
	expr  string
	alias string
}

type joinItem struct {
	raw string
}

// Builder collects SELECT/FROM/JOIN/WHERE/GROUP BY/ORDER BY/LIMIT
// fragments and assembles them in canonical order on demand,
// regardless of the order its setters were called in — this is what
// lets OPTIONAL MATCH and multi-clause MATCH chains build up a query
// across several transform passes before anything is rendered.
type Builder struct {
	cte      []string
	selects  []selectItem
	from     string
	fromSet  bool
	joins    []joinItem
	where    []string
	groupBy  []string
	orderBy  []string
	limit    int
	offset   int
	distinct bool

	hasRecursiveCTE bool
}

// New returns an empty Builder with limit/offset defaulting to unset (-1).
func New() *Builder {
	return &Builder{limit: -1, offset: -1}
}

// Select adds a SELECT expression, optionally aliased.
func (b *Builder) Select(expr, alias string) {
	b.selects = append(b.selects, selectItem{expr: expr, alias: alias})
}

// Distinct turns on SELECT DISTINCT.
func (b *Builder) Distinct() { b.distinct = true }

// From sets the FROM table/subquery and its alias. Calling it again
// overwrites the previous FROM, matching the original's single-slot
// from_clause.
func (b *Builder) From(table, alias string) {
	if alias != "" {
		b.from = fmt.Sprintf("%s AS %s", table, alias)
	} else {
		b.from = table
	}
	b.fromSet = true
}

// Join adds a JOIN clause; onCondition is omitted for JoinCross.
func (b *Builder) Join(kind JoinType, table, alias, onCondition string) {
	var sb strings.Builder
	sb.WriteString(kind.sql())
	sb.WriteByte(' ')
	sb.WriteString(table)
	if alias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(alias)
	}
	if kind != JoinCross && onCondition != "" {
		sb.WriteString(" ON ")
		sb.WriteString(onCondition)
	}
	b.joins = append(b.joins, joinItem{raw: sb.String()})
}

// JoinRaw appends a pre-formatted JOIN clause verbatim — used for the
// pending property joins that aggregate functions and map projections
// flush once their owning clause finishes (engine/transform's Finalizer).
func (b *Builder) JoinRaw(raw string) {
	b.joins = append(b.joins, joinItem{raw: raw})
}

// Where adds a condition; multiple conditions are ANDed together.
func (b *Builder) Where(condition string) {
	if condition == "" {
		return
	}
	b.where = append(b.where, condition)
}

// GroupBy adds a GROUP BY expression.
func (b *Builder) GroupBy(expr string) {
	b.groupBy = append(b.groupBy, expr)
}

// OrderBy adds an ORDER BY expression.
func (b *Builder) OrderBy(expr string, desc bool) {
	if desc {
		expr += " DESC"
	}
	b.orderBy = append(b.orderBy, expr)
}

// Limit sets LIMIT/OFFSET; pass -1 for either to leave it unset.
func (b *Builder) Limit(limit, offset int) {
	b.limit = limit
	b.offset = offset
}

// CTE appends a named CTE; recursive CTEs use WITH RECURSIVE for the
// whole statement if any entry requests it.
func (b *Builder) CTE(name, body string, recursive bool) {
	b.cte = append(b.cte, fmt.Sprintf("%s AS (\n%s\n)", name, body))
	if recursive {
		b.hasRecursiveCTE = true
	}
}

// GetCTEs returns every already-rendered "name AS (...)" CTE fragment,
// for carrying a prior builder's CTEs forward into a fresh one (e.g.
// WITH clause boundaries, which start a new Builder but must keep any
// CTEs earlier MATCH patterns already registered).
func (b *Builder) GetCTEs() []string {
	return append([]string(nil), b.cte...)
}

// CTERaw appends a pre-rendered "name AS (...)" fragment verbatim,
// the counterpart to GetCTEs.
func (b *Builder) CTERaw(rendered string) {
	b.cte = append(b.cte, rendered)
}

// HasRecursiveCTE reports whether any CTE registered so far requested
// WITH RECURSIVE.
func (b *Builder) HasRecursiveCTE() bool { return b.hasRecursiveCTE }

// MarkRecursive forces WITH RECURSIVE for the statement, used when
// carrying forward CTEs via CTERaw (which bypasses CTE's own
// recursive-tracking parameter).
func (b *Builder) MarkRecursive() { b.hasRecursiveCTE = true }

// ---------------------------------------------------------------------------
// Assembly
// ---------------------------------------------------------------------------

// ToString assembles the full statement, CTE prefix included.
func (b *Builder) ToString() string {
	var sb strings.Builder
	b.writeCTEPrefix(&sb)
	b.writeCore(&sb)
	return sb.String()
}

// ToSubquery assembles SELECT/FROM/JOIN/WHERE/GROUP BY/ORDER
// BY/LIMIT — everything except the CTE prefix — for embedding the
// result as the body of a new CTE (matching sql_builder_to_subquery).
func (b *Builder) ToSubquery() string {
	var sb strings.Builder
	b.writeCore(&sb)
	return sb.String()
}

func (b *Builder) writeCTEPrefix(sb *strings.Builder) {
	if len(b.cte) == 0 {
		return
	}
	if b.hasRecursiveCTE {
		sb.WriteString("WITH RECURSIVE ")
	} else {
		sb.WriteString("WITH ")
	}
	sb.WriteString(strings.Join(b.cte, ",\n"))
	sb.WriteString("\n")
}

func (b *Builder) writeCore(sb *strings.Builder) {
	sb.WriteString("SELECT ")
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(b.selects) == 0 {
		sb.WriteString("*")
	} else {
		parts := make([]string, len(b.selects))
		for i, s := range b.selects {
			if s.alias != "" {
				parts[i] = fmt.Sprintf("%s AS %s", s.expr, s.alias)
			} else {
				parts[i] = s.expr
			}
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	if b.fromSet {
		sb.WriteString("\nFROM ")
		sb.WriteString(b.from)
	}
	for _, j := range b.joins {
		sb.WriteString("\n")
		sb.WriteString(j.raw)
	}
	if len(b.where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if len(b.groupBy) > 0 {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit >= 0 {
		fmt.Fprintf(sb, "\nLIMIT %d", b.limit)
		if b.offset >= 0 {
			fmt.Fprintf(sb, " OFFSET %d", b.offset)
		}
	} else if b.offset >= 0 {
		fmt.Fprintf(sb, "\nLIMIT -1 OFFSET %d", b.offset)
	}
}

// ---------------------------------------------------------------------------
// State extraction — used by WITH/UNWIND to lift a prior clause's
// FROM/JOIN/WHERE into a new CTE body.
// ---------------------------------------------------------------------------

// GetFrom returns the current FROM clause text, or "" if unset.
func (b *Builder) GetFrom() string {
	if !b.fromSet {
		return ""
	}
	return b.from
}

// GetJoins returns every JOIN clause, newline-joined.
func (b *Builder) GetJoins() string {
	if len(b.joins) == 0 {
		return ""
	}
	parts := make([]string, len(b.joins))
	for i, j := range b.joins {
		parts[i] = j.raw
	}
	return strings.Join(parts, "\n")
}

// GetWhere returns the WHERE conditions, AND-joined, without the
// "WHERE" keyword.
func (b *Builder) GetWhere() string {
	if len(b.where) == 0 {
		return ""
	}
	return strings.Join(b.where, " AND ")
}

// GetGroupBy returns the GROUP BY expressions, comma-joined.
func (b *Builder) GetGroupBy() string {
	if len(b.groupBy) == 0 {
		return ""
	}
	return strings.Join(b.groupBy, ", ")
}

// HasFrom reports whether a FROM clause has been set.
func (b *Builder) HasFrom() bool { return b.fromSet }
