// Package ast defines the Cypher abstract syntax tree that
// engine/parser produces and engine/transform consumes. Each grammar
// construct gets its own Go type implementing a closed Node interface,
// dispatched by pattern-matching on a type switch.
package ast

// Node is implemented by every AST node. Pos returns the node's
// source location, an integer byte offset into the original query
// text").
type Node interface {
	Pos() int
}

// Clause is implemented by every top-level clause a Query can hold.
type Clause interface {
	Node
	clauseNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Query / Union
// ---------------------------------------------------------------------------

// Query is the root of a single (non-UNION) Cypher statement.
type Query struct {
	Clauses  []Clause
	Position int
}

func (q *Query) Pos() int { return q.Position }

// Union joins two or more queries with UNION [ALL]. Queries holds
// every branch in source order; All[i] says whether the join before
// Queries[i+1] was UNION ALL (All has len(Queries)-1 entries).
type Union struct {
	Queries  []*Query
	All      []bool
	Position int
}

func (u *Union) Pos() int { return u.Position }

// Statement is either a *Query or a *Union; engine/parser.Parse
// returns this interface so a caller can type-switch once.
type Statement interface {
	Node
	statementNode()
}

func (q *Query) statementNode() {}
func (u *Union) statementNode() {}

// ---------------------------------------------------------------------------
// Clauses
// ---------------------------------------------------------------------------

// MatchClause is MATCH / OPTIONAL MATCH.
type MatchClause struct {
	Patterns  []*Path
	Where     Expr // nil if absent
	Optional  bool
	FromGraph string // optional multi-graph routing label, "" if absent
	Position  int
}

func (c *MatchClause) Pos() int    { return c.Position }
func (c *MatchClause) clauseNode() {}

// CreateClause is CREATE.
type CreateClause struct {
	Patterns []*Path
	Position int
}

func (c *CreateClause) Pos() int    { return c.Position }
func (c *CreateClause) clauseNode() {}

// MergeClause is MERGE ... [ON CREATE SET ...] [ON MATCH SET ...].
type MergeClause struct {
	Pattern      *Path
	OnCreateSets []*SetItem
	OnMatchSets  []*SetItem
	Position     int
}

func (c *MergeClause) Pos() int    { return c.Position }
func (c *MergeClause) clauseNode() {}

// SetItem is one `x.prop = expr` or `x:Label` assignment.
type SetItem struct {
	// Property assignment: Variable.Property = Value.
	Variable string
	Property string // "" when this item sets a label instead
	Label    string // "" when this item sets a property instead
	Value    Expr   // nil for label assignment
	Position int
}

func (n *SetItem) Pos() int { return n.Position }

// SetClause is SET.
type SetClause struct {
	Items    []*SetItem
	Position int
}

func (c *SetClause) Pos() int    { return c.Position }
func (c *SetClause) clauseNode() {}

// RemoveItem mirrors SetItem but only ever removes (no Value).
type RemoveItem struct {
	Variable string
	Property string
	Label    string
	Position int
}

func (n *RemoveItem) Pos() int { return n.Position }

// RemoveClause is REMOVE.
type RemoveClause struct {
	Items    []*RemoveItem
	Position int
}

func (c *RemoveClause) Pos() int    { return c.Position }
func (c *RemoveClause) clauseNode() {}

// DeleteClause is DELETE / DETACH DELETE.
type DeleteClause struct {
	Items    []Expr // usually Identifier nodes
	Detach   bool
	Position int
}

func (c *DeleteClause) Pos() int    { return c.Position }
func (c *DeleteClause) clauseNode() {}

// ReturnItem is one projected expression, with optional alias.
type ReturnItem struct {
	Expr     Expr
	Alias    string // "" if none given
	Position int
}

func (n *ReturnItem) Pos() int { return n.Position }

// SortItem is one ORDER BY entry.
type SortItem struct {
	Expr     Expr
	Desc     bool
	Position int
}

func (n *SortItem) Pos() int { return n.Position }

// ReturnClause is RETURN.
type ReturnClause struct {
	Items    []*ReturnItem
	Distinct bool
	OrderBy  []*SortItem
	Skip     Expr // nil if absent
	Limit    Expr // nil if absent
	Position int
}

func (c *ReturnClause) Pos() int    { return c.Position }
func (c *ReturnClause) clauseNode() {}

// WithClause is WITH — like ReturnClause but with a WHERE and it
// resets scope.
type WithClause struct {
	Items    []*ReturnItem
	Distinct bool
	Where    Expr
	OrderBy  []*SortItem
	Skip     Expr
	Limit    Expr
	Position int
}

func (c *WithClause) Pos() int    { return c.Position }
func (c *WithClause) clauseNode() {}

// UnwindClause is UNWIND expr AS alias.
type UnwindClause struct {
	List     Expr
	Alias    string
	Position int
}

func (c *UnwindClause) Pos() int    { return c.Position }
func (c *UnwindClause) clauseNode() {}

// ForeachClause is FOREACH (var IN list | body).
type ForeachClause struct {
	Variable string
	List     Expr
	Body     []Clause
	Position int
}

func (c *ForeachClause) Pos() int    { return c.Position }
func (c *ForeachClause) clauseNode() {}

// LoadCSVClause is LOAD CSV [WITH HEADERS] FROM path AS variable.
type LoadCSVClause struct {
	Path        string
	Variable    string
	WithHeaders bool
	Position    int
}

func (c *LoadCSVClause) Pos() int    { return c.Position }
func (c *LoadCSVClause) clauseNode() {}

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

// PathKind distinguishes a plain path variable from the
// shortestPath()/allShortestPaths() wrapper forms.
type PathKind int

const (
	PathNormal PathKind = iota
	PathShortest
	PathAllShortest
)

// PathElement is either a *NodePattern or a *RelPattern; Path.Elements
// alternates node, rel, node, rel, node, ...
type PathElement interface {
	Node
	pathElementNode()
}

// NodePattern is `(var:Label1:Label2 {props})`.
type NodePattern struct {
	Variable   string // "" if anonymous
	Labels     []string
	Properties *MapLiteral // nil if absent
	Position   int
}

func (n *NodePattern) Pos() int         { return n.Position }
func (n *NodePattern) pathElementNode() {}

// VarLenRange is the `*min..max` quantifier on a relationship.
// Present is false when the relationship is not variable-length.
type VarLenRange struct {
	Present   bool
	Min, Max  int
	Unbounded bool // true when no upper bound was written; Max holds the clamp (100)
}

// RelPattern is `-[var:TYPE1|TYPE2 {props}]-` plus direction flags.
type RelPattern struct {
	Variable   string
	Types      []string
	Properties *MapLiteral
	LeftArrow  bool // `<-...`
	RightArrow bool // `...->`
	VarLen     VarLenRange
	Position   int
}

func (n *RelPattern) Pos() int         { return n.Position }
func (n *RelPattern) pathElementNode() {}

// Path is a full pattern: alternating node/rel/node elements, with an
// optional binding variable and path kind.
type Path struct {
	Elements []PathElement
	Variable string // "" if the path itself isn't bound
	Kind     PathKind
	Position int
}

func (p *Path) Pos() int { return p.Position }

// Nodes returns every NodePattern in the path, in order.
func (p *Path) Nodes() []*NodePattern {
	var out []*NodePattern
	for _, e := range p.Elements {
		if n, ok := e.(*NodePattern); ok {
			out = append(out, n)
		}
	}
	return out
}

// Rels returns every RelPattern in the path, in order.
func (p *Path) Rels() []*RelPattern {
	var out []*RelPattern
	for _, e := range p.Elements {
		if r, ok := e.(*RelPattern); ok {
			out = append(out, r)
		}
	}
	return out
}
