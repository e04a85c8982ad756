package ast

import "github.com/cyphersql/compiler/engine/mapping"

// ---------------------------------------------------------------------------
// Literals and simple leaves
// ---------------------------------------------------------------------------

// LiteralKind tags which field of Literal is populated.
type LiteralKind int

const (
	LitInteger LiteralKind = iota
	LitDecimal
	LitString
	LitBoolean
	LitNull
)

// Literal is an integer / decimal / string / boolean / null constant.
type Literal struct {
	Kind     LiteralKind
	Int      int64
	Decimal  float64
	Str      string
	Bool     bool
	Position int
}

func (n *Literal) Pos() int   { return n.Position }
func (n *Literal) exprNode()  {}

// Identifier is a bare variable reference.
type Identifier struct {
	Name     string
	Position int
}

func (n *Identifier) Pos() int  { return n.Position }
func (n *Identifier) exprNode() {}

// Parameter is a `$name` reference, or `$` alone for an unnamed
// positional parameter (emits `?`).
type Parameter struct {
	Name     string // "" for an unnamed parameter
	Position int
}

func (n *Parameter) Pos() int  { return n.Position }
func (n *Parameter) exprNode() {}

// Property is `base.Key`, e.g. `n.age`.
type Property struct {
	Base     Expr
	Key      string
	Position int
}

func (n *Property) Pos() int  { return n.Position }
func (n *Property) exprNode() {}

// LabelExpr is `n:Label`, a boolean label-membership test.
type LabelExpr struct {
	Base     Expr
	Label    string
	Position int
}

func (n *LabelExpr) Pos() int  { return n.Position }
func (n *LabelExpr) exprNode() {}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// NotExpr is a boolean negation.
type NotExpr struct {
	Child    Expr
	Position int
}

func (n *NotExpr) Pos() int  { return n.Position }
func (n *NotExpr) exprNode() {}

// NullCheck is `expr IS [NOT] NULL`.
type NullCheck struct {
	Child    Expr
	IsNot    bool
	Position int
}

func (n *NullCheck) Pos() int  { return n.Position }
func (n *NullCheck) exprNode() {}

// BinaryOp is any of the 20+ operator kinds from
type BinaryOp struct {
	Op       mapping.BinaryOpKind
	Left     Expr
	Right    Expr
	Position int
}

func (n *BinaryOp) Pos() int  { return n.Position }
func (n *BinaryOp) exprNode() {}

// ---------------------------------------------------------------------------
// Calls and higher-order forms
// ---------------------------------------------------------------------------

// FunctionCall is `name(args...)`, optionally DISTINCT.
type FunctionCall struct {
	Name     string
	Args     []Expr
	Distinct bool
	Position int
}

func (n *FunctionCall) Pos() int  { return n.Position }
func (n *FunctionCall) exprNode() {}

// ListComprehension is `[x IN list WHERE where | transform]`.
type ListComprehension struct {
	Variable  string
	List      Expr
	Where     Expr // nil if absent
	Transform Expr // nil means "collect x itself"
	Position  int
}

func (n *ListComprehension) Pos() int  { return n.Position }
func (n *ListComprehension) exprNode() {}

// PatternComprehension is `[(n)-[r]->(m) WHERE where | collect]`.
type PatternComprehension struct {
	Pattern  *Path
	Where    Expr
	Collect  Expr
	Position int
}

func (n *PatternComprehension) Pos() int  { return n.Position }
func (n *PatternComprehension) exprNode() {}

// CaseBranch is one WHEN cond THEN result pair.
type CaseBranch struct {
	When     Expr
	Then     Expr
	Position int
}

// Case is a generic or simple CASE expression. Subject is non-nil for
// the simple form `CASE expr WHEN v1 THEN ... END`.
type Case struct {
	Subject  Expr
	Branches []CaseBranch
	Else     Expr // nil if absent
	Position int
}

func (n *Case) Pos() int  { return n.Position }
func (n *Case) exprNode() {}

// MapEntry is one key: value pair in a map literal.
type MapEntry struct {
	Key   string
	Value Expr
}

// MapLiteral is `{k1: v1, k2: v2}`.
type MapLiteral struct {
	Entries  []MapEntry
	Position int
}

func (n *MapLiteral) Pos() int  { return n.Position }
func (n *MapLiteral) exprNode() {}

// ProjectionItemKind tags a MapProjection entry's form.
type ProjectionItemKind int

const (
	ProjAllProps ProjectionItemKind = iota // `.*`
	ProjProperty                           // `.prop`
	ProjAliased                            // `alias: expr`
)

// ProjectionItem is one entry in a map projection `n{.*, .prop, x: expr}`.
type ProjectionItem struct {
	Kind  ProjectionItemKind
	Name  string // property name for ProjProperty/ProjAliased
	Value Expr   // expr for ProjAliased
}

// MapProjection is `var{...items}`.
type MapProjection struct {
	Base     Expr
	Items    []ProjectionItem
	Position int
}

func (n *MapProjection) Pos() int  { return n.Position }
func (n *MapProjection) exprNode() {}

// List is `[e1, e2, ...]`.
type List struct {
	Items    []Expr
	Position int
}

func (n *List) Pos() int  { return n.Position }
func (n *List) exprNode() {}

// Subscript is `base[index]` or `base[from..to]` (IsSlice set for the
// slice form, with Index as the lower bound, nil when it is open).
type Subscript struct {
	Base     Expr
	Index    Expr
	IsSlice  bool
	To       Expr // nil when IsSlice is true but the upper bound is open
	Position int
}

func (n *Subscript) Pos() int  { return n.Position }
func (n *Subscript) exprNode() {}

// ExistsExpr is `EXISTS { pattern }` or `EXISTS(n.prop)`.
type ExistsExpr struct {
	Pattern  *Path  // non-nil for the pattern form
	Property Expr   // non-nil for the property form
	Where    Expr   // optional filter inside the pattern form
	Position int
}

func (n *ExistsExpr) Pos() int  { return n.Position }
func (n *ExistsExpr) exprNode() {}

// ListPredicateKind is all/any/none/single.
type ListPredicateKind int

const (
	PredAll ListPredicateKind = iota
	PredAny
	PredNone
	PredSingle
)

// ListPredicate is `all(x IN list WHERE pred)` and its siblings.
type ListPredicate struct {
	Kind      ListPredicateKind
	Variable  string
	List      Expr
	Predicate Expr
	Position  int
}

func (n *ListPredicate) Pos() int  { return n.Position }
func (n *ListPredicate) exprNode() {}

// ReduceExpr is `reduce(acc = init, x IN list | fold)`.
type ReduceExpr struct {
	Accumulator string
	Init        Expr
	Variable    string
	List        Expr
	Fold        Expr
	Position    int
}

func (n *ReduceExpr) Pos() int  { return n.Position }
func (n *ReduceExpr) exprNode() {}

// PathVariable is a reference to a path-bound identifier used inside
// an expression context that needs to distinguish "this identifier
// names a path" at parse time (e.g. nodes(p)); in most cases a plain
// Identifier suffices and engine/scope resolves the kind, but path
// literals built from a pattern (e.g. inside pattern comprehensions)
// use this node directly.
type PathVariable struct {
	Name     string
	Position int
}

func (n *PathVariable) Pos() int  { return n.Position }
func (n *PathVariable) exprNode() {}
