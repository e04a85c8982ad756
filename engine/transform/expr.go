package transform

import (
	"fmt"
	"strings"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/mapping"
	"github.com/cyphersql/compiler/engine/scope"
)

// TransformExpr dispatches e to its SQL emission rule by node type. It
// is the single entry point every clause transform calls to render a
// Cypher expression as a SQL fragment.
func (c *Ctx) TransformExpr(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return c.transformLiteral(n), nil
	case *ast.Identifier:
		return c.transformIdentifier(n.Name)
	case *ast.PathVariable:
		return c.transformIdentifier(n.Name)
	case *ast.Parameter:
		return c.Param(n.Name), nil
	case *ast.Property:
		return c.transformProperty(n)
	case *ast.LabelExpr:
		return c.transformLabelExpr(n)
	case *ast.NotExpr:
		child, err := c.TransformExpr(n.Child)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", child), nil
	case *ast.NullCheck:
		child, err := c.TransformExpr(n.Child)
		if err != nil {
			return "", err
		}
		if n.IsNot {
			return fmt.Sprintf("(%s) IS NOT NULL", child), nil
		}
		return fmt.Sprintf("(%s) IS NULL", child), nil
	case *ast.BinaryOp:
		return c.transformBinaryOp(n)
	case *ast.FunctionCall:
		return c.transformFunctionCall(n)
	case *ast.Case:
		return c.transformCase(n)
	case *ast.MapLiteral:
		return c.transformMapLiteral(n)
	case *ast.MapProjection:
		return c.transformMapProjection(n)
	case *ast.List:
		return c.transformList(n)
	case *ast.Subscript:
		return c.transformSubscript(n)
	case *ast.ExistsExpr:
		return c.transformExists(n)
	case *ast.ListPredicate:
		return c.transformListPredicate(n)
	case *ast.ReduceExpr:
		return c.transformReduce(n)
	case *ast.ListComprehension:
		return c.transformListComprehension(n)
	case *ast.PatternComprehension:
		return c.transformPatternComprehension(n)
	default:
		return "", c.Fail(errInvalidArgument(fmt.Sprintf("unhandled expression node %T", e)))
	}
}

// transformLiteral renders a constant inline; SQLite's dynamic typing
// means no separate parameter binding is needed for query literals
// (only $-parameters route through Ctx.Param).
func (c *Ctx) transformLiteral(l *ast.Literal) string {
	switch l.Kind {
	case ast.LitInteger:
		return fmt.Sprintf("%d", l.Int)
	case ast.LitDecimal:
		return fmt.Sprintf("%g", l.Decimal)
	case ast.LitString:
		return "'" + escapeString(l.Str) + "'"
	case ast.LitBoolean:
		if l.Bool {
			return "1"
		}
		return "0"
	default:
		return "NULL"
	}
}

func isStringLiteral(e ast.Expr) bool {
	l, ok := e.(*ast.Literal)
	return ok && l.Kind == ast.LitString
}

// transformIdentifier resolves a bare variable reference against
// Scope. Node/edge variables reconstruct their full JSON
// representation in return context, and collapse to their row id
// under InComparison (e.g. `n = m`, `id(n)`, `WHERE n.x...` where n
// itself never appears bare); projected scalars and path variables
// resolve directly to their bound alias.
func (c *Ctx) transformIdentifier(name string) (string, error) {
	v, ok := c.Scope.Lookup(name)
	if !ok {
		return "", c.Fail(errUnboundVariable(fmt.Sprintf("variable %q is not bound in this scope", name)))
	}
	switch v.Kind {
	case scope.KindNode:
		if c.InComparison {
			return v.Alias + ".id", nil
		}
		return nodeJSON(v.Alias), nil
	case scope.KindEdge:
		if c.InComparison {
			return v.Alias + ".id", nil
		}
		return edgeJSON(v.Alias), nil
	case scope.KindPath:
		return c.pathJSON(v)
	default: // KindProjected
		return v.Alias, nil
	}
}

// baseAlias resolves the variable underlying a Property/LabelExpr
// Base expression to its bare SQL table alias, rejecting anything
// that isn't a direct node/edge variable reference (property access
// on the output of an expression is not representable against the
// typed-table schema).
func (c *Ctx) baseAlias(base ast.Expr) (alias string, isEdge bool, err error) {
	id, ok := base.(*ast.Identifier)
	if !ok {
		return "", false, c.Fail(errInvalidArgument("property/label access requires a direct variable reference"))
	}
	v, ok := c.Scope.Lookup(id.Name)
	if !ok {
		return "", false, c.Fail(errUnboundVariable(fmt.Sprintf("variable %q is not bound in this scope", id.Name)))
	}
	if v.Kind != scope.KindNode && v.Kind != scope.KindEdge {
		return "", false, c.Fail(errInvalidArgument(fmt.Sprintf("%q does not refer to a node or relationship", id.Name)))
	}
	return v.Alias, v.Kind == scope.KindEdge, nil
}

func (c *Ctx) transformProperty(p *ast.Property) (string, error) {
	alias, isEdge, err := c.baseAlias(p.Base)
	if err != nil {
		return "", err
	}
	return propertyAccessSQL(alias, p.Key, isEdge, c.InComparison), nil
}

func (c *Ctx) transformLabelExpr(l *ast.LabelExpr) (string, error) {
	alias, isEdge, err := c.baseAlias(l.Base)
	if err != nil {
		return "", err
	}
	if isEdge {
		return fmt.Sprintf("(%s.type = '%s')", alias, escapeString(l.Label)), nil
	}
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM node_labels WHERE node_id = %s.id AND label = '%s')",
		alias, escapeString(l.Label),
	), nil
}

func (c *Ctx) transformBinaryOp(b *ast.BinaryOp) (string, error) {
	prevComparison := c.InComparison
	c.InComparison = true
	left, err := c.TransformExpr(b.Left)
	if err != nil {
		return "", err
	}
	right, err := c.TransformExpr(b.Right)
	if err != nil {
		return "", err
	}
	c.InComparison = prevComparison

	switch b.Op {
	case mapping.OpAdd:
		if isStringLiteral(b.Left) || isStringLiteral(b.Right) {
			return fmt.Sprintf("(%s || %s)", left, right), nil
		}
		return fmt.Sprintf("(%s + %s)", left, right), nil
	case mapping.OpPow:
		return fmt.Sprintf("EXP(%s * LN(%s))", right, left), nil
	case mapping.OpIn:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE value = %s)", right, left), nil
	case mapping.OpStartsWith:
		return fmt.Sprintf("(%s LIKE (%s || '%%'))", left, right), nil
	case mapping.OpEndsWith:
		return fmt.Sprintf("(%s LIKE ('%%' || %s))", left, right), nil
	case mapping.OpContains:
		return fmt.Sprintf("(%s LIKE ('%%' || %s || '%%'))", left, right), nil
	case mapping.OpRegex:
		return fmt.Sprintf("regexp(%s, %s)", right, left), nil
	default:
		sqlOp := mapping.SQLText(b.Op)
		if sqlOp == "" {
			return "", c.Fail(errInvalidArgument("unsupported binary operator"))
		}
		return fmt.Sprintf("(%s %s %s)", left, sqlOp, right), nil
	}
}

func (c *Ctx) transformCase(ce *ast.Case) (string, error) {
	var sb strings.Builder
	sb.WriteString("CASE")
	if ce.Subject != nil {
		subj, err := c.TransformExpr(ce.Subject)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ")
		sb.WriteString(subj)
	}
	for _, br := range ce.Branches {
		when, err := c.TransformExpr(br.When)
		if err != nil {
			return "", err
		}
		then, err := c.TransformExpr(br.Then)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, " WHEN %s THEN %s", when, then)
	}
	if ce.Else != nil {
		els, err := c.TransformExpr(ce.Else)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ELSE ")
		sb.WriteString(els)
	}
	sb.WriteString(" END")
	return sb.String(), nil
}

func (c *Ctx) transformMapLiteral(m *ast.MapLiteral) (string, error) {
	parts := make([]string, 0, len(m.Entries))
	for _, entry := range m.Entries {
		val, err := c.TransformExpr(entry.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("'%s', %s", escapeString(entry.Key), val))
	}
	return fmt.Sprintf("json_object(%s)", strings.Join(parts, ", ")), nil
}

func (c *Ctx) transformList(l *ast.List) (string, error) {
	parts := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		v, err := c.TransformExpr(item)
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	return fmt.Sprintf("json_array(%s)", strings.Join(parts, ", ")), nil
}

func (c *Ctx) transformSubscript(s *ast.Subscript) (string, error) {
	base, err := c.TransformExpr(s.Base)
	if err != nil {
		return "", err
	}
	if !s.IsSlice {
		idx, err := c.TransformExpr(s.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("json_extract(%s, '$[' || (%s) || ']')", base, idx), nil
	}
	fromSQL := "0"
	if s.Index != nil {
		fromSQL, err = c.TransformExpr(s.Index)
		if err != nil {
			return "", err
		}
	}
	toExpr := "json_array_length(" + base + ")"
	if s.To != nil {
		toExpr, err = c.TransformExpr(s.To)
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf(
		"(SELECT json_group_array(value) FROM (SELECT value, ROW_NUMBER() OVER () - 1 AS idx FROM json_each(%s)) WHERE idx >= (%s) AND idx < (%s))",
		base, fromSQL, toExpr,
	), nil
}

// transformMapProjection renders `var{.*, .prop, alias: expr}`. A
// ProjAllProps entry merges the base node/edge's full typed-property
// object in; later explicit entries override it, matching Cypher's
// "later entries win" map-projection semantics.
func (c *Ctx) transformMapProjection(mp *ast.MapProjection) (string, error) {
	alias, isEdge, err := c.baseAlias(mp.Base)
	if err != nil {
		return "", err
	}
	base := "json_object()"
	var parts []string
	for _, item := range mp.Items {
		switch item.Kind {
		case ast.ProjAllProps:
			base = allPropertiesJSON(alias, isEdge)
		case ast.ProjProperty:
			parts = append(parts, fmt.Sprintf("'%s', %s", escapeString(item.Name), propertyAccessSQL(alias, item.Name, isEdge, false)))
		case ast.ProjAliased:
			val, err := c.TransformExpr(item.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("'%s', %s", escapeString(item.Name), val))
		}
	}
	if len(parts) == 0 {
		return base, nil
	}
	return fmt.Sprintf("json_patch(%s, json_object(%s))", base, strings.Join(parts, ", ")), nil
}
