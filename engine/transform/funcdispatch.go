package transform

import (
	"fmt"
	"strings"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/mapping"
	"github.com/cyphersql/compiler/engine/scope"
)

// transformFunctionCall resolves fc.Name through mapping.Functions
// (case-insensitive) and routes to the family-specific handler below.
// An unrecognized name surfaces as UnsupportedFunction rather than
// falling through to a raw SQL call.
func (c *Ctx) transformFunctionCall(fc *ast.FunctionCall) (string, error) {
	entry, ok := mapping.Lookup(fc.Name)
	if !ok {
		return "", c.Fail(errUnsupportedFunction(fmt.Sprintf("unsupported function %q", fc.Name)))
	}

	switch entry.Family {
	case mapping.FamEntity:
		return c.dispatchEntity(fc)
	case mapping.FamAggregate:
		return c.dispatchAggregate(fc, entry)
	case mapping.FamStringDirect:
		return c.dispatchStringDirect(fc, entry)
	case mapping.FamStringNAry:
		return c.dispatchStringNAry(fc)
	case mapping.FamMathUnary:
		return c.dispatchMathUnary(fc, entry)
	case mapping.FamMathSpecial:
		return c.dispatchMathSpecial(fc)
	case mapping.FamNoArg:
		return c.dispatchNoArg(fc)
	case mapping.FamConversion:
		return c.dispatchConversion(fc)
	case mapping.FamPath:
		return c.dispatchPath(fc)
	case mapping.FamList:
		return c.dispatchList(fc)
	case mapping.FamTemporal:
		return c.dispatchTemporal(fc)
	case mapping.FamAlgo:
		return c.dispatchAlgo(fc)
	default:
		return "", c.Fail(errUnsupportedFunction(fmt.Sprintf("unsupported function %q", fc.Name)))
	}
}

func (c *Ctx) argSQL(e ast.Expr) (string, error) { return c.TransformExpr(e) }

func (c *Ctx) argsSQL(args []ast.Expr) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := c.argSQL(a)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Entity: id/labels/properties/keys/type/graph
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchEntity(fc *ast.FunctionCall) (string, error) {
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument(fc.Name + "() takes exactly one argument"))
	}
	id, ok := fc.Args[0].(*ast.Identifier)
	if !ok {
		return "", c.Fail(errInvalidArgument(fc.Name + "() requires a direct variable reference"))
	}
	v, ok := c.Scope.Lookup(id.Name)
	if !ok {
		return "", c.Fail(errUnboundVariable(fmt.Sprintf("variable %q is not bound in this scope", id.Name)))
	}
	isEdge := v.Kind == scope.KindEdge

	switch strings.ToUpper(fc.Name) {
	case "ID":
		return v.Alias + ".id", nil
	case "TYPE":
		if !isEdge {
			return "", c.Fail(errInvalidArgument("type() requires a relationship variable"))
		}
		return v.Alias + ".type", nil
	case "LABELS":
		if isEdge {
			return "", c.Fail(errInvalidArgument("labels() requires a node variable"))
		}
		return fmt.Sprintf("(SELECT json_group_array(label) FROM node_labels WHERE node_id = %s.id)", v.Alias), nil
	case "PROPERTIES":
		return allPropertiesJSON(v.Alias, isEdge), nil
	case "KEYS":
		prefix, idCol := "node_props_", "node_id"
		if isEdge {
			prefix, idCol = "edge_props_", "edge_id"
		}
		return fmt.Sprintf(
			"(SELECT json_group_array(DISTINCT pk.key) FROM property_keys pk WHERE EXISTS (SELECT 1 FROM %[1]stext t WHERE t.%[2]s=%[3]s.id AND t.key_id=pk.id UNION SELECT 1 FROM %[1]sint i WHERE i.%[2]s=%[3]s.id AND i.key_id=pk.id UNION SELECT 1 FROM %[1]sreal r WHERE r.%[2]s=%[3]s.id AND r.key_id=pk.id UNION SELECT 1 FROM %[1]sbool b WHERE b.%[2]s=%[3]s.id AND b.key_id=pk.id))",
			prefix, idCol, v.Alias,
		), nil
	case "GRAPH":
		if c.CurrentGraph == "" {
			return "NULL", nil
		}
		return "'" + escapeString(c.CurrentGraph) + "'", nil
	default:
		return "", c.Fail(errUnsupportedFunction(fc.Name))
	}
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchAggregate(fc *ast.FunctionCall, entry mapping.FuncEntry) (string, error) {
	name := strings.ToUpper(fc.Name)
	if name == "COUNT" && len(fc.Args) == 1 {
		if id, ok := fc.Args[0].(*ast.Identifier); ok && id.Name == "*" {
			return "COUNT(*)", nil
		}
	}
	if name == "COLLECT" {
		if len(fc.Args) != 1 {
			return "", c.Fail(errInvalidArgument("collect() takes exactly one argument"))
		}
		arg, err := c.argSQL(fc.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("json_group_array(%s)", arg), nil
	}
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument(fc.Name + "() takes exactly one argument"))
	}

	var arg string
	var err error
	if prop, ok := fc.Args[0].(*ast.Property); ok {
		arg, err = c.aggregatePropertyJoinSQL(prop)
	} else {
		arg, err = c.argSQL(fc.Args[0])
	}
	if err != nil {
		return "", err
	}

	distinct := ""
	if fc.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", entry.SQLName, distinct, arg), nil
}

// ---------------------------------------------------------------------------
// String
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchStringDirect(fc *ast.FunctionCall, entry mapping.FuncEntry) (string, error) {
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument(fc.Name + "() takes exactly one argument"))
	}
	arg, err := c.argSQL(fc.Args[0])
	if err != nil {
		return "", err
	}
	if entry.SQLName == "REVERSE" {
		return fmt.Sprintf(
			"(SELECT group_concat(substr(%s, -1 - n.value, 1), '') FROM (WITH RECURSIVE seq(value) AS (SELECT 0 UNION ALL SELECT value+1 FROM seq WHERE value+1 < length(%s)) SELECT value FROM seq) n)",
			arg, arg,
		), nil
	}
	return fmt.Sprintf("%s(%s)", entry.SQLName, arg), nil
}

func (c *Ctx) dispatchStringNAry(fc *ast.FunctionCall) (string, error) {
	args, err := c.argsSQL(fc.Args)
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(fc.Name) {
	case "SUBSTRING":
		if len(args) == 2 {
			return fmt.Sprintf("SUBSTR(%s, (%s) + 1)", args[0], args[1]), nil
		}
		if len(args) == 3 {
			return fmt.Sprintf("SUBSTR(%s, (%s) + 1, %s)", args[0], args[1], args[2]), nil
		}
	case "REPLACE":
		if len(args) == 3 {
			return fmt.Sprintf("REPLACE(%s, %s, %s)", args[0], args[1], args[2]), nil
		}
	case "SPLIT":
		if len(args) == 2 {
			return fmt.Sprintf(
				"(SELECT json_group_array(value) FROM json_each('[\"' || REPLACE(%s, %s, '\",\"') || '\"]'))",
				args[0], args[1],
			), nil
		}
	case "LEFT":
		if len(args) == 2 {
			return fmt.Sprintf("SUBSTR(%s, 1, %s)", args[0], args[1]), nil
		}
	case "RIGHT":
		if len(args) == 2 {
			return fmt.Sprintf("SUBSTR(%s, -1 * (%s))", args[0], args[1]), nil
		}
	case "STARTSWITH":
		if len(args) == 2 {
			return fmt.Sprintf("(%s LIKE (%s || '%%'))", args[0], args[1]), nil
		}
	case "ENDSWITH":
		if len(args) == 2 {
			return fmt.Sprintf("(%s LIKE ('%%' || %s))", args[0], args[1]), nil
		}
	case "CONTAINS_FN":
		if len(args) == 2 {
			return fmt.Sprintf("(%s LIKE ('%%' || %s || '%%'))", args[0], args[1]), nil
		}
	}
	return "", c.Fail(errInvalidArgument(fmt.Sprintf("wrong number of arguments to %s()", fc.Name)))
}

// ---------------------------------------------------------------------------
// Math
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchMathUnary(fc *ast.FunctionCall, entry mapping.FuncEntry) (string, error) {
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument(fc.Name + "() takes exactly one argument"))
	}
	arg, err := c.argSQL(fc.Args[0])
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(fc.Name) {
	case "CEIL":
		return fmt.Sprintf("(CASE WHEN %[1]s = CAST(%[1]s AS INTEGER) THEN CAST(%[1]s AS INTEGER) WHEN %[1]s > 0 THEN CAST(%[1]s AS INTEGER) + 1 ELSE CAST(%[1]s AS INTEGER) END)", arg), nil
	case "FLOOR":
		return fmt.Sprintf("(CASE WHEN %[1]s = CAST(%[1]s AS INTEGER) THEN CAST(%[1]s AS INTEGER) WHEN %[1]s < 0 THEN CAST(%[1]s AS INTEGER) - 1 ELSE CAST(%[1]s AS INTEGER) END)", arg), nil
	case "SIGN":
		return fmt.Sprintf("(CASE WHEN %[1]s > 0 THEN 1 WHEN %[1]s < 0 THEN -1 ELSE 0 END)", arg), nil
	default:
		return fmt.Sprintf("%s(%s)", entry.SQLName, arg), nil
	}
}

func (c *Ctx) dispatchMathSpecial(fc *ast.FunctionCall) (string, error) {
	args, err := c.argsSQL(fc.Args)
	if err != nil {
		return "", err
	}
	if len(args) == 1 {
		return fmt.Sprintf("ROUND(%s)", args[0]), nil
	}
	if len(args) == 2 {
		return fmt.Sprintf("ROUND(%s, %s)", args[0], args[1]), nil
	}
	return "", c.Fail(errInvalidArgument("round() takes one or two arguments"))
}

func (c *Ctx) dispatchNoArg(fc *ast.FunctionCall) (string, error) {
	switch strings.ToUpper(fc.Name) {
	case "RAND", "RANDOM":
		return "(ABS(RANDOM()) / 9223372036854775807.0)", nil
	case "PI":
		return "3.141592653589793", nil
	case "E":
		return "2.718281828459045", nil
	default:
		return "", c.Fail(errUnsupportedFunction(fc.Name))
	}
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchConversion(fc *ast.FunctionCall) (string, error) {
	name := strings.ToUpper(fc.Name)
	if name == "COALESCE" {
		args, err := c.argsSQL(fc.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("COALESCE(%s)", strings.Join(args, ", ")), nil
	}
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument(fc.Name + "() takes exactly one argument"))
	}
	arg, err := c.argSQL(fc.Args[0])
	if err != nil {
		return "", err
	}
	switch name {
	case "TOSTRING":
		return fmt.Sprintf("CAST(%s AS TEXT)", arg), nil
	case "TOINTEGER":
		return fmt.Sprintf("CAST(%s AS INTEGER)", arg), nil
	case "TOFLOAT":
		return fmt.Sprintf("CAST(%s AS REAL)", arg), nil
	case "TOBOOLEAN":
		return fmt.Sprintf("(CASE WHEN %[1]s IN (1, '1', 'true', 'TRUE') THEN 1 WHEN %[1]s IN (0, '0', 'false', 'FALSE') THEN 0 ELSE NULL END)", arg), nil
	default:
		return "", c.Fail(errUnsupportedFunction(fc.Name))
	}
}

// ---------------------------------------------------------------------------
// Path
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchPath(fc *ast.FunctionCall) (string, error) {
	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument(fc.Name + "() takes exactly one argument"))
	}
	id, ok := fc.Args[0].(*ast.Identifier)
	if !ok {
		return "", c.Fail(errInvalidArgument(fc.Name + "() requires a path variable"))
	}
	v, ok := c.Scope.Lookup(id.Name)
	if !ok || v.Kind != scope.KindPath {
		return "", c.Fail(errInvalidArgument(fc.Name + "() requires a bound path variable"))
	}
	pathJSON, err := c.pathJSON(v)
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(fc.Name) {
	case "NODES":
		return fmt.Sprintf("(SELECT json_group_array(value) FROM json_each(%s) WHERE json_extract(value, '$.labels') IS NOT NULL)", pathJSON), nil
	case "RELATIONSHIPS", "RELS":
		return fmt.Sprintf("(SELECT json_group_array(value) FROM json_each(%s) WHERE json_extract(value, '$.type') IS NOT NULL)", pathJSON), nil
	case "STARTNODE":
		return fmt.Sprintf("json_extract(%s, '$[0]')", pathJSON), nil
	case "ENDNODE":
		return fmt.Sprintf("json_extract(%s, '$[' || (json_array_length(%s) - 1) || ']')", pathJSON, pathJSON), nil
	default:
		return "", c.Fail(errUnsupportedFunction(fc.Name))
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchList(fc *ast.FunctionCall) (string, error) {
	name := strings.ToUpper(fc.Name)
	if name == "RANGE" {
		args, err := c.argsSQL(fc.Args)
		if err != nil {
			return "", err
		}
		if len(args) == 2 {
			return fmt.Sprintf(
				"(WITH RECURSIVE seq(value) AS (SELECT %s UNION ALL SELECT value+1 FROM seq WHERE value+1 <= %s) SELECT json_group_array(value) FROM seq)",
				args[0], args[1],
			), nil
		}
		if len(args) == 3 {
			return fmt.Sprintf(
				"(WITH RECURSIVE seq(value) AS (SELECT %s UNION ALL SELECT value+(%s) FROM seq WHERE value+(%s) <= %s) SELECT json_group_array(value) FROM seq)",
				args[0], args[2], args[2], args[1],
			), nil
		}
		return "", c.Fail(errInvalidArgument("range() takes two or three arguments"))
	}

	if len(fc.Args) != 1 {
		return "", c.Fail(errInvalidArgument(fc.Name + "() takes exactly one argument"))
	}
	arg, err := c.argSQL(fc.Args[0])
	if err != nil {
		return "", err
	}
	switch name {
	case "HEAD":
		return fmt.Sprintf("json_extract(%s, '$[0]')", arg), nil
	case "LAST":
		return fmt.Sprintf("json_extract(%s, '$[' || (json_array_length(%s) - 1) || ']')", arg, arg), nil
	case "TAIL":
		return fmt.Sprintf(
			"(SELECT json_group_array(value) FROM (SELECT value, ROW_NUMBER() OVER () - 1 AS idx FROM json_each(%s)) WHERE idx >= 1)",
			arg,
		), nil
	default:
		return "", c.Fail(errUnsupportedFunction(fc.Name))
	}
}

// ---------------------------------------------------------------------------
// Temporal
// ---------------------------------------------------------------------------

func (c *Ctx) dispatchTemporal(fc *ast.FunctionCall) (string, error) {
	switch strings.ToUpper(fc.Name) {
	case "TIMESTAMP":
		return "CAST(strftime('%s', 'now') AS INTEGER) * 1000", nil
	case "DATE":
		return "date('now')", nil
	case "TIME":
		return "time('now')", nil
	case "DATETIME":
		return "datetime('now')", nil
	case "LOCALDATETIME":
		return "datetime('now', 'localtime')", nil
	case "RANDOMUUID":
		return "(lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || substr(lower(hex(randomblob(2))), 2) || '-' || substr('89ab', 1 + (ABS(RANDOM()) % 4), 1) || substr(lower(hex(randomblob(2))), 2) || '-' || lower(hex(randomblob(6))))", nil
	default:
		return "", c.Fail(errUnsupportedFunction(fc.Name))
	}
}
