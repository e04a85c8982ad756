package transform

import (
	"fmt"
	"strings"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/scope"
)

// allPropertiesJSON builds the json_group_object of every property key
// set on the row at alias, across all four typed tables, used both by
// nodeJSON/edgeJSON and by `var{.*}` map projections.
func allPropertiesJSON(alias string, isEdge bool) string {
	prefix := "node_props_"
	idCol := "node_id"
	if isEdge {
		prefix, idCol = "edge_props_", "edge_id"
	}
	return fmt.Sprintf(
		`(SELECT json_group_object(pk.key, COALESCE(t.value, CAST(i.value AS TEXT), CAST(r.value AS TEXT), CASE b.value WHEN 1 THEN 'true' WHEN 0 THEN 'false' END))
FROM property_keys pk
LEFT JOIN %[1]stext t ON t.%[2]s = %[3]s.id AND t.key_id = pk.id
LEFT JOIN %[1]sint i ON i.%[2]s = %[3]s.id AND i.key_id = pk.id
LEFT JOIN %[1]sreal r ON r.%[2]s = %[3]s.id AND r.key_id = pk.id
LEFT JOIN %[1]sbool b ON b.%[2]s = %[3]s.id AND b.key_id = pk.id
WHERE t.value IS NOT NULL OR i.value IS NOT NULL OR r.value IS NOT NULL OR b.value IS NOT NULL)`,
		prefix, idCol, alias,
	)
}

// nodeJSON reconstructs a full node value as a JSON object with id,
// labels and properties fields, the shape a bare node variable
// projects to in RETURN/WITH context.
func nodeJSON(alias string) string {
	return fmt.Sprintf(
		"json_object('id', %[1]s.id, 'labels', (SELECT json_group_array(label) FROM node_labels WHERE node_id = %[1]s.id), 'properties', %[2]s)",
		alias, allPropertiesJSON(alias, false),
	)
}

// edgeJSON reconstructs a full relationship value: id, type,
// start/end node ids and properties.
func edgeJSON(alias string) string {
	return fmt.Sprintf(
		"json_object('id', %[1]s.id, 'type', %[1]s.type, 'startNodeId', %[1]s.source_id, 'endNodeId', %[1]s.target_id, 'properties', %[2]s)",
		alias, allPropertiesJSON(alias, true),
	)
}

// pathJSON reconstructs a bound path variable as a JSON array
// alternating node and relationship values, walking the pattern it
// was bound from. It is a best-effort reconstruction: elements whose
// alias was never registered in the current scope (e.g. from a
// branch that got reset) resolve to JSON null instead of failing the
// whole transform.
func (c *Ctx) pathJSON(v *scope.Variable) (string, error) {
	path, ok := v.Path.(*ast.Path)
	if !ok || path == nil {
		return "json_array()", nil
	}
	var parts []string
	for _, el := range path.Elements {
		switch e := el.(type) {
		case *ast.NodePattern:
			if nv, ok := c.Scope.Lookup(e.Variable); ok {
				parts = append(parts, nodeJSON(nv.Alias))
				continue
			}
			parts = append(parts, "NULL")
		case *ast.RelPattern:
			if rv, ok := c.Scope.Lookup(e.Variable); ok {
				parts = append(parts, edgeJSON(rv.Alias))
				continue
			}
			parts = append(parts, "NULL")
		}
	}
	return fmt.Sprintf("json_array(%s)", strings.Join(parts, ", ")), nil
}
