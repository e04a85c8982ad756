// Package schema owns the relational property-graph schema the
// transform's generated SQL assumes is present, and the DDL to create
// it against modernc.org/sqlite.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// DDL returns the CREATE TABLE / CREATE INDEX statements for the
// nodes/edges/labels/typed-property-table schema, in dependency order
// (referenced tables before their indexes).
func DDL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY
)`,
		`CREATE TABLE IF NOT EXISTS edges (
	id INTEGER PRIMARY KEY,
	source_id INTEGER NOT NULL REFERENCES nodes(id),
	target_id INTEGER NOT NULL REFERENCES nodes(id),
	type TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id)`,
		`CREATE TABLE IF NOT EXISTS node_labels (
	node_id INTEGER NOT NULL REFERENCES nodes(id),
	label TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_node_labels_node ON node_labels(node_id)`,
		`CREATE INDEX IF NOT EXISTS idx_node_labels_label ON node_labels(label)`,
		`CREATE TABLE IF NOT EXISTS property_keys (
	id INTEGER PRIMARY KEY,
	key TEXT NOT NULL UNIQUE
)`,
		typedPropertyTable("node_props_text", "node_id", "TEXT"),
		typedPropertyTable("node_props_int", "node_id", "INTEGER"),
		typedPropertyTable("node_props_real", "node_id", "REAL"),
		typedPropertyTable("node_props_bool", "node_id", "INTEGER"),
		typedPropertyTable("edge_props_text", "edge_id", "TEXT"),
		typedPropertyTable("edge_props_int", "edge_id", "INTEGER"),
		typedPropertyTable("edge_props_real", "edge_id", "REAL"),
		typedPropertyTable("edge_props_bool", "edge_id", "INTEGER"),
		indexOn("node_props_text", "node_id"),
		indexOn("node_props_int", "node_id"),
		indexOn("node_props_real", "node_id"),
		indexOn("node_props_bool", "node_id"),
		indexOn("edge_props_text", "edge_id"),
		indexOn("edge_props_int", "edge_id"),
		indexOn("edge_props_real", "edge_id"),
		indexOn("edge_props_bool", "edge_id"),
	}
}

func typedPropertyTable(name, idColumn, valueType string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s INTEGER NOT NULL,
	key_id INTEGER NOT NULL REFERENCES property_keys(id),
	value %s,
	PRIMARY KEY (%s, key_id)
)`, name, idColumn, valueType, idColumn)
}

func indexOn(table, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", table, column, table, column)
}

// Apply runs every DDL statement against db, in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, stmt := range DDL() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// Stats holds a row count per table, for a quick sanity check of a
// populated graph database.
type Stats struct {
	Counts map[string]int64
}

var statsTables = []string{
	"nodes", "edges", "node_labels", "property_keys",
	"node_props_text", "node_props_int", "node_props_real", "node_props_bool",
	"edge_props_text", "edge_props_int", "edge_props_real", "edge_props_bool",
}

// CollectStats runs a COUNT(*) over every table in the schema.
func CollectStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	counts := make(map[string]int64, len(statsTables))
	for _, table := range statsTables {
		var n int64
		row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
		if err := row.Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return &Stats{Counts: counts}, nil
}

// String renders stats as a table-per-line summary.
func (s *Stats) String() string {
	out := ""
	for _, table := range statsTables {
		out += fmt.Sprintf("%-20s %d\n", table, s.Counts[table])
	}
	return out
}
