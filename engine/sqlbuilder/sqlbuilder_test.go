package sqlbuilder

import (
	"strings"
	"testing"
)

func TestCanonicalOrderRegardlessOfCallOrder(t *testing.T) {
	b := New()
	b.Limit(10, 0)
	b.Where("n.age > 18")
	b.OrderBy("n.name", false)
	b.Select("n.id", "node_id")
	b.From("nodes", "n")
	b.GroupBy("n.id")

	got := b.ToString()
	wantOrder := []string{"SELECT", "FROM", "WHERE", "GROUP BY", "ORDER BY", "LIMIT"}
	last := -1
	for _, kw := range wantOrder {
		idx := strings.Index(got, kw)
		if idx == -1 {
			t.Fatalf("missing %q in output: %s", kw, got)
		}
		if idx <= last {
			t.Fatalf("expected %q after previous clause, got: %s", kw, got)
		}
		last = idx
	}
}

func TestToSubqueryOmitsCTE(t *testing.T) {
	b := New()
	b.CTE("reachable", "SELECT 1", true)
	b.Select("*", "")
	b.From("reachable", "r")

	sub := b.ToSubquery()
	if strings.Contains(sub, "WITH") {
		t.Fatalf("expected ToSubquery to omit the CTE prefix, got: %s", sub)
	}
	full := b.ToString()
	if !strings.Contains(full, "WITH RECURSIVE") {
		t.Fatalf("expected ToString to include WITH RECURSIVE, got: %s", full)
	}
}

func TestWriteBuilderJoinsStatements(t *testing.T) {
	wb := NewWriteBuilder()
	wb.InsertValues(InsertNormal, "nodes", "id, label", "1, 'Person'")
	wb.Delete("edges", "src_id = 1")
	out := wb.ToString()
	if !strings.Contains(out, "INSERT INTO") || !strings.Contains(out, "DELETE FROM") {
		t.Fatalf("expected both statements present, got: %s", out)
	}
	if wb.Len() != 2 {
		t.Fatalf("expected 2 statements, got %d", wb.Len())
	}
}
