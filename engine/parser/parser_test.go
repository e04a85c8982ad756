package parser

import (
	"testing"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/mapping"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	stmt, err := Parse(`MATCH (n:Person {name: $name})-[:KNOWS]->(m) RETURN n.age AS age ORDER BY age DESC LIMIT 10`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, ok := stmt.(*ast.Query)
	if !ok {
		t.Fatalf("expected *ast.Query, got %T", stmt)
	}
	if len(q.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(q.Clauses))
	}
	match, ok := q.Clauses[0].(*ast.MatchClause)
	if !ok {
		t.Fatalf("expected MatchClause, got %T", q.Clauses[0])
	}
	if len(match.Patterns) != 1 || len(match.Patterns[0].Elements) != 3 {
		t.Fatalf("unexpected pattern shape: %+v", match.Patterns)
	}
	ret, ok := q.Clauses[1].(*ast.ReturnClause)
	if !ok {
		t.Fatalf("expected ReturnClause, got %T", q.Clauses[1])
	}
	if len(ret.Items) != 1 || ret.Items[0].Alias != "age" {
		t.Fatalf("unexpected return items: %+v", ret.Items)
	}
	if len(ret.OrderBy) != 1 || !ret.OrderBy[0].Desc {
		t.Fatalf("expected DESC order by, got %+v", ret.OrderBy)
	}
	if ret.Limit == nil {
		t.Fatal("expected a LIMIT expression")
	}
}

func TestParseVariableLengthRelationship(t *testing.T) {
	stmt, err := Parse(`MATCH (a)-[:KNOWS*1..3]->(b) RETURN a, b`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := stmt.(*ast.Query)
	match := q.Clauses[0].(*ast.MatchClause)
	rels := match.Patterns[0].Rels()
	if len(rels) != 1 || !rels[0].VarLen.Present {
		t.Fatalf("expected a variable-length relationship, got %+v", rels)
	}
	if rels[0].VarLen.Min != 1 || rels[0].VarLen.Max != 3 {
		t.Fatalf("unexpected varlen bounds: %+v", rels[0].VarLen)
	}
}

func TestParseUnboundedVarLenClampsToMax(t *testing.T) {
	stmt, err := Parse(`MATCH (a)-[:KNOWS*]->(b) RETURN a`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := stmt.(*ast.Query)
	match := q.Clauses[0].(*ast.MatchClause)
	rel := match.Patterns[0].Rels()[0]
	if rel.VarLen.Max != ast.MaxVarLen {
		t.Fatalf("expected unbounded varlen clamped to %d, got %d", ast.MaxVarLen, rel.VarLen.Max)
	}
}

func TestParseWhereAndBooleanPrecedence(t *testing.T) {
	stmt, err := Parse(`MATCH (n) WHERE n.a = 1 AND n.b = 2 OR NOT n.c = 3 RETURN n`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := stmt.(*ast.Query)
	match := q.Clauses[0].(*ast.MatchClause)
	top, ok := match.Where.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected top-level BinaryOp, got %T", match.Where)
	}
	if top.Op != mapping.OpOr {
		t.Fatalf("expected OR at the top of the WHERE tree, got %v", top.Op)
	}
}

func TestParseMergeWithOnCreateOnMatch(t *testing.T) {
	stmt, err := Parse(`MERGE (n:Person {name: $name}) ON CREATE SET n.created = true ON MATCH SET n.seen = n.seen`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := stmt.(*ast.Query)
	merge, ok := q.Clauses[0].(*ast.MergeClause)
	if !ok {
		t.Fatalf("expected MergeClause, got %T", q.Clauses[0])
	}
	if len(merge.OnCreateSets) != 1 || len(merge.OnMatchSets) != 1 {
		t.Fatalf("expected one ON CREATE SET and one ON MATCH SET item, got %+v / %+v", merge.OnCreateSets, merge.OnMatchSets)
	}
}

func TestParseUnionAll(t *testing.T) {
	stmt, err := Parse(`MATCH (a:Person) RETURN a.name UNION ALL MATCH (b:Company) RETURN b.name`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, ok := stmt.(*ast.Union)
	if !ok {
		t.Fatalf("expected *ast.Union, got %T", stmt)
	}
	if len(u.Queries) != 2 || len(u.All) != 1 || !u.All[0] {
		t.Fatalf("unexpected union shape: %+v", u)
	}
}

func TestParseInvalidPatternAlternationFails(t *testing.T) {
	_, err := Parse(`MATCH (a)-[:KNOWS]->(b)-[:LIKES]->RETURN a`)
	if err == nil {
		t.Fatal("expected a parse error for a malformed pattern")
	}
}
