package lexer

import "testing"

func TestTokenizeSimpleMatch(t *testing.T) {
	toks, err := Tokenize("MATCH (n:Person {name: $name})-[:KNOWS]->(m) RETURN n.age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenType{
		TokenKeyword, TokenLParen, TokenIdentifier, TokenColon, TokenIdentifier,
		TokenLBrace, TokenIdentifier, TokenColon, TokenParameter, TokenRBrace, TokenRParen,
		TokenDash, TokenLBracket, TokenColon, TokenIdentifier, TokenRBracket, TokenArrowRight,
		TokenLParen, TokenIdentifier, TokenRParen,
		TokenKeyword, TokenIdentifier, TokenDot, TokenIdentifier,
		TokenEOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v (value=%q)", i, toks[i].Type, w, toks[i].Value)
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	toks, err := Tokenize("a.x <= b.y AND c <> d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ops []string
	for _, tok := range toks {
		if tok.Type == TokenOperator {
			ops = append(ops, tok.Value)
		}
	}
	if len(ops) != 2 || ops[0] != "<=" || ops[1] != "<>" {
		t.Fatalf("got operators %v, want [<= <>]", ops)
	}
}

func TestTokenizeVarLenRelationship(t *testing.T) {
	toks, err := Tokenize("MATCH (a)-[:KNOWS*1..3]->(b) RETURN a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foundDotDot := false
	for _, tok := range toks {
		if tok.Type == TokenDotDot {
			foundDotDot = true
		}
	}
	if !foundDotDot {
		t.Fatalf("expected a TokenDotDot in variable-length range, got %+v", toks)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize("RETURN 'abc")
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestTokenizeStartsWithOperator(t *testing.T) {
	toks, err := Tokenize("WHERE n.name STARTS WITH 'A'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, tok := range toks {
		if tok.Type == TokenOperator && tok.Value == "STARTS WITH" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected STARTS WITH operator token, got %+v", toks)
	}
}
