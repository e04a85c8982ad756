// Package parser implements a recursive-descent parser that turns a
// Cypher query string into the engine/ast tree engine/transform
// consumes. Clause dispatch is driven by a keyword switch; expressions
// use precedence climbing keyed off engine/mapping.Precedence.
package parser

import (
	"strconv"
	"strings"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/lexer"
)

// Parser walks a token stream produced by engine/lexer.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse tokenizes and parses input, returning the root statement.
func Parse(input string) (ast.Statement, error) {
	toks, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: toks}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	if err := ast.Validate(stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ---------------------------------------------------------------------------
// Token-stream helpers
// ---------------------------------------------------------------------------

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) isEOF() bool {
	return p.cur().Type == lexer.TokenEOF
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.cur().Type == t
}

// checkKeyword reports whether the current token is the reserved word
// keyword (already upper-cased).
func (p *Parser) checkKeyword(keyword string) bool {
	tok := p.cur()
	return tok.Type == lexer.TokenKeyword && tok.Value == keyword
}

// checkIdentCI reports whether the current identifier token spells
// name case-insensitively; used for function-like words that aren't
// reserved (EXISTS, REDUCE, NODES, shortestPath, ...).
func (p *Parser) checkIdentCI(name string) bool {
	tok := p.cur()
	return tok.Type == lexer.TokenIdentifier && strings.EqualFold(tok.Value, name)
}

func (p *Parser) expect(t lexer.TokenType, what string) (lexer.Token, error) {
	if !p.check(t) {
		return lexer.Token{}, p.errorf("expected %s, found %q", what, p.cur().Value)
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(keyword string) error {
	if !p.checkKeyword(keyword) {
		return p.errorf("expected %s, found %q", keyword, p.cur().Value)
	}
	p.advance()
	return nil
}

func (p *Parser) expectEOF() error {
	if !p.isEOF() {
		return p.errorf("unexpected trailing input %q", p.cur().Value)
	}
	return nil
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	return newParseErrorf(p.cur(), format, args...)
}

// parseIdentifierName consumes an identifier or a non-reserved
// function-like keyword spelling and returns its text, used for
// property keys, labels, and aliases where Cypher allows otherwise
// reserved-adjacent words.
func (p *Parser) parseIdentifierName() (string, error) {
	tok := p.cur()
	if tok.Type != lexer.TokenIdentifier {
		return "", p.errorf("expected identifier, found %q", tok.Value)
	}
	p.advance()
	return tok.Value, nil
}

func parseIntLiteral(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// isClauseStart reports whether tok begins a new top-level clause.
// Nothing in the parser calls it.
func isClauseStart(tok lexer.Token) bool {
	if tok.Type != lexer.TokenKeyword {
		return false
	}
	switch tok.Value {
	case "MATCH", "OPTIONAL", "CREATE", "MERGE", "SET", "REMOVE", "DELETE", "DETACH",
		"RETURN", "WITH", "UNWIND", "FOREACH", "LOAD", "UNION":
		return true
	default:
		return false
	}
}
