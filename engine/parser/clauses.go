package parser

import (
	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/lexer"
)

// parseStatement parses a full query, including any chain of UNION
// [ALL] joins; each branch is an independent query and the join kind
// (ALL or not) is recorded per branch boundary.
func (p *Parser) parseStatement() (ast.Statement, error) {
	pos := p.cur().Position
	first, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if !p.checkKeyword("UNION") {
		return first, nil
	}
	queries := []*ast.Query{first}
	var alls []bool
	for p.checkKeyword("UNION") {
		p.advance()
		all := false
		if p.checkKeyword("ALL") {
			all = true
			p.advance()
		}
		next, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		queries = append(queries, next)
		alls = append(alls, all)
	}
	return &ast.Union{Queries: queries, All: alls, Position: pos}, nil
}

// parseQuery parses a sequence of clauses up to EOF or a UNION keyword.
func (p *Parser) parseQuery() (*ast.Query, error) {
	pos := p.cur().Position
	var clauses []ast.Clause
	for !p.isEOF() && !p.checkKeyword("UNION") {
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	if len(clauses) == 0 {
		return nil, p.errorf("empty query")
	}
	return &ast.Query{Clauses: clauses, Position: pos}, nil
}

// parseClause dispatches on the leading keyword.
func (p *Parser) parseClause() (ast.Clause, error) {
	tok := p.cur()
	if tok.Type != lexer.TokenKeyword {
		return nil, p.errorf("expected a clause keyword, found %q", tok.Value)
	}
	switch tok.Value {
	case "OPTIONAL":
		return p.parseMatch()
	case "MATCH":
		return p.parseMatch()
	case "CREATE":
		return p.parseCreate()
	case "MERGE":
		return p.parseMerge()
	case "SET":
		return p.parseSet()
	case "REMOVE":
		return p.parseRemove()
	case "DELETE", "DETACH":
		return p.parseDelete()
	case "RETURN":
		return p.parseReturn()
	case "WITH":
		return p.parseWith()
	case "UNWIND":
		return p.parseUnwind()
	case "FOREACH":
		return p.parseForeach()
	case "LOAD":
		return p.parseLoadCSV()
	default:
		return nil, p.errorf("unexpected clause keyword %q", tok.Value)
	}
}

func (p *Parser) parseMatch() (*ast.MatchClause, error) {
	pos := p.cur().Position
	optional := false
	if p.checkKeyword("OPTIONAL") {
		optional = true
		p.advance()
	}
	if err := p.expectKeyword("MATCH"); err != nil {
		return nil, err
	}
	fromGraph := ""
	patterns, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if p.checkKeyword("WHERE") {
		p.advance()
		where, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	return &ast.MatchClause{Patterns: patterns, Where: where, Optional: optional, FromGraph: fromGraph, Position: pos}, nil
}

func (p *Parser) parseCreate() (*ast.CreateClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	patterns, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}
	return &ast.CreateClause{Patterns: patterns, Position: pos}, nil
}

func (p *Parser) parseMerge() (*ast.MergeClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("MERGE"); err != nil {
		return nil, err
	}
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	var onCreate, onMatch []*ast.SetItem
	for p.checkKeyword("ON") {
		p.advance()
		if p.checkKeyword("CREATE") {
			p.advance()
			if err := p.expectKeyword("SET"); err != nil {
				return nil, err
			}
			items, err := p.parseSetItems()
			if err != nil {
				return nil, err
			}
			onCreate = append(onCreate, items...)
		} else if p.checkKeyword("MATCH") {
			p.advance()
			if err := p.expectKeyword("SET"); err != nil {
				return nil, err
			}
			items, err := p.parseSetItems()
			if err != nil {
				return nil, err
			}
			onMatch = append(onMatch, items...)
		} else {
			return nil, p.errorf("expected CREATE or MATCH after ON, found %q", p.cur().Value)
		}
	}
	return &ast.MergeClause{Pattern: path, OnCreateSets: onCreate, OnMatchSets: onMatch, Position: pos}, nil
}

func (p *Parser) parseSet() (*ast.SetClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	items, err := p.parseSetItems()
	if err != nil {
		return nil, err
	}
	return &ast.SetClause{Items: items, Position: pos}, nil
}

func (p *Parser) parseSetItems() ([]*ast.SetItem, error) {
	var items []*ast.SetItem
	for {
		item, err := p.parseSetItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	return items, nil
}

func (p *Parser) parseSetItem() (*ast.SetItem, error) {
	pos := p.cur().Position
	variable, err := p.parseIdentifierName()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TokenColon) {
		p.advance()
		label, err := p.parseIdentifierName()
		if err != nil {
			return nil, err
		}
		return &ast.SetItem{Variable: variable, Label: label, Position: pos}, nil
	}
	if _, err := p.expect(lexer.TokenDot, "'.'"); err != nil {
		return nil, err
	}
	property, err := p.parseIdentifierName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenOperator, "'='"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	return &ast.SetItem{Variable: variable, Property: property, Value: value, Position: pos}, nil
}

func (p *Parser) parseRemove() (*ast.RemoveClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("REMOVE"); err != nil {
		return nil, err
	}
	var items []*ast.RemoveItem
	for {
		itemPos := p.cur().Position
		variable, err := p.parseIdentifierName()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.TokenColon) {
			p.advance()
			label, err := p.parseIdentifierName()
			if err != nil {
				return nil, err
			}
			items = append(items, &ast.RemoveItem{Variable: variable, Label: label, Position: itemPos})
		} else {
			if _, err := p.expect(lexer.TokenDot, "'.'"); err != nil {
				return nil, err
			}
			property, err := p.parseIdentifierName()
			if err != nil {
				return nil, err
			}
			items = append(items, &ast.RemoveItem{Variable: variable, Property: property, Position: itemPos})
		}
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	return &ast.RemoveClause{Items: items, Position: pos}, nil
}

func (p *Parser) parseDelete() (*ast.DeleteClause, error) {
	pos := p.cur().Position
	detach := false
	if p.checkKeyword("DETACH") {
		detach = true
		p.advance()
	}
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	var items []ast.Expr
	for {
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	return &ast.DeleteClause{Items: items, Detach: detach, Position: pos}, nil
}

func (p *Parser) parseReturn() (*ast.ReturnClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("RETURN"); err != nil {
		return nil, err
	}
	distinct := false
	if p.checkKeyword("DISTINCT") {
		distinct = true
		p.advance()
	}
	items, err := p.parseReturnItems()
	if err != nil {
		return nil, err
	}
	orderBy, skip, limit, err := p.parseReturnTail()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnClause{Items: items, Distinct: distinct, OrderBy: orderBy, Skip: skip, Limit: limit, Position: pos}, nil
}

func (p *Parser) parseWith() (*ast.WithClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	distinct := false
	if p.checkKeyword("DISTINCT") {
		distinct = true
		p.advance()
	}
	items, err := p.parseReturnItems()
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	orderBy, skip, limit, err := p.parseReturnTail()
	if err != nil {
		return nil, err
	}
	if p.checkKeyword("WHERE") {
		p.advance()
		where, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	return &ast.WithClause{Items: items, Distinct: distinct, Where: where, OrderBy: orderBy, Skip: skip, Limit: limit, Position: pos}, nil
}

// parseReturnItems parses the comma-separated projection list shared
// by RETURN and WITH, including the `*` shorthand for "project every
// bound variable" (represented as a single ReturnItem wrapping a bare
// Identifier named "*").
func (p *Parser) parseReturnItems() ([]*ast.ReturnItem, error) {
	var items []*ast.ReturnItem
	for {
		itemPos := p.cur().Position
		if p.check(lexer.TokenOperator) && p.cur().Value == "*" {
			p.advance()
			items = append(items, &ast.ReturnItem{Expr: &ast.Identifier{Name: "*", Position: itemPos}, Position: itemPos})
		} else {
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			alias := ""
			if p.checkKeyword("AS") {
				p.advance()
				alias, err = p.parseIdentifierName()
				if err != nil {
					return nil, err
				}
			}
			items = append(items, &ast.ReturnItem{Expr: expr, Alias: alias, Position: itemPos})
		}
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	return items, nil
}

// parseReturnTail parses the optional ORDER BY / SKIP / LIMIT trailer
// shared by RETURN and WITH.
func (p *Parser) parseReturnTail() ([]*ast.SortItem, ast.Expr, ast.Expr, error) {
	var orderBy []*ast.SortItem
	var skip, limit ast.Expr
	if p.checkKeyword("ORDER") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, nil, nil, err
		}
		for {
			sortPos := p.cur().Position
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, nil, nil, err
			}
			desc := false
			if p.checkKeyword("DESC") || p.checkKeyword("DESCENDING") {
				desc = true
				p.advance()
			} else if p.checkKeyword("ASC") || p.checkKeyword("ASCENDING") {
				p.advance()
			}
			orderBy = append(orderBy, &ast.SortItem{Expr: expr, Desc: desc, Position: sortPos})
			if !p.check(lexer.TokenComma) {
				break
			}
			p.advance()
		}
	}
	if p.checkKeyword("SKIP") {
		p.advance()
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, nil, nil, err
		}
		skip = e
	}
	if p.checkKeyword("LIMIT") {
		p.advance()
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, nil, nil, err
		}
		limit = e
	}
	return orderBy, skip, limit, nil
}

func (p *Parser) parseUnwind() (*ast.UnwindClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("UNWIND"); err != nil {
		return nil, err
	}
	list, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	alias, err := p.parseIdentifierName()
	if err != nil {
		return nil, err
	}
	return &ast.UnwindClause{List: list, Alias: alias, Position: pos}, nil
}

func (p *Parser) parseForeach() (*ast.ForeachClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("FOREACH"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLParen, "'('"); err != nil {
		return nil, err
	}
	variable, err := p.parseIdentifierName()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("IN"); err != nil {
		return nil, err
	}
	list, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPipe, "'|'"); err != nil {
		return nil, err
	}
	var body []ast.Clause
	for !p.check(lexer.TokenRParen) {
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		body = append(body, c)
	}
	if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.ForeachClause{Variable: variable, List: list, Body: body, Position: pos}, nil
}

func (p *Parser) parseLoadCSV() (*ast.LoadCSVClause, error) {
	pos := p.cur().Position
	if err := p.expectKeyword("LOAD"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("CSV"); err != nil {
		return nil, err
	}
	withHeaders := false
	if p.checkKeyword("WITH") {
		p.advance()
		// accept "WITH HEADERS" (HEADERS isn't a reserved word, so it
		// arrives as a plain identifier).
		if p.checkIdentCI("HEADERS") {
			withHeaders = true
			p.advance()
		}
	}
	if _, err := p.expectFromKeyword(); err != nil {
		return nil, err
	}
	tok, err := p.expect(lexer.TokenString, "a file path string")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	variable, err := p.parseIdentifierName()
	if err != nil {
		return nil, err
	}
	return &ast.LoadCSVClause{Path: tok.Value, Variable: variable, WithHeaders: withHeaders, Position: pos}, nil
}

// expectFromKeyword consumes the FROM keyword; FROM is not in
// ClauseKeywords (it only appears in LOAD CSV), so it is recognized
// here as a plain identifier spelling rather than a TokenKeyword.
func (p *Parser) expectFromKeyword() (lexer.Token, error) {
	if p.checkIdentCI("FROM") {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorf("expected FROM, found %q", p.cur().Value)
}
