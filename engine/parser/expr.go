package parser

import (
	"strconv"
	"strings"

	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/lexer"
	"github.com/cyphersql/compiler/engine/mapping"
)

// parseExpression is a precedence-climbing parser keyed off
// engine/mapping.Precedence; minPrec is the binding power below which
// an infix operator stops being consumed by this call (the caller
// already owns it).
func (p *Parser) parseExpression(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		var kind mapping.BinaryOpKind
		var ok bool
		if tok.Type == lexer.TokenKeyword || tok.Type == lexer.TokenOperator || tok.Type == lexer.TokenDash {
			if kind, ok = mapping.LookupWordOperator(tok.Value); !ok {
				kind, ok = mapping.LookupSymbolOperator(tok.Value)
			}
		}
		if !ok {
			break
		}
		prec := mapping.Precedence(kind)
		if prec == 0 || prec < minPrec {
			break
		}
		pos := tok.Position
		p.advance()
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: kind, Left: left, Right: right, Position: pos}
	}
	return left, nil
}

// parseUnary handles the two prefix operators: NOT (binds above
// AND/OR/XOR but below comparisons, per Cypher's grammar) and unary
// minus (binds tighter than everything, folded into `0 - x`).
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.checkKeyword("NOT") {
		pos := p.cur().Position
		p.advance()
		child, err := p.parseExpression(mapping.Precedence(mapping.OpEq))
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Child: child, Position: pos}, nil
	}
	if (p.check(lexer.TokenOperator) || p.check(lexer.TokenDash)) && p.cur().Value == "-" {
		pos := p.cur().Position
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := &ast.Literal{Kind: ast.LitInteger, Int: 0, Position: pos}
		return &ast.BinaryOp{Op: mapping.OpSub, Left: zero, Right: child, Position: pos}, nil
	}
	return p.parsePostfixed()
}

// parsePostfixed parses a primary expression, then applies any
// trailing property access, label check, subscript, map projection,
// or IS [NOT] NULL suffixes, left to right.
func (p *Parser) parsePostfixed() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(lexer.TokenDot):
			pos := p.cur().Position
			p.advance()
			key, err := p.parseIdentifierName()
			if err != nil {
				return nil, err
			}
			expr = &ast.Property{Base: expr, Key: key, Position: pos}
		case p.check(lexer.TokenColon):
			pos := p.cur().Position
			p.advance()
			label, err := p.parseIdentifierName()
			if err != nil {
				return nil, err
			}
			expr = &ast.LabelExpr{Base: expr, Label: label, Position: pos}
		case p.check(lexer.TokenLBracket):
			next, err := p.parseSubscript(expr)
			if err != nil {
				return nil, err
			}
			expr = next
		case p.check(lexer.TokenLBrace):
			pos := p.cur().Position
			items, err := p.parseMapProjectionItems()
			if err != nil {
				return nil, err
			}
			expr = &ast.MapProjection{Base: expr, Items: items, Position: pos}
		case p.checkKeyword("IS"):
			pos := p.cur().Position
			p.advance()
			isNot := false
			if p.checkKeyword("NOT") {
				isNot = true
				p.advance()
			}
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			expr = &ast.NullCheck{Child: expr, IsNot: isNot, Position: pos}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseSubscript(base ast.Expr) (ast.Expr, error) {
	pos := p.cur().Position
	p.advance() // '['
	var idx, to ast.Expr
	var err error
	isSlice := false
	if !p.check(lexer.TokenDotDot) {
		idx, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if p.check(lexer.TokenDotDot) {
		isSlice = true
		p.advance()
		if !p.check(lexer.TokenRBracket) {
			to, err = p.parseExpression(0)
			if err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.TokenRBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.Subscript{Base: base, Index: idx, IsSlice: isSlice, To: to, Position: pos}, nil
}

func (p *Parser) parseMapProjectionItems() ([]ast.ProjectionItem, error) {
	if _, err := p.expect(lexer.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	var items []ast.ProjectionItem
	if p.check(lexer.TokenRBrace) {
		p.advance()
		return items, nil
	}
	for {
		if p.check(lexer.TokenDot) {
			p.advance()
			if p.check(lexer.TokenOperator) && p.cur().Value == "*" {
				p.advance()
				items = append(items, ast.ProjectionItem{Kind: ast.ProjAllProps})
			} else {
				name, err := p.parseIdentifierName()
				if err != nil {
					return nil, err
				}
				items = append(items, ast.ProjectionItem{Kind: ast.ProjProperty, Name: name})
			}
		} else {
			name, err := p.parseIdentifierName()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenColon, "':'"); err != nil {
				return nil, err
			}
			value, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			items = append(items, ast.ProjectionItem{Kind: ast.ProjAliased, Name: name, Value: value})
		}
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lexer.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Parser) parseMapLiteral() (*ast.MapLiteral, error) {
	pos := p.cur().Position
	if _, err := p.expect(lexer.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	m := &ast.MapLiteral{Position: pos}
	if p.check(lexer.TokenRBrace) {
		p.advance()
		return m, nil
	}
	for {
		key, err := p.parseIdentifierName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenColon, "':'"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, ast.MapEntry{Key: key, Value: value})
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lexer.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch {
	case tok.Type == lexer.TokenInteger:
		p.advance()
		n, _ := strconv.ParseInt(tok.Value, 10, 64)
		return &ast.Literal{Kind: ast.LitInteger, Int: n, Position: tok.Position}, nil

	case tok.Type == lexer.TokenDecimal:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Value, 64)
		return &ast.Literal{Kind: ast.LitDecimal, Decimal: f, Position: tok.Position}, nil

	case tok.Type == lexer.TokenString:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, Str: tok.Value, Position: tok.Position}, nil

	case tok.Type == lexer.TokenKeyword && tok.Value == "TRUE":
		p.advance()
		return &ast.Literal{Kind: ast.LitBoolean, Bool: true, Position: tok.Position}, nil

	case tok.Type == lexer.TokenKeyword && tok.Value == "FALSE":
		p.advance()
		return &ast.Literal{Kind: ast.LitBoolean, Bool: false, Position: tok.Position}, nil

	case tok.Type == lexer.TokenKeyword && tok.Value == "NULL":
		p.advance()
		return &ast.Literal{Kind: ast.LitNull, Position: tok.Position}, nil

	case tok.Type == lexer.TokenParameter:
		p.advance()
		return &ast.Parameter{Name: tok.Value, Position: tok.Position}, nil

	case tok.Type == lexer.TokenKeyword && tok.Value == "CASE":
		return p.parseCaseExpr()

	case tok.Type == lexer.TokenLParen:
		p.advance()
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil

	case tok.Type == lexer.TokenLBracket:
		return p.parseBracketExpr()

	case tok.Type == lexer.TokenLBrace:
		return p.parseMapLiteral()

	case tok.Type == lexer.TokenIdentifier && strings.EqualFold(tok.Value, "EXISTS"):
		return p.parseExistsExpr()

	case tok.Type == lexer.TokenIdentifier && strings.EqualFold(tok.Value, "reduce"):
		return p.parseReduceExpr()

	case tok.Type == lexer.TokenKeyword && tok.Value == "ALL" && p.peekAt(1).Type == lexer.TokenLParen:
		return p.parseListPredicate()

	case tok.Type == lexer.TokenIdentifier && p.peekAt(1).Type == lexer.TokenLParen &&
		(strings.EqualFold(tok.Value, "any") || strings.EqualFold(tok.Value, "none") || strings.EqualFold(tok.Value, "single")):
		return p.parseListPredicate()

	case tok.Type == lexer.TokenIdentifier:
		name := tok.Value
		pos := tok.Position
		p.advance()
		if p.check(lexer.TokenLParen) {
			return p.parseFunctionCall(name, pos)
		}
		return &ast.Identifier{Name: name, Position: pos}, nil

	default:
		return nil, p.errorf("unexpected token %q in expression", tok.Value)
	}
}

func (p *Parser) parseFunctionCall(name string, pos int) (ast.Expr, error) {
	p.advance() // '('
	distinct := false
	if p.checkKeyword("DISTINCT") {
		distinct = true
		p.advance()
	}
	var args []ast.Expr
	if !p.check(lexer.TokenRParen) {
		for {
			if len(args) == 0 && p.check(lexer.TokenOperator) && p.cur().Value == "*" {
				args = append(args, &ast.Identifier{Name: "*", Position: p.cur().Position})
				p.advance()
			} else {
				e, err := p.parseExpression(0)
				if err != nil {
					return nil, err
				}
				args = append(args, e)
			}
			if !p.check(lexer.TokenComma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: name, Args: args, Distinct: distinct, Position: pos}, nil
}

func (p *Parser) parseCaseExpr() (ast.Expr, error) {
	pos := p.cur().Position
	p.advance() // CASE
	var subject ast.Expr
	if !p.checkKeyword("WHEN") {
		s, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		subject = s
	}
	var branches []ast.CaseBranch
	for p.checkKeyword("WHEN") {
		p.advance()
		when, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		then, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.CaseBranch{When: when, Then: then})
	}
	var elseExpr ast.Expr
	if p.checkKeyword("ELSE") {
		p.advance()
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		elseExpr = e
	}
	if err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	return &ast.Case{Subject: subject, Branches: branches, Else: elseExpr, Position: pos}, nil
}

// parseBracketExpr disambiguates the three `[` forms: an empty or
// ordinary list literal, a list comprehension (`x IN list ...`), and
// a pattern comprehension (starts with a node pattern).
func (p *Parser) parseBracketExpr() (ast.Expr, error) {
	pos := p.cur().Position
	p.advance() // '['
	if p.check(lexer.TokenRBracket) {
		p.advance()
		return &ast.List{Position: pos}, nil
	}
	if p.check(lexer.TokenLParen) {
		path, err := p.parsePath()
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
		if _, err := p.expect(lexer.TokenPipe, "'|'"); err != nil {
			return nil, err
		}
		collect, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRBracket, "']'"); err != nil {
			return nil, err
		}
		return &ast.PatternComprehension{Pattern: path, Where: where, Collect: collect, Position: pos}, nil
	}
	if p.check(lexer.TokenIdentifier) && p.checkKeywordAt(1, "IN") {
		variable := p.advance().Value
		p.advance() // IN
		list, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		var where, transform ast.Expr
		if p.checkKeyword("WHERE") {
			p.advance()
			where, err = p.parseExpression(0)
			if err != nil {
				return nil, err
			}
		}
		if p.check(lexer.TokenPipe) {
			p.advance()
			transform, err = p.parseExpression(0)
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.TokenRBracket, "']'"); err != nil {
			return nil, err
		}
		return &ast.ListComprehension{Variable: variable, List: list, Where: where, Transform: transform, Position: pos}, nil
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
	if _, err := p.expect(lexer.TokenRBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.List{Items: items, Position: pos}, nil
}

func (p *Parser) checkKeywordAt(offset int, keyword string) bool {
	tok := p.peekAt(offset)
	return tok.Type == lexer.TokenKeyword && tok.Value == keyword
}

// parseExistsExpr handles both the modern `EXISTS { pattern }` block
// form and the legacy `EXISTS((a)-->(b))` / `EXISTS(n.prop)` call form.
func (p *Parser) parseExistsExpr() (ast.Expr, error) {
	pos := p.cur().Position
	p.advance() // EXISTS
	if p.check(lexer.TokenLBrace) {
		p.advance()
		path, err := p.parsePath()
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
		if _, err := p.expect(lexer.TokenRBrace, "'}'"); err != nil {
			return nil, err
		}
		return &ast.ExistsExpr{Pattern: path, Where: where, Position: pos}, nil
	}
	if _, err := p.expect(lexer.TokenLParen, "'('"); err != nil {
		return nil, err
	}
	if p.check(lexer.TokenLParen) {
		path, err := p.parsePath()
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
		if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.ExistsExpr{Pattern: path, Where: where, Position: pos}, nil
	}
	prop, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.ExistsExpr{Property: prop, Position: pos}, nil
}

func (p *Parser) parseListPredicate() (ast.Expr, error) {
	pos := p.cur().Position
	var kind ast.ListPredicateKind
	switch strings.ToUpper(p.cur().Value) {
	case "ALL":
		kind = ast.PredAll
	case "ANY":
		kind = ast.PredAny
	case "NONE":
		kind = ast.PredNone
	case "SINGLE":
		kind = ast.PredSingle
	}
	p.advance()
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
	var pred ast.Expr
	if p.checkKeyword("WHERE") {
		p.advance()
		pred, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.ListPredicate{Kind: kind, Variable: variable, List: list, Predicate: pred, Position: pos}, nil
}

func (p *Parser) parseReduceExpr() (ast.Expr, error) {
	pos := p.cur().Position
	p.advance() // reduce
	if _, err := p.expect(lexer.TokenLParen, "'('"); err != nil {
		return nil, err
	}
	acc, err := p.parseIdentifierName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenOperator, "'='"); err != nil {
		return nil, err
	}
	init, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenComma, "','"); err != nil {
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
	fold, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.ReduceExpr{Accumulator: acc, Init: init, Variable: variable, List: list, Fold: fold, Position: pos}, nil
}
