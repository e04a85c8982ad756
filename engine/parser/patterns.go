package parser

import (
	"github.com/cyphersql/compiler/engine/ast"
	"github.com/cyphersql/compiler/engine/lexer"
)

// parsePatternList parses the comma-separated pattern list after
// MATCH/CREATE.
func (p *Parser) parsePatternList() ([]*ast.Path, error) {
	var paths []*ast.Path
	for {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	return paths, nil
}

// parsePath parses one pattern: an optional `var =` binding, an
// optional shortestPath(...)/allShortestPaths(...) wrapper, then an
// alternating node/rel/node/... chain.
func (p *Parser) parsePath() (*ast.Path, error) {
	pos := p.cur().Position
	variable := ""
	if p.check(lexer.TokenIdentifier) && p.peekAt(1).Type == lexer.TokenOperator && p.peekAt(1).Value == "=" {
		variable = p.advance().Value
		p.advance() // '='
	}

	kind := ast.PathNormal
	if p.checkIdentCI("shortestPath") || p.checkIdentCI("allShortestPaths") {
		if p.checkIdentCI("allShortestPaths") {
			kind = ast.PathAllShortest
		} else {
			kind = ast.PathShortest
		}
		p.advance()
		if _, err := p.expect(lexer.TokenLParen, "'('"); err != nil {
			return nil, err
		}
		elems, err := p.parseElementChain()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.Path{Elements: elems, Variable: variable, Kind: kind, Position: pos}, nil
	}

	elems, err := p.parseElementChain()
	if err != nil {
		return nil, err
	}
	return &ast.Path{Elements: elems, Variable: variable, Kind: kind, Position: pos}, nil
}

func (p *Parser) parseElementChain() ([]ast.PathElement, error) {
	var elems []ast.PathElement
	node, err := p.parseNodePattern()
	if err != nil {
		return nil, err
	}
	elems = append(elems, node)
	for p.check(lexer.TokenDash) || p.check(lexer.TokenArrowLeft) {
		rel, err := p.parseRelPattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, rel)
		nextNode, err := p.parseNodePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, nextNode)
	}
	return elems, nil
}

func (p *Parser) parseNodePattern() (*ast.NodePattern, error) {
	pos := p.cur().Position
	if _, err := p.expect(lexer.TokenLParen, "'('"); err != nil {
		return nil, err
	}
	n := &ast.NodePattern{Position: pos}
	if p.check(lexer.TokenIdentifier) {
		n.Variable = p.advance().Value
	}
	for p.check(lexer.TokenColon) {
		p.advance()
		label, err := p.parseIdentifierName()
		if err != nil {
			return nil, err
		}
		n.Labels = append(n.Labels, label)
	}
	if p.check(lexer.TokenLBrace) {
		props, err := p.parseMapLiteral()
		if err != nil {
			return nil, err
		}
		n.Properties = props
	}
	if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return n, nil
}

// parseRelPattern parses a relationship segment including its
// direction arrows, e.g. `-[r:KNOWS*1..3]->`, `<-[:LIKES]-`, `--`.
func (p *Parser) parseRelPattern() (*ast.RelPattern, error) {
	pos := p.cur().Position
	rel := &ast.RelPattern{Position: pos}

	if p.check(lexer.TokenArrowLeft) {
		rel.LeftArrow = true
		p.advance()
	} else {
		if _, err := p.expect(lexer.TokenDash, "'-'"); err != nil {
			return nil, err
		}
	}

	if p.check(lexer.TokenLBracket) {
		p.advance()
		if p.check(lexer.TokenIdentifier) {
			rel.Variable = p.advance().Value
		}
		if p.check(lexer.TokenColon) {
			p.advance()
			typ, err := p.parseIdentifierName()
			if err != nil {
				return nil, err
			}
			rel.Types = append(rel.Types, typ)
			for p.check(lexer.TokenPipe) {
				p.advance()
				if p.check(lexer.TokenColon) {
					p.advance()
				}
				typ, err := p.parseIdentifierName()
				if err != nil {
					return nil, err
				}
				rel.Types = append(rel.Types, typ)
			}
		}
		if p.check(lexer.TokenOperator) && p.cur().Value == "*" {
			p.advance()
			rng, err := p.parseVarLenRange()
			if err != nil {
				return nil, err
			}
			rel.VarLen = rng
		}
		if p.check(lexer.TokenLBrace) {
			props, err := p.parseMapLiteral()
			if err != nil {
				return nil, err
			}
			rel.Properties = props
		}
		if _, err := p.expect(lexer.TokenRBracket, "']'"); err != nil {
			return nil, err
		}
	}

	if p.check(lexer.TokenArrowRight) {
		rel.RightArrow = true
		p.advance()
	} else {
		if _, err := p.expect(lexer.TokenDash, "'-'"); err != nil {
			return nil, err
		}
	}
	return rel, nil
}

// parseVarLenRange parses the body of a `*min..max` quantifier, with
// the leading `*` already consumed. Bare `*` means 1..unbounded;
// `*3` means exactly 3; `*1..3` / `*..3` / `*1..` are all accepted.
func (p *Parser) parseVarLenRange() (ast.VarLenRange, error) {
	rng := ast.VarLenRange{Present: true, Min: 1, Unbounded: true}
	if p.check(lexer.TokenInteger) {
		n := parseIntLiteral(p.advance().Value)
		rng.Min = n
		rng.Max = n
		rng.Unbounded = false
	}
	if p.check(lexer.TokenDotDot) {
		p.advance()
		rng.Unbounded = true
		if p.check(lexer.TokenInteger) {
			rng.Max = parseIntLiteral(p.advance().Value)
			rng.Unbounded = false
		}
	}
	return rng, nil
}
