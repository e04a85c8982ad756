package parser

import (
	"fmt"

	"github.com/cyphersql/compiler/engine/lexer"
)

// ParseError reports a syntax problem encountered above the token
// stream (grammar-level, as opposed to engine/lexer's character-level
// errors). Kept as its own type rather than shared with engine/lexer's
// ParseError so each package's position/message shape can evolve
// independently.
type ParseError struct {
	Token   lexer.Token
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Token.Line, e.Token.Column, e.Message)
}

func newParseErrorf(tok lexer.Token, format string, args ...interface{}) *ParseError {
	return &ParseError{Token: tok, Message: fmt.Sprintf(format, args...)}
}
