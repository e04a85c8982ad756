// Package mapping holds the static, read-only tables that the lexer,
// parser, and transform packages all key off: keyword recognition,
// operator precedence, and function-family dispatch. Centralizing
// them here keeps all three layers agreeing on the same vocabulary
// without importing one another.
package mapping

// ClauseKeyword marks a reserved word that starts or joins a clause.
type ClauseKeyword struct {
	Word string
}

// ClauseKeywords is the set of reserved words that introduce or
// modify a Cypher clause. Multi-word clauses (OPTIONAL MATCH, ORDER
// BY, UNION ALL, LOAD CSV) are recognized by the parser looking ahead
// one token; this table lists each of their words (e.g. both ORDER
// and BY).
var ClauseKeywords = map[string]bool{
	"MATCH":    true,
	"OPTIONAL": true,
	"CREATE":   true,
	"MERGE":    true,
	"SET":      true,
	"REMOVE":   true,
	"DELETE":   true,
	"DETACH":   true,
	"RETURN":   true,
	"WITH":     true,
	"UNWIND":   true,
	"FOREACH":  true,
	"LOAD":     true,
	"CSV":      true,
	"UNION":    true,
	"ALL":      true,
	"AS":       true,
	"WHERE":    true,
	"ORDER":    true,
	"BY":       true,
	"ASC":      true,
	"ASCENDING": true,
	"DESC":     true,
	"DESCENDING": true,
	"SKIP":     true,
	"LIMIT":    true,
	"DISTINCT": true,
	"ON":       true,
}

// WordOperators is the set of reserved words used as operators rather
// than clause introducers. IsReservedWord includes them, so the lexer
// always emits them as keywords and they cannot be used as
// identifiers or property-map keys (e.g. `{contains: true}`).
var WordOperators = map[string]bool{
	"AND":      true,
	"OR":       true,
	"XOR":      true,
	"NOT":      true,
	"IN":       true,
	"STARTS":   true,
	"ENDS":     true,
	"CONTAINS": true,
	"IS":       true,
}

// LiteralKeywords are reserved words that are themselves literal values.
var LiteralKeywords = map[string]bool{
	"NULL":  true,
	"TRUE":  true,
	"FALSE": true,
}

// CaseKeywords introduce or populate a CASE expression.
var CaseKeywords = map[string]bool{
	"CASE": true,
	"WHEN": true,
	"THEN": true,
	"ELSE": true,
	"END":  true,
}

// ListPredicateKeywords name the four list-predicate functions that
// parse with special trailing-IN-WHERE grammar rather than ordinary
// call syntax.
var ListPredicateKeywords = map[string]bool{
	"ALL":    true,
	"ANY":    true,
	"NONE":   true,
	"SINGLE": true,
}

// PathKindKeywords distinguish a plain path variable from the
// shortestPath()/allShortestPaths() wrapper forms.
var PathKindKeywords = map[string]string{
	"SHORTESTPATH":     "shortest",
	"ALLSHORTESTPATHS": "all_shortest",
}

// IsReservedWord reports whether word (already upper-cased by the
// caller) is reserved anywhere in the grammar, which the lexer uses to
// decide whether a bareword is a keyword token or an identifier.
func IsReservedWord(word string) bool {
	return ClauseKeywords[word] || WordOperators[word] || LiteralKeywords[word] || CaseKeywords[word]
}
