package ast

import (
	"fmt"

	"github.com/jinzhu/inflection"
)

// ParseError reports a syntax problem with position info.
type ParseError struct {
	Message  string
	Position int
	Line     int
	Column   int
	Token    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// SuggestLabel finds a close match for an unrecognized label or
// relationship type name among the known names seen so far in the
// query. It checks a Levenshtein-distance match plus a pluralization
// check: a query that refers to `People` when every
// pattern so far used `Person` is almost always a singular/plural
// mismatch rather than a typo, so that case is checked first.
func SuggestLabel(unknown string, known []string) string {
	for _, k := range known {
		if inflection.Singular(k) == inflection.Singular(unknown) && k != unknown {
			return k
		}
	}
	best := ""
	bestDist := 4 // only suggest within edit distance 3
	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}
	return best
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
