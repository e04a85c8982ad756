package ast

import (
	"fmt"

	"go.uber.org/multierr"
)

// MaxVarLen is the clamp applied to an unbounded variable-length
// relationship's upper bound.
const MaxVarLen = 100

// Validate walks stmt and collects every structural invariant
// violation it finds (node/rel alternation, direction-flag
// consistency, varlen bounds) instead of stopping at the first one,
// using multierr to aggregate — this is a static pre-transform pass
// and is independent of the transform layer's own first-error-wins
// policy.
func Validate(stmt Statement) error {
	var err error
	switch s := stmt.(type) {
	case *Query:
		err = multierr.Append(err, validateQuery(s))
	case *Union:
		for _, q := range s.Queries {
			err = multierr.Append(err, validateQuery(q))
		}
	}
	return err
}

func validateQuery(q *Query) error {
	var err error
	for _, c := range q.Clauses {
		switch clause := c.(type) {
		case *MatchClause:
			for _, p := range clause.Patterns {
				err = multierr.Append(err, validatePath(p))
			}
		case *CreateClause:
			for _, p := range clause.Patterns {
				err = multierr.Append(err, validatePath(p))
			}
		case *MergeClause:
			err = multierr.Append(err, validatePath(clause.Pattern))
		case *ForeachClause:
			for _, nested := range clause.Body {
				if _, ok := nested.(*ForeachClause); ok {
					err = multierr.Append(err, fmt.Errorf("nested FOREACH is not supported"))
				}
			}
		}
	}
	return err
}

// validatePath enforces alternation, direction-flag consistency, and
// clamps/validates varlen bounds. A clamp is not an error; it mutates
// the AST in place, normalizing an unbounded range to a max depth of
// 100 rather than rejecting the query.
func validatePath(p *Path) error {
	if p == nil {
		return nil
	}
	var err error
	wantNode := true
	for i, el := range p.Elements {
		switch v := el.(type) {
		case *NodePattern:
			if !wantNode {
				err = multierr.Append(err, fmt.Errorf("pattern element %d: expected relationship, found node", i))
			}
			wantNode = false
		case *RelPattern:
			if wantNode {
				err = multierr.Append(err, fmt.Errorf("pattern element %d: expected node, found relationship", i))
			}
			wantNode = true
			if v.LeftArrow && v.RightArrow {
				err = multierr.Append(err, fmt.Errorf("relationship %q cannot point both directions", v.Variable))
			}
			if v.VarLen.Present {
				if v.VarLen.Min < 1 {
					err = multierr.Append(err, fmt.Errorf("relationship %q: variable-length minimum must be >= 1", v.Variable))
				}
				if v.VarLen.Unbounded {
					v.VarLen.Max = MaxVarLen
				} else if v.VarLen.Max < v.VarLen.Min {
					err = multierr.Append(err, fmt.Errorf("relationship %q: variable-length maximum must be >= minimum", v.Variable))
				}
			}
		default:
			err = multierr.Append(err, fmt.Errorf("pattern element %d: unknown element type %T", i, el))
		}
	}
	if !wantNode {
		err = multierr.Append(err, fmt.Errorf("pattern must end on a node, not a relationship"))
	}
	return err
}
