// Package scope tracks which Cypher variables are bound at each point
// in a query, and the SQL table alias each one maps to, with node,
// edge, projected-scalar, and path variables all kept in one registry
// keyed by kind.
package scope

import "fmt"

// Kind tags what a bound variable refers to.
type Kind int

const (
	KindNode Kind = iota
	KindEdge
	KindProjected
	KindPath
)

// Variable is one entry in a Scope: a Cypher name bound to a SQL
// alias, with enough metadata for engine/transform to decide how to
// reference it (join target vs. already-projected column).
type Variable struct {
	Name      string
	Alias     string
	Kind      Kind
	Inherited bool // bound in an earlier clause, not the current one
	AliasIsID bool // alias already refers to the row id directly (projected scalars), skip the ".id" suffix transform adds for raw node/edge variables
	Path      interface{} // *ast.Path for KindPath entries; interface{} avoids an import cycle with engine/ast
}

// Scope is the variable registry for one query (or one UNION branch).
type Scope struct {
	vars         map[string]*Variable
	order        []string
	aliasCounter int
	graph        string
}

// New returns an empty Scope.
func New() *Scope {
	return &Scope{vars: make(map[string]*Variable)}
}

// NextAlias returns the next unique SQL alias for an anonymous entity,
// in "_gql_default_alias_<n>" form.
func (s *Scope) NextAlias() string {
	alias := fmt.Sprintf("_gql_default_alias_%d", s.aliasCounter)
	s.aliasCounter++
	return alias
}

// register inserts or overwrites the variable named name, preserving
// first-registration order for deterministic iteration (Variables()).
func (s *Scope) register(name string, v *Variable) *Variable {
	if _, exists := s.vars[name]; !exists {
		s.order = append(s.order, name)
	}
	s.vars[name] = v
	return v
}

// RegisterNode binds name as a node variable, always drawing its SQL
// alias from NextAlias(); the Cypher name (when present) is kept only
// as the scope lookup key, never spliced into emitted SQL as an alias.
func (s *Scope) RegisterNode(name string) *Variable {
	alias := s.NextAlias()
	v := &Variable{Name: name, Alias: alias, Kind: KindNode}
	key := name
	if key == "" {
		key = alias
	}
	return s.register(key, v)
}

// RegisterEdge binds name as an edge/relationship variable, always
// drawing its SQL alias from NextAlias().
func (s *Scope) RegisterEdge(name string) *Variable {
	alias := s.NextAlias()
	v := &Variable{Name: name, Alias: alias, Kind: KindEdge}
	key := name
	if key == "" {
		key = alias
	}
	return s.register(key, v)
}

// RegisterProjected binds name to a column alias produced by a
// RETURN/WITH/UNWIND projection; its value is already a scalar, so
// property/identifier references resolve straight to alias with no
// ".id" suffix (AliasIsID is set).
func (s *Scope) RegisterProjected(name, alias string) *Variable {
	v := &Variable{Name: name, Alias: alias, Kind: KindProjected, AliasIsID: true}
	return s.register(name, v)
}

// RegisterPath binds name as a path variable, keeping a reference to
// the pattern it was bound from so engine/transform's path functions
// (nodes(), relationships(), length()) can walk its elements.
func (s *Scope) RegisterPath(name string, path interface{}) *Variable {
	v := &Variable{Name: name, Alias: name, Kind: KindPath, Path: path}
	return s.register(name, v)
}

// Lookup returns the variable bound to name, if any.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Alias is a convenience wrapper returning just the SQL alias for name.
func (s *Scope) Alias(name string) (string, bool) {
	v, ok := s.vars[name]
	if !ok {
		return "", false
	}
	return v.Alias, true
}

// IsBound reports whether name has any binding in scope.
func (s *Scope) IsBound(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// IsEdge reports whether name is bound as an edge variable.
func (s *Scope) IsEdge(name string) bool {
	v, ok := s.vars[name]
	return ok && v.Kind == KindEdge
}

// IsPath reports whether name is bound as a path variable.
func (s *Scope) IsPath(name string) bool {
	v, ok := s.vars[name]
	return ok && v.Kind == KindPath
}

// IsProjected reports whether name is bound to an already-projected
// scalar column rather than a node/edge row.
func (s *Scope) IsProjected(name string) bool {
	v, ok := s.vars[name]
	return ok && v.Kind == KindProjected
}

// MarkAllInherited flags every currently bound variable as belonging
// to an earlier clause. engine/transform calls this between clauses so
// it can tell freshly-declared pattern variables (which need a join)
// from ones already bound (which need a scope lookup instead).
func (s *Scope) MarkAllInherited() {
	for _, name := range s.order {
		s.vars[name].Inherited = true
	}
}

// Reset clears every binding, used at WITH/UNWIND/UNION boundaries
// where Cypher scoping starts a fresh variable set. The alias counter is NOT reset, so aliases stay globally
// unique across the whole query.
func (s *Scope) Reset() {
	s.vars = make(map[string]*Variable)
	s.order = nil
}

// Variables returns every bound variable in first-registration order.
func (s *Scope) Variables() []*Variable {
	out := make([]*Variable, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.vars[name])
	}
	return out
}

// SetGraph records which graph (multi-graph routing label) this scope
// resolves unqualified patterns against; "" means the default graph.
func (s *Scope) SetGraph(graph string) { s.graph = graph }

// Graph returns the current graph routing label.
func (s *Scope) Graph() string { return s.graph }
