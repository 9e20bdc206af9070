package schema

import (
	"fmt"
	"regexp"
	"sort"
)

var partSuffix = regexp.MustCompile(`_part[0-9]+$`)

// Registry is the validated, immutable, read-only-after-construction map
// from schema id to Schema. It is safe for concurrent use by any number of
// requests once built.
type Registry struct {
	byID   map[string]*Schema
	sorted []*Schema // stable topological order, dependencies before dependents
}

// NewRegistry validates every schema's internal invariants, verifies every
// dependency id resolves, rejects cycles, and rejects duplicate ids. It is
// the only place schema-set startup failures (§4.10, §7) are raised.
func NewRegistry(schemas []*Schema) (*Registry, error) {
	byID := make(map[string]*Schema, len(schemas))
	for _, s := range schemas {
		if s == nil {
			continue
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("schema registry: duplicate id %q", s.ID)
		}
		byID[s.ID] = s
	}

	for _, s := range byID {
		for _, dep := range s.Dependencies {
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("schema %q: dependency %q does not resolve", s.ID, dep)
			}
		}
	}

	sorted, err := topoSort(byID)
	if err != nil {
		return nil, err
	}

	if err := checkDimensionsResolve(byID); err != nil {
		return nil, err
	}

	return &Registry{byID: byID, sorted: sorted}, nil
}

// topoSort returns schemas ordered so every dependency precedes its
// dependents, or an error if the dependency graph contains a cycle.
func topoSort(byID map[string]*Schema) ([]*Schema, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(byID))
	order := make([]*Schema, 0, len(byID))

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("schema registry: dependency cycle detected at %q", id)
		}

		color[id] = gray
		s := byID[id]
		deps := append([]string(nil), s.Dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[id] = black
		order = append(order, s)
		return nil
	}

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// checkDimensionsResolve verifies every dimension a derived rule's
// conditions or weights reference is produced by some transitive dependency.
func checkDimensionsResolve(byID map[string]*Schema) error {
	for _, s := range byID {
		if s.Kind != KindDerived {
			continue
		}

		depDims := make(map[string]bool)
		var collect func(id string, seen map[string]bool)
		collect = func(id string, seen map[string]bool) {
			if seen[id] {
				return
			}
			seen[id] = true
			dep := byID[id]
			depDims[dep.Dimension] = true
			for _, d := range dep.Dependencies {
				collect(d, seen)
			}
		}
		for _, dep := range s.Dependencies {
			collect(dep, map[string]bool{})
		}

		for _, rule := range s.Derived.Rules {
			for _, cond := range rule.Conditions {
				if !depDims[cond.Dimension] {
					return fmt.Errorf("schema %q: derived rule references unresolved dimension %q", s.ID, cond.Dimension)
				}
			}
			for dim := range rule.Weights {
				if !depDims[dim] {
					return fmt.Errorf("schema %q: derived rule weight references unresolved dimension %q", s.ID, dim)
				}
			}
		}
	}
	return nil
}

// Get returns the schema with the given id.
func (r *Registry) Get(id string) (*Schema, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// ListFilter narrows List's results.
type ListFilter struct {
	Kind         Kind
	IncludeParts bool
	ContextType  Scope
}

// List returns schemas matching filter, in topological (dependency-first)
// order. include_parts defaults to false, hiding ids matching *_part[0-9]+.
// A non-empty ContextType additionally restricts to schemas whose binary-gate
// rules contain at least one rule of the requested scope, transitively
// through derived dependencies.
func (r *Registry) List(filter ListFilter) []*Schema {
	var out []*Schema

	for _, s := range r.sorted {
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		if !filter.IncludeParts && partSuffix.MatchString(s.ID) {
			continue
		}
		if filter.ContextType != "" && !r.matchesContextType(s, filter.ContextType) {
			continue
		}
		out = append(out, s)
	}

	return out
}

func (r *Registry) matchesContextType(s *Schema, context Scope) bool {
	seen := map[string]bool{}
	var has func(id string) bool
	has = func(id string) bool {
		if seen[id] {
			return false
		}
		seen[id] = true

		schema, ok := r.byID[id]
		if !ok {
			return false
		}

		if schema.Kind == KindBinaryGate {
			for _, rule := range schema.BinaryGate.Rules {
				if rule.Scope == context || rule.Scope == ScopeBoth {
					return true
				}
			}
		}

		for _, dep := range schema.Dependencies {
			if has(dep) {
				return true
			}
		}

		return false
	}

	return has(s.ID)
}

// Len returns the number of schemas loaded.
func (r *Registry) Len() int {
	return len(r.byID)
}
