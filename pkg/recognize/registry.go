package recognize

import (
	"sync"

	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Registry holds recognition rules in catalog order. Catalog order breaks
// ties between matches of equal length at the same offset.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]int
	rules []Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Register appends a rule to the catalog.
// A rule with an existing ID replaces the old one in place.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byID[rule.ID()]; ok {
		r.rules[idx] = rule
		return
	}
	r.byID[rule.ID()] = len(r.rules)
	r.rules = append(r.rules, rule)
}

// Get retrieves a rule by ID.
func (r *Registry) Get(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.rules[idx], true
}

// Rules returns the rules in catalog order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Rule(nil), r.rules...)
}

// Without returns a registry holding every rule except the given IDs.
func (r *Registry) Without(ids ...string) *Registry {
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[id] = true
	}
	out := NewRegistry()
	for _, rule := range r.Rules() {
		if !skip[rule.ID()] {
			out.Register(rule)
		}
	}
	return out
}

// DefaultRegistry returns a registry with every built-in rule.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(NewGeneratorDeclarationRule())
	reg.Register(NewXorOperatorRule())
	reg.Register(NewPowerOperatorRule())
	reg.Register(NewRationalLiteralRule())
	return reg
}

// inlineRules returns the rules that may apply inside another rule's match.
func inlineRules(rules []Rule) []Rule {
	var out []Rule
	for _, rule := range rules {
		if rule.Kind() != spanindex.KindExpansion {
			out = append(out, rule)
		}
	}
	return out
}
