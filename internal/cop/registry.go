package cop

import (
	"fmt"
	"slices"

	"lintel/internal/syntax"
)

type callKey struct {
	kind   syntax.Kind
	method string
}

// Registry holds cops in registration order and, once frozen, an index from
// node kind (and method name for calls) to the cops that want to see it.
type Registry struct {
	rules  []Rule
	metas  []Meta
	byID   map[string]int
	frozen bool

	byKind map[syntax.Kind][]Rule
	byCall map[callKey][]Rule
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]int),
	}
}

// Register adds rule. It fails with *DuplicateError when a cop with the same
// ID is present and with ErrFrozen after Freeze.
func (r *Registry) Register(rule Rule) error {
	if r.frozen {
		return ErrFrozen
	}
	meta := rule.Meta()
	if err := meta.validate(); err != nil {
		return err
	}
	id := meta.ID()
	if _, ok := r.byID[id]; ok {
		return &DuplicateError{ID: id}
	}
	if err := rule.Interest().validate(id); err != nil {
		return err
	}
	r.byID[id] = len(r.rules)
	r.rules = append(r.rules, rule)
	r.metas = append(r.metas, meta)
	return nil
}

// MustRegister is Register that panics; for built-in cop tables.
func (r *Registry) MustRegister(rules ...Rule) {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(fmt.Sprintf("cop: %v", err))
		}
	}
}

// Freeze builds the dispatch index. It is idempotent.
func (r *Registry) Freeze() {
	if r.frozen {
		return
	}
	r.frozen = true
	r.byKind = make(map[syntax.Kind][]Rule)
	r.byCall = make(map[callKey][]Rule)

	interests := make([]Interest, len(r.rules))
	for i, rule := range r.rules {
		interests[i] = rule.Interest()
	}

	// cops without a method filter, per kind
	for i, rule := range r.rules {
		in := interests[i]
		for _, k := range dedupKinds(in.Kinds) {
			if k.IsCall() && len(in.Methods) > 0 {
				continue
			}
			r.byKind[k] = append(r.byKind[k], rule)
		}
	}

	// every (kind, method) pair some cop filters on gets its own list that
	// merges filtered and unfiltered cops in registration order
	for i := range r.rules {
		in := interests[i]
		if len(in.Methods) == 0 {
			continue
		}
		for _, k := range in.Kinds {
			if !k.IsCall() {
				continue
			}
			for _, m := range in.Methods {
				key := callKey{kind: k, method: m}
				if _, done := r.byCall[key]; done {
					continue
				}
				r.byCall[key] = r.collectCall(interests, key)
			}
		}
	}
}

func (r *Registry) collectCall(interests []Interest, key callKey) []Rule {
	var out []Rule
	for j, rule := range r.rules {
		in := interests[j]
		if !slices.Contains(in.Kinds, key.kind) {
			continue
		}
		if len(in.Methods) == 0 || slices.Contains(in.Methods, key.method) {
			out = append(out, rule)
		}
	}
	return out
}

func dedupKinds(kinds []syntax.Kind) []syntax.Kind {
	return syntax.NewKindSet(kinds...).Kinds()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool { return r.frozen }

// For returns the cops interested in a node of kind calling method, in
// registration order. method is ignored for kinds that are not call-like.
// The returned slice must not be modified. For panics before Freeze.
func (r *Registry) For(kind syntax.Kind, method string) []Rule {
	if !r.frozen {
		panic("cop: registry used for dispatch before Freeze")
	}
	if kind.IsCall() {
		if rules, ok := r.byCall[callKey{kind: kind, method: method}]; ok {
			return rules
		}
	}
	return r.byKind[kind]
}

// Rules returns all cops in registration order.
func (r *Registry) Rules() []Rule {
	return slices.Clone(r.rules)
}

// Metas returns the metadata of all cops in registration order.
func (r *Registry) Metas() []Meta {
	return slices.Clone(r.metas)
}

func (r *Registry) Len() int { return len(r.rules) }

// Lookup finds a cop by its qualified ID.
func (r *Registry) Lookup(id string) (Rule, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.rules[i], true
}

// Subset returns a new frozen registry with the cops for which enabled
// returns true, keeping their relative order.
func (r *Registry) Subset(enabled func(Meta) bool) *Registry {
	sub := NewRegistry()
	for i, rule := range r.rules {
		if !enabled(r.metas[i]) {
			continue
		}
		sub.byID[r.metas[i].ID()] = len(sub.rules)
		sub.rules = append(sub.rules, rule)
		sub.metas = append(sub.metas, r.metas[i])
	}
	sub.Freeze()
	return sub
}
