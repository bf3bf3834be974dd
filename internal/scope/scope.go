// Package scope answers ancestor questions about a node: which construct
// encloses it and whether code at that point runs per call or once at load
// time.
package scope

import (
	"iter"

	"lintel/internal/syntax"
)

// Class describes when code at a node executes.
type Class uint8

const (
	// TopLevel means no scope-defining ancestor exists.
	TopLevel Class = iota
	// PerCall code runs each time the enclosing method, block or lambda runs.
	PerCall
	// LoadTime code runs once while its class or module body is evaluated.
	LoadTime
)

func (c Class) String() string {
	switch c {
	case TopLevel:
		return "top-level"
	case PerCall:
		return "per-call"
	case LoadTime:
		return "load-time"
	}
	return "unknown"
}

var (
	// Executable covers constructs whose body runs on every invocation.
	Executable = syntax.NewKindSet(syntax.KindDef, syntax.KindDefs, syntax.KindBlock, syntax.KindNumBlock, syntax.KindLambda)
	// Definition covers constructs whose body runs once when defined.
	Definition = syntax.NewKindSet(syntax.KindClass, syntax.KindSClass, syntax.KindModule)
	// Standard is the set the Classify walk stops at.
	Standard = Executable.Union(Definition)
)

// Ancestors yields the proper ancestors of node, innermost first, ending
// with the root.
func Ancestors(tree *syntax.Tree, node syntax.NodeID) iter.Seq[syntax.NodeID] {
	return func(yield func(syntax.NodeID) bool) {
		for cur := tree.Parent(node); cur.IsValid(); cur = tree.Parent(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

// NearestEnclosing walks up from the parent of node and returns the first
// ancestor whose kind is in kinds. The node itself is never considered.
// ok is false when the root is passed without a match.
func NearestEnclosing(tree *syntax.Tree, node syntax.NodeID, kinds syntax.KindSet) (kind syntax.Kind, id syntax.NodeID, ok bool) {
	for anc := range Ancestors(tree, node) {
		if k := tree.Kind(anc); kinds.Has(k) {
			return k, anc, true
		}
	}
	return syntax.KindInvalid, syntax.NoNodeID, false
}

// Classify reports when code at node runs, judged by its nearest ancestor in
// Standard.
func Classify(tree *syntax.Tree, node syntax.NodeID) Class {
	kind, _, ok := NearestEnclosing(tree, node, Standard)
	switch {
	case !ok:
		return TopLevel
	case Executable.Has(kind):
		return PerCall
	default:
		return LoadTime
	}
}
