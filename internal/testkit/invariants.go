package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"lintel/internal/source"
	"lintel/internal/syntax"
)

// CheckTreeInvariants runs the structural checks every frontend must satisfy:
// 1) the root lies inside the file content and has no parent
// 2) every child links back to its parent and lies inside the parent span
// 3) siblings are in source order and do not overlap
// 4) every node is reachable exactly once from the root
func CheckTreeInvariants(tree *syntax.Tree, sf *source.File) error {
	if tree == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	root := tree.Root()
	if tree.Parent(root).IsValid() {
		return fmt.Errorf("root %d has parent %d", root, tree.Parent(root))
	}
	rs := tree.Span(root)
	if rs.File != sf.ID {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", rs.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if rs.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", rs.End, lenContent)
	}

	seen := 0
	for id := range tree.All() {
		seen++
		sp := tree.Span(id)
		if !tree.Kind(id).Valid() {
			return fmt.Errorf("node %d has no kind", id)
		}
		var prev source.Span
		for i, c := range collect(tree, id) {
			if tree.Parent(c) != id {
				return fmt.Errorf("child %d of %d links to parent %d", c, id, tree.Parent(c))
			}
			cs := tree.Span(c)
			if !sp.Contains(cs) {
				return fmt.Errorf("%s span %v is outside parent %s span %v", tree.Kind(c), cs, tree.Kind(id), sp)
			}
			if i > 0 && cs.Start < prev.End {
				return fmt.Errorf("%s span %v overlaps previous sibling %v", tree.Kind(c), cs, prev)
			}
			prev = cs
		}
	}
	if seen != tree.Len() {
		return fmt.Errorf("walk reached %d of %d nodes", seen, tree.Len())
	}
	return nil
}

func collect(tree *syntax.Tree, id syntax.NodeID) []syntax.NodeID {
	out := make([]syntax.NodeID, 0, tree.ChildCount(id))
	for c := range tree.Children(id) {
		out = append(out, c)
	}
	return out
}
