package scope

import (
	"slices"
	"testing"

	"lintel/internal/syntax"
	"lintel/internal/testkit"
)

func build(t *testing.T, root testkit.Shape) *syntax.Tree {
	t.Helper()
	tree, err := testkit.BuildShape(root)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func sample() testkit.Shape {
	send, n := testkit.Send, testkit.N
	return n(syntax.KindProgram,
		send("top"),
		n(syntax.KindClass,
			n(syntax.KindConst),
			n(syntax.KindCasgn, send("in_class")),
			n(syntax.KindDef,
				send("in_def"),
				n(syntax.KindClass, send("class_in_def")),
			),
			n(syntax.KindBlock,
				send("scope"),
				n(syntax.KindArgs),
				send("in_block"),
			),
			n(syntax.KindSClass, send("in_sclass")),
			n(syntax.KindDefs, send("in_defs")),
		),
	)
}

func TestClassifyNearestWins(t *testing.T) {
	tree := build(t, sample())
	tests := []struct {
		method string
		want   Class
	}{
		{"top", TopLevel},
		{"in_class", LoadTime},
		{"in_def", PerCall},
		{"class_in_def", LoadTime},
		{"in_block", PerCall},
		// the send a block is attached to is a child of the block node
		{"scope", PerCall},
		{"in_sclass", LoadTime},
		{"in_defs", PerCall},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			id := testkit.FindCall(tree, tt.method)
			if !id.IsValid() {
				t.Fatalf("no node for %s", tt.method)
			}
			if got := Classify(tree, id); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.method, got, tt.want)
			}
		})
	}
}

func TestNearestEnclosingSkipsNodeItself(t *testing.T) {
	tree := build(t, sample())
	var def syntax.NodeID
	for id := range tree.All() {
		if tree.Kind(id) == syntax.KindDef {
			def = id
			break
		}
	}
	kind, id, ok := NearestEnclosing(tree, def, Standard)
	if !ok || kind != syntax.KindClass {
		t.Fatalf("NearestEnclosing(def) = %s, %d, %v", kind, id, ok)
	}
	if id != tree.Parent(def) {
		t.Errorf("expected the class directly above the def")
	}

	if _, _, ok := NearestEnclosing(tree, tree.Root(), Standard); ok {
		t.Error("root has no ancestors")
	}
	if _, _, ok := NearestEnclosing(tree, testkit.FindCall(tree, "in_def"), syntax.KindSet{}); ok {
		t.Error("empty kind set never matches")
	}
}

func TestAncestorsInnermostFirst(t *testing.T) {
	tree := build(t, sample())
	id := testkit.FindCall(tree, "in_class")
	var kinds []syntax.Kind
	for anc := range Ancestors(tree, id) {
		kinds = append(kinds, tree.Kind(anc))
	}
	want := []syntax.Kind{syntax.KindCasgn, syntax.KindClass, syntax.KindProgram}
	if !slices.Equal(kinds, want) {
		t.Errorf("Ancestors = %v, want %v", kinds, want)
	}
}
