package ruby

import (
	"strings"
	"testing"

	"lintel/internal/scope"
	"lintel/internal/source"
	"lintel/internal/syntax"
	"lintel/internal/testkit"
)

func parse(t *testing.T, src string) (*Result, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rb", []byte(src))
	file := fs.Get(id)
	res, err := Parse(t.Context(), file)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := testkit.CheckTreeInvariants(res.Tree, file); err != nil {
		t.Fatalf("tree invariants: %v", err)
	}
	return res, file
}

func findKind(tree *syntax.Tree, kind syntax.Kind) []syntax.NodeID {
	var out []syntax.NodeID
	for id := range tree.All() {
		if tree.Kind(id) == kind {
			out = append(out, id)
		}
	}
	return out
}

func TestCallChainInClassBody(t *testing.T) {
	res, _ := parse(t, "class SomeClass\n  TODAY = Time.zone.now\nend\n")
	tree := res.Tree
	if res.HasErrors() {
		t.Fatalf("unexpected syntax errors: %+v", res.Errors)
	}

	now := testkit.FindCall(tree, "now")
	if !now.IsValid() {
		t.Fatal("no send for now")
	}
	if got := tree.Text(now); got != "Time.zone.now" {
		t.Errorf("Text(now) = %q", got)
	}
	if tree.Kind(tree.Parent(now)) != syntax.KindCasgn {
		t.Errorf("parent of now = %s, want casgn", tree.Kind(tree.Parent(now)))
	}
	if kind, _, ok := scope.NearestEnclosing(tree, now, scope.Standard); !ok || kind != syntax.KindClass {
		t.Errorf("nearest scope = %s (%v), want class", kind, ok)
	}
	zone := testkit.FindCall(tree, "zone")
	if tree.Parent(zone) != now {
		t.Error("receiver call must be a child of the outer call")
	}
}

func TestBlockWrapsCall(t *testing.T) {
	res, _ := parse(t, "items.map { |x| x.ago }\n")
	tree := res.Tree

	blocks := findKind(tree, syntax.KindBlock)
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(blocks))
	}
	blk := blocks[0]
	first := tree.Child(blk, 0)
	if tree.Kind(first) != syntax.KindSend || tree.Method(first) != "map" {
		t.Fatalf("first child of block = %s %q", tree.Kind(first), tree.Method(first))
	}
	if got := tree.Text(first); got != "items.map" {
		t.Errorf("send text = %q, want items.map", got)
	}
	if tree.Kind(tree.Child(blk, 1)) != syntax.KindArgs {
		t.Errorf("second child of block = %s, want args", tree.Kind(tree.Child(blk, 1)))
	}
	ago := testkit.FindCall(tree, "ago")
	if kind, id, ok := scope.NearestEnclosing(tree, ago, scope.Standard); !ok || kind != syntax.KindBlock || id != blk {
		t.Errorf("nearest scope of ago = %s", kind)
	}
}

func TestLambdaBecomesBlock(t *testing.T) {
	res, _ := parse(t, "class A\n  @@today = -> { Time.zone.now }\nend\n")
	tree := res.Tree

	cvasgn := findKind(tree, syntax.KindCvasgn)
	if len(cvasgn) != 1 {
		t.Fatalf("expected one cvasgn, got %d", len(cvasgn))
	}
	blocks := findKind(tree, syntax.KindBlock)
	if len(blocks) != 1 {
		t.Fatalf("expected one block for the lambda, got %d", len(blocks))
	}
	if tree.Kind(tree.Child(blocks[0], 0)) != syntax.KindLambda {
		t.Errorf("lambda block must start with a lambda node")
	}
	now := testkit.FindCall(tree, "now")
	if kind, _, _ := scope.NearestEnclosing(tree, now, scope.Standard); kind != syntax.KindBlock {
		t.Errorf("nearest scope of now = %s, want block", kind)
	}
}

func TestNumberedBlock(t *testing.T) {
	res, _ := parse(t, "items.each { puts _1 }\nitems.each { |x| puts x }\nitems.each { it.save }\n")
	tree := res.Tree
	if n := len(findKind(tree, syntax.KindNumBlock)); n != 2 {
		t.Errorf("expected 2 numblocks, got %d", n)
	}
	if n := len(findKind(tree, syntax.KindBlock)); n != 1 {
		t.Errorf("expected 1 block, got %d", n)
	}
}

func TestNodeKinds(t *testing.T) {
	src := strings.Join([]string{
		"module M",
		"  LIMIT = 3",
		"  @count = 1",
		"  $debug = false",
		"  total = 0",
		"  total += 1",
		"  class << self",
		"    def build; end",
		"  end",
		"  def self.create(attrs); end",
		"  user&.now",
		"  now",
		"end",
		"",
	}, "\n")
	res, _ := parse(t, src)
	tree := res.Tree

	for _, kind := range []syntax.Kind{
		syntax.KindModule, syntax.KindCasgn, syntax.KindIvasgn, syntax.KindGvasgn,
		syntax.KindLvasgn, syntax.KindOpAsgn, syntax.KindSClass, syntax.KindDef,
		syntax.KindDefs, syntax.KindCSend, syntax.KindInt,
	} {
		if len(findKind(tree, kind)) == 0 {
			t.Errorf("no %s node", kind)
		}
	}
	csend := findKind(tree, syntax.KindCSend)[0]
	if tree.Method(csend) != "now" {
		t.Errorf("csend method = %q", tree.Method(csend))
	}
	// a bare identifier is not a call
	for _, id := range findKind(tree, syntax.KindSend) {
		if tree.Method(id) == "now" {
			t.Errorf("bare `now` converted to a send at %s", tree.Span(id))
		}
	}
}

func TestCommentsCollected(t *testing.T) {
	res, _ := parse(t, "# lintel:disable Rails/ModuleLevelRelativeDate\nclass A\n  X = 1 # trailing\nend\n")
	if len(res.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(res.Comments))
	}
	if res.Comments[0].Text != "# lintel:disable Rails/ModuleLevelRelativeDate" {
		t.Errorf("first comment = %q", res.Comments[0].Text)
	}
	if res.Comments[1].Text != "# trailing" {
		t.Errorf("second comment = %q", res.Comments[1].Text)
	}
}

func TestSyntaxErrorsAreRecoverable(t *testing.T) {
	res, _ := parse(t, "class A\n  def oops(\nend\n")
	if !res.HasErrors() {
		t.Fatal("expected syntax errors")
	}
	for _, e := range res.Errors {
		if e.Message == "" {
			t.Errorf("syntax error without message at %s", e.Span)
		}
	}
}

func TestEmptySource(t *testing.T) {
	res, _ := parse(t, "")
	if res.Tree.Len() != 1 || res.Tree.Kind(res.Tree.Root()) != syntax.KindProgram {
		t.Errorf("empty source must give a lone program node, got %d nodes", res.Tree.Len())
	}
}
