package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lintel/internal/cop"
	"lintel/internal/diag"
	"lintel/internal/syntax"
	"lintel/internal/testkit"
	"lintel/internal/trace"
)

// recorder reports every node it sees and remembers the visit order.
type recorder struct {
	id       string
	interest cop.Interest
	mu       *sync.Mutex
	log      *[]string
	fail     error
	panics   bool
}

func (r recorder) Meta() cop.Meta {
	dept, name, _ := strings.Cut(r.id, "/")
	return cop.Meta{Department: dept, Name: name, Message: "%s seen", Severity: diag.SevWarning}
}

func (r recorder) Interest() cop.Interest { return r.interest }

func (r recorder) Visit(pass *cop.Pass, node syntax.NodeID) error {
	if r.panics {
		panic("boom")
	}
	if r.fail != nil {
		return r.fail
	}
	tree := pass.Tree()
	if r.log != nil {
		r.mu.Lock()
		*r.log = append(*r.log, r.id+":"+tree.Kind(node).String()+":"+tree.Method(node))
		r.mu.Unlock()
	}
	pass.Reportf(node, tree.Kind(node).String())
	return nil
}

func sampleTree(t *testing.T) *syntax.Tree {
	t.Helper()
	send, n := testkit.Send, testkit.N
	tree, err := testkit.BuildShape(n(syntax.KindProgram,
		n(syntax.KindClass,
			n(syntax.KindConst),
			n(syntax.KindCasgn, send("now", n(syntax.KindConst))),
			n(syntax.KindDef, send("ago", send("days", n(syntax.KindInt)))),
		),
		send("puts", n(syntax.KindStr)),
	))
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func registry(t *testing.T, rules ...cop.Rule) *cop.Registry {
	t.Helper()
	reg := cop.NewRegistry()
	for _, r := range rules {
		if err := reg.Register(r); err != nil {
			t.Fatal(err)
		}
	}
	reg.Freeze()
	return reg
}

func TestAnalyzeDispatchesOnlyToInterestedCops(t *testing.T) {
	var mu sync.Mutex
	var log []string
	sends := recorder{id: "Test/Sends", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindSend}, Methods: []string{"now", "ago"}}, mu: &mu, log: &log}
	defs := recorder{id: "Test/Defs", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindDef, syntax.KindClass}}, mu: &mu, log: &log}
	all := recorder{id: "Test/AllSends", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindSend}}, mu: &mu, log: &log}

	res, err := Analyze(t.Context(), sampleTree(t), registry(t, sends, defs, all), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	want := []string{
		"Test/Defs:class:",
		"Test/Sends:send:now",
		"Test/AllSends:send:now",
		"Test/Defs:def:",
		"Test/Sends:send:ago",
		"Test/AllSends:send:ago",
		"Test/AllSends:send:days",
		"Test/AllSends:send:puts",
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
	if res.Visited != 12 {
		t.Errorf("Visited = %d, want 12", res.Visited)
	}
	if res.Dispatched != len(want) || len(res.Offenses()) != len(want) {
		t.Errorf("Dispatched = %d, offenses = %d", res.Dispatched, len(res.Offenses()))
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	tree := sampleTree(t)
	reg := registry(t,
		recorder{id: "Test/Sends", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindSend}}},
		recorder{id: "Test/Consts", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindConst}}},
	)

	first, err := Analyze(t.Context(), tree, reg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := Analyze(t.Context(), tree, reg, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first.Offenses(), again.Offenses()); diff != "" {
			t.Fatalf("offense lists differ between runs:\n%s", diff)
		}
	}
}

func TestAnalyzeConcurrentRunsShareRegistry(t *testing.T) {
	tree := sampleTree(t)
	reg := registry(t, recorder{id: "Test/Sends", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindSend}}})

	var wg sync.WaitGroup
	counts := make([]int, 8)
	for i := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Analyze(context.Background(), tree, reg, Options{})
			if err == nil {
				counts[i] = len(res.Offenses())
			}
		}()
	}
	wg.Wait()
	for i, c := range counts {
		if c != 4 {
			t.Errorf("run %d: %d offenses, want 4", i, c)
		}
	}
}

func TestAnalyzeSeverityOverrideAndLimit(t *testing.T) {
	reg := registry(t, recorder{id: "Test/Sends", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindSend}}})
	res, err := Analyze(t.Context(), sampleTree(t), reg, Options{
		Severities:  map[string]diag.Severity{"Test/Sends": diag.SevError},
		MaxOffenses: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Offenses()) != 2 || !res.Bag.Truncated() {
		t.Fatalf("expected 2 offenses and truncation, got %d (truncated=%v)", len(res.Offenses()), res.Bag.Truncated())
	}
	for _, o := range res.Offenses() {
		if o.Severity != diag.SevError {
			t.Errorf("severity = %s, want error", o.Severity)
		}
	}
}

func TestAnalyzeAbortsOnRuleError(t *testing.T) {
	errBoom := errors.New("boom")
	tests := []struct {
		name   string
		rule   recorder
		panics bool
	}{
		{name: "error", rule: recorder{id: "Test/Fails", fail: errBoom}},
		{name: "panic", rule: recorder{id: "Test/Panics", panics: true}, panics: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := tt.rule
			rule.interest = cop.Interest{Kinds: []syntax.Kind{syntax.KindDef}}
			ok := recorder{id: "Test/Fine", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindSend}}}

			res, err := Analyze(t.Context(), sampleTree(t), registry(t, ok, rule), Options{})
			if res != nil {
				t.Fatalf("expected no partial result, got %d offenses", len(res.Offenses()))
			}
			var rerr *RuleError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *RuleError, got %v", err)
			}
			if rerr.Cop != rule.id || rerr.Panicked() != tt.panics {
				t.Errorf("unexpected RuleError %+v", rerr)
			}
			if !tt.panics && !errors.Is(err, errBoom) {
				t.Errorf("RuleError must wrap the cop error")
			}
		})
	}
}

func TestAnalyzeRequiresFrozenRegistry(t *testing.T) {
	_, err := Analyze(t.Context(), sampleTree(t), cop.NewRegistry(), Options{})
	if !errors.Is(err, ErrNotFrozen) {
		t.Fatalf("expected ErrNotFrozen, got %v", err)
	}
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := Analyze(ctx, sampleTree(t), registry(t), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeTracesDispatchAtDebug(t *testing.T) {
	sends := recorder{id: "Test/Sends", interest: cop.Interest{Kinds: []syntax.Kind{syntax.KindSend}, Methods: []string{"now"}}}
	reg := registry(t, sends)

	ring := trace.NewRingTracer(64, trace.LevelDebug)
	res, err := Analyze(trace.WithTracer(t.Context(), ring), sampleTree(t), reg, Options{})
	if err != nil {
		t.Fatal(err)
	}

	var analyzeID uint64
	var points []trace.Event
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindSpanBegin && ev.Name == "analyze":
			analyzeID = ev.SpanID
		case ev.Kind == trace.KindPoint && ev.Scope == trace.ScopeNode:
			points = append(points, ev)
		}
	}
	if len(points) != res.Dispatched || len(points) != 1 {
		t.Fatalf("got %d dispatch points, Dispatched = %d", len(points), res.Dispatched)
	}
	p := points[0]
	if p.Name != "Test/Sends" || p.Detail != "send" || p.Extra["reported"] != "1" {
		t.Errorf("dispatch point = %+v", p)
	}
	if analyzeID == 0 || p.ParentID != analyzeID {
		t.Errorf("point parent = %d, want analyze span %d", p.ParentID, analyzeID)
	}

	detail := trace.NewRingTracer(64, trace.LevelDetail)
	if _, err := Analyze(trace.WithTracer(t.Context(), detail), sampleTree(t), reg, Options{}); err != nil {
		t.Fatal(err)
	}
	for _, ev := range detail.Snapshot() {
		if ev.Scope == trace.ScopeNode {
			t.Fatalf("node event below debug level: %+v", ev)
		}
	}
}
