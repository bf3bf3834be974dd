// Package engine runs the cops of a frozen registry over one syntax tree.
//
// The walk is a single iterative depth-first pre-order traversal. Every node is
// visited exactly once and, for each node, the interested cops are invoked in
// registration order, so the offense list of a tree is deterministic.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"

	"lintel/internal/cop"
	"lintel/internal/diag"
	"lintel/internal/syntax"
	"lintel/internal/trace"
)

// ErrNotFrozen is returned when Analyze gets a registry that was not frozen.
var ErrNotFrozen = errors.New("engine: cop registry must be frozen before analysis")

// cancelCheckEvery is how many nodes are visited between context checks.
const cancelCheckEvery = 1024

// Options tune a single Analyze call.
type Options struct {
	// Severities overrides the default severity per cop ID.
	Severities map[string]diag.Severity
	// MaxOffenses caps the offense list; zero means no limit.
	MaxOffenses int
}

// Result is the outcome of analysing one tree.
type Result struct {
	// Bag holds the offenses in the order they were reported.
	Bag *diag.Bag
	// Visited is the number of nodes walked.
	Visited int
	// Dispatched is the number of Visit calls made.
	Dispatched int
}

// Offenses returns the ordered offense list.
func (r *Result) Offenses() []diag.Offense {
	if r == nil || r.Bag == nil {
		return nil
	}
	return r.Bag.Items()
}

// Analyze walks tree once and invokes the interested cops of reg for every
// node. A cop that fails or panics aborts the run: Analyze then returns a
// *RuleError and no result.
func Analyze(ctx context.Context, tree *syntax.Tree, reg *cop.Registry, opts Options) (*Result, error) {
	if !reg.Frozen() {
		return nil, ErrNotFrozen
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := trace.Start(ctx, trace.ScopePass, "analyze")
	traceNodes := trace.FromContext(ctx).Level().ShouldEmit(trace.ScopeNode)

	res := &Result{Bag: diag.NewBag(opts.MaxOffenses)}
	reporter := diag.BagReporter{Bag: res.Bag}
	passes := make(map[string]*cop.Pass, reg.Len())

	passFor := func(rule cop.Rule) *cop.Pass {
		meta := rule.Meta()
		id := meta.ID()
		if p, ok := passes[id]; ok {
			return p
		}
		sev := meta.Severity
		if s, ok := opts.Severities[id]; ok {
			sev = s
		}
		p := cop.NewPass(ctx, tree, meta, sev, reporter)
		passes[id] = p
		return p
	}

	for node := range tree.All() {
		if res.Visited%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				span.End("canceled")
				return nil, err
			}
		}
		res.Visited++

		for _, rule := range reg.For(tree.Kind(node), tree.Method(node)) {
			res.Dispatched++
			pass := passFor(rule)
			before := res.Bag.Len()
			if err := visit(rule, pass, tree, node); err != nil {
				span.WithExtra("cop", err.Cop).End("rule failed")
				return nil, err
			}
			if traceNodes {
				traceDispatch(ctx, pass.Meta().ID(), tree, node, res.Bag.Len()-before)
			}
		}
	}

	span.WithExtra("nodes", strconv.Itoa(res.Visited)).
		WithExtra("offenses", strconv.Itoa(res.Bag.Len())).
		End("")
	return res, nil
}

// traceDispatch records one cop visiting one node as a ScopeNode point.
func traceDispatch(ctx context.Context, cop string, tree *syntax.Tree, node syntax.NodeID, reported int) {
	sp := tree.Span(node)
	trace.Point(ctx, trace.ScopeNode, cop, tree.Kind(node).String(), map[string]string{
		"node":     strconv.FormatUint(uint64(node), 10),
		"span":     strconv.FormatUint(uint64(sp.Start), 10) + "-" + strconv.FormatUint(uint64(sp.End), 10),
		"reported": strconv.Itoa(reported),
	})
}

// visit runs one cop on one node and converts errors and panics into a
// RuleError.
func visit(rule cop.Rule, pass *cop.Pass, tree *syntax.Tree, node syntax.NodeID) (rerr *RuleError) {
	id := pass.Meta().ID()
	defer func() {
		if r := recover(); r != nil {
			rerr = &RuleError{
				Cop:   id,
				Node:  node,
				Span:  tree.Span(node),
				Err:   fmt.Errorf("panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()
	if err := rule.Visit(pass, node); err != nil {
		return &RuleError{Cop: id, Node: node, Span: tree.Span(node), Err: err}
	}
	return nil
}
