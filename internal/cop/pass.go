package cop

import (
	"context"
	"fmt"

	"lintel/internal/diag"
	"lintel/internal/source"
	"lintel/internal/syntax"
)

// Pass is the view a cop gets of the analysis in progress. A Pass is bound
// to one cop and one tree and is only valid for the duration of Visit.
type Pass struct {
	ctx      context.Context
	tree     *syntax.Tree
	meta     Meta
	severity diag.Severity
	reporter diag.Reporter
}

// NewPass binds a cop to a tree. severity overrides the cop's default
// severity for the offenses it reports.
func NewPass(ctx context.Context, tree *syntax.Tree, meta Meta, severity diag.Severity, reporter diag.Reporter) *Pass {
	if ctx == nil {
		ctx = context.Background()
	}
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Pass{
		ctx:      ctx,
		tree:     tree,
		meta:     meta,
		severity: severity,
		reporter: reporter,
	}
}

func (p *Pass) Context() context.Context { return p.ctx }

// Tree returns the read-only tree being analysed.
func (p *Pass) Tree() *syntax.Tree { return p.tree }

// Meta returns the metadata of the cop the pass is bound to.
func (p *Pass) Meta() Meta { return p.meta }

// Report records an offense at node with message.
func (p *Pass) Report(node syntax.NodeID, message string) {
	p.ReportAt(p.tree.Span(node), message)
}

// ReportAt records an offense at an explicit span.
func (p *Pass) ReportAt(sp source.Span, message string) {
	diag.NewReportBuilder(p.reporter, p.severity, p.meta.ID(), sp, message).
		Safe(p.meta.Safe).
		Emit()
}

// Reportf records an offense at node rendering the cop's message template
// with args.
func (p *Pass) Reportf(node syntax.NodeID, args ...any) {
	p.Report(node, fmt.Sprintf(p.meta.Message, args...))
}
