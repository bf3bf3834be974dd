package diag

import "lintel/internal/source"

// Reporter — минимальный контракт получения offense от cop'ов и фаз.
// Реализации: BagReporter (кладёт в Bag), NopReporter, MultiReporter (fan-out).
type Reporter interface {
	Report(o Offense)
}

// ReportBuilder accumulates offense details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	off      Offense
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, cop string, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		off:      New(sev, cop, primary, msg),
	}
}

// ReportFatal is a shortcut for SevFatal offenses.
func ReportFatal(r Reporter, cop string, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevFatal, cop, primary, msg)
}

// ReportWarning is a shortcut for SevWarning offenses.
func ReportWarning(r Reporter, cop string, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, cop, primary, msg)
}

// WithNote appends a note to the offense.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.off = b.off.WithNote(sp, msg)
	return b
}

// Safe sets the safety flag of the offense.
func (b *ReportBuilder) Safe(safe bool) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.off.Safe = safe
	return b
}

// Emit sends the offense to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.off)
	}
	b.emitted = true
}

// Offense returns the accumulated offense without emitting.
func (b *ReportBuilder) Offense() Offense {
	if b == nil {
		return Offense{}
	}
	return b.off
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(o Offense) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(o)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Offense) {}

// MultiReporter forwards every offense to each reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(o Offense) {
	for _, r := range m {
		if r != nil {
			r.Report(o)
		}
	}
}
