package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqs      atomic.Uint64
	spans     atomic.Uint64
	openSpans atomic.Int64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return seqs.Add(1) }

var now = time.Now

// Span is an open interval of a lint run: the whole check, one file, or a
// pass over a file. A disabled span has ID 0 and all its methods are no-ops.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	lane    uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

var nopSpan = &Span{tracer: Nop}

// Begin starts a span under parent (0 for a root) on lane 0. Code that has a
// context uses Start instead.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, parent, 0)
}

func begin(t Tracer, scope Scope, name string, parent, lane uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return nopSpan
	}
	s := &Span{
		tracer:  t,
		id:      spans.Add(1),
		parent:  parent,
		lane:    lane,
		scope:   scope,
		name:    name,
		started: now(),
	}
	openSpans.Add(1)
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Lane:     s.lane,
		Name:     s.name,
		Detail:   detail,
	}
}

// End emits the end event with detail (usually the file path) and the
// extras collected so far, and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	openSpans.Add(-1)
	at := now()
	ev := s.event(KindSpanEnd, at, detail)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return at.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
