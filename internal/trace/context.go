package trace

import "context"

type ctxKey struct{}

// state is what a context carries: the tracer, the span new spans nest
// under and the lane they are drawn on.
type state struct {
	tracer Tracer
	span   uint64
	lane   uint64
}

func stateOf(ctx context.Context) state {
	if ctx != nil {
		if st, ok := ctx.Value(ctxKey{}).(state); ok {
			return st
		}
	}
	return state{tracer: Nop}
}

func with(ctx context.Context, st state) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, st)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// WithTracer attaches t to ctx. Spans started from the result are roots.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return with(ctx, state{tracer: t})
}

// WithLane puts the spans started from the result on lane. The driver gives
// each file the lane of its position in the run plus one; lane 0 is the
// driver itself.
func WithLane(ctx context.Context, lane uint64) context.Context {
	st := stateOf(ctx)
	if !st.tracer.Enabled() {
		return ctx
	}
	st.lane = lane
	return with(ctx, st)
}

// CurrentSpanID returns the span that Start would nest under, 0 at the root.
func CurrentSpanID(ctx context.Context) uint64 {
	return stateOf(ctx).span
}

// Start begins a span under the current span of ctx and returns a context in
// which it is current. When the tracer does not emit scope, ctx is returned
// unchanged with a no-op span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	st := stateOf(ctx)
	span := begin(st.tracer, scope, name, st.span, st.lane)
	if span.id == 0 {
		return ctx, span
	}
	st.span = span.id
	return with(ctx, st), span
}

// Point emits an instant event under the current span of ctx.
func Point(ctx context.Context, scope Scope, name, detail string, extra map[string]string) {
	st := stateOf(ctx)
	if !st.tracer.Enabled() || !st.tracer.Level().ShouldEmit(scope) {
		return
	}
	st.tracer.Emit(&Event{
		Time:     now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: st.span,
		Lane:     st.lane,
		Name:     name,
		Detail:   detail,
		Extra:    extra,
	})
}
