// Package trace records what a lint run is doing: the driver, each file, the
// parse and analyze passes, and (at debug level) cop dispatch.
//
// Tracing is off by default and is enabled from the command line:
//
//	lintel check --trace=- --trace-level=detail app/
//	lintel check --trace=run.json --trace-mode=both app/
//
// # Tracers
//
//   - Nop: no-op tracer used when tracing is disabled
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last events in memory for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: nothing is streamed; the ring is dumped when the run fails
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-file events
//   - LevelDebug: everything, including per-node dispatch
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End(path)
//
// Spans nest under the span current in ctx. Each file of a run gets its own
// lane (WithLane), which becomes the thread row in chrome://tracing.
package trace
