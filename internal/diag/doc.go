// Package diag defines the offense model shared by the engine, the cops and
// the driver.
//
// # Data model
//
// Offense is the central record. It contains:
//
//   - Severity – RuboCop's six-level scale (info … fatal), see severity.go.
//   - Cop – the qualified cop name, "Department/Name".
//   - Message – the rendered, human oriented text.
//   - Primary span – the source.Span of the offending node.
//   - Notes – optional secondary spans/messages for additional context.
//   - Safe – whether the cop considers a mechanical fix safe.
//
// # Emitting offenses
//
// Producers never build a Bag directly. They receive a diag.Reporter and
// either call Report with a ready Offense or go through NewReportBuilder and
// chain WithNote before Emit. BagReporter appends into a Bag in call order;
// the Bag never reorders or deduplicates, so for one file the list order is
// the traversal order of the engine.
//
// # Consumers
//
//   - internal/diagfmt: renders offenses into pretty/short/json/sarif formats.
//   - internal/driver: collects one bag per file, applies inline directives
//     and caches results.
//
// Package diag does not perform any formatting beyond the golden/short line
// form, IO or CLI integration.
package diag
