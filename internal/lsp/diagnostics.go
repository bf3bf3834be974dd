package lsp

import (
	"context"
	"time"

	"lintel/internal/diag"
	"lintel/internal/driver"
)

// scheduleLocked restarts the debounce timer of doc. s.mu must be held.
func (s *Server) scheduleLocked(uri string, doc *document) {
	doc.seq++
	seq := doc.seq
	doc.stop()
	doc.timer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(uri, seq)
	})
}

// runDiagnostics lints the buffer of uri as of edit seq and publishes the
// offenses unless the buffer changed in the meantime.
func (s *Server) runDiagnostics(uri string, seq uint64) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok || doc.seq != seq || s.shutdownRequested || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	doc.cancel = cancel
	path, text, version := doc.path, doc.text, doc.version
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()
	defer cancel()

	started := time.Now()
	res, err := s.analyze(ctx, path, text)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn("diagnostics failed", "path", path, "err", err)
		return
	}
	list := s.toDiagnostics(res)

	s.mu.Lock()
	doc, ok = s.docs[uri]
	if !ok || doc.seq != seq {
		s.mu.Unlock()
		return
	}
	doc.published = true
	s.mu.Unlock()

	s.logger.Debug("published", "path", path, "version", version, "offenses", len(list), "elapsed", time.Since(started))
	if err := s.sendPublish(uri, &version, list); err != nil {
		s.logger.Warn("failed to publish diagnostics", "uri", uri, "err", err)
	}
}

func (s *Server) toDiagnostics(res *driver.Result) []lspDiagnostic {
	if res == nil {
		return nil
	}
	offs := res.Offenses()
	if len(offs) > s.maxDiagnostics {
		offs = offs[:s.maxDiagnostics]
	}
	list := make([]lspDiagnostic, 0, len(offs))
	for _, o := range offs {
		file := res.FileSet.Get(o.Primary.File)
		d := lspDiagnostic{
			Range:    rangeForSpan(file, o.Primary),
			Severity: lspSeverity(o.Severity),
			Code:     o.Cop,
			Source:   "lintel",
			Message:  o.Message,
		}
		for _, n := range o.Notes {
			nf := res.FileSet.Get(n.Span.File)
			d.RelatedInformation = append(d.RelatedInformation, diagnosticRelatedInformation{
				Location: location{URI: pathToURI(nf.Path), Range: rangeForSpan(nf, n.Span)},
				Message:  n.Msg,
			})
		}
		list = append(list, d)
	}
	return list
}

func lspSeverity(sev diag.Severity) int {
	switch {
	case sev >= diag.SevError:
		return severityError
	case sev == diag.SevWarning:
		return severityWarning
	case sev == diag.SevInfo:
		return severityHint
	default:
		return severityInformation
	}
}
