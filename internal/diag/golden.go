package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"lintel/internal/source"
)

type goldenOffense struct {
	Severity string
	Cop      string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGoldenOffenses renders offenses into a stable, single-line-per-entry
// representation suitable for golden files. Entries are sorted by position so
// that golden files do not depend on the order files were analysed in.
func FormatGoldenOffenses(offs []Offense, fs *source.FileSet, includeNotes bool) string {
	rendered := renderOffenses(offs, fs, includeNotes)
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Column < dj.Column
	})
	return joinOffenses(rendered)
}

// FormatShortOffenses renders offenses one per line in the order given,
// which for a single file is the order they were reported in.
func FormatShortOffenses(offs []Offense, fs *source.FileSet, includeNotes bool) string {
	return joinOffenses(renderOffenses(offs, fs, includeNotes))
}

func renderOffenses(offs []Offense, fs *source.FileSet, includeNotes bool) []goldenOffense {
	if fs == nil || len(offs) == 0 {
		return nil
	}
	rendered := make([]goldenOffense, 0, len(offs))
	for i := range offs {
		rendered = appendOffense(rendered, &offs[i], fs, includeNotes)
	}
	return rendered
}

func joinOffenses(rendered []goldenOffense) string {
	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Cop, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendOffense(out []goldenOffense, o *Offense, fs *source.FileSet, includeNotes bool) []goldenOffense {
	if loc, ok := resolveSpan(fs, o.Primary); ok {
		out = append(out, goldenOffense{
			Severity: o.Severity.String(),
			Cop:      o.Cop,
			Path:     loc.Path,
			Line:     loc.Line,
			Column:   loc.Column,
			Message:  sanitizeMessage(o.Message),
		})
	}

	if includeNotes {
		for _, note := range o.Notes {
			nloc, nok := resolveSpan(fs, note.Span)
			if !nok {
				continue
			}
			out = append(out, goldenOffense{
				Severity: "note",
				Cop:      o.Cop,
				Path:     nloc.Path,
				Line:     nloc.Line,
				Column:   nloc.Column,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	return out
}

type resolvedSpan struct {
	Path   string
	Line   uint32
	Column uint32
}

func resolveSpan(fs *source.FileSet, span source.Span) (loc resolvedSpan, ok bool) {
	defer func() {
		if recover() != nil {
			loc = resolvedSpan{}
			ok = false
		}
	}()

	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return resolvedSpan{
		Path:   normalizePath(file.FormatPath("relative", fs.BaseDir())),
		Line:   start.Line,
		Column: start.Col,
	}, true
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
