package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lintel/internal/diag"
	"lintel/internal/source"
)

type palette struct {
	path, lineNo, caret, cop, note *color.Color
	sev                            map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		lineNo: color.New(color.FgHiBlack),
		caret:  color.New(color.FgGreen, color.Bold),
		cop:    color.New(color.FgHiBlack),
		note:   color.New(color.FgCyan),
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:       color.New(color.FgBlue),
			diag.SevRefactor:   color.New(color.FgCyan),
			diag.SevConvention: color.New(color.FgCyan),
			diag.SevWarning:    color.New(color.FgMagenta),
			diag.SevError:      color.New(color.FgRed),
			diag.SevFatal:      color.New(color.FgRed, color.Bold),
		},
	}
	all := []*color.Color{p.path, p.lineNo, p.caret, p.cop, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	if c, ok := p.sev[s]; ok {
		return c
	}
	return p.cop
}

// Pretty форматирует offenses в человекочитаемый вид, в порядке bag.Items().
// Для каждого offense печатает:
// <path>:<line>:<col>: <S>: <Dept/Name>: <message>
// затем строку исходника с подчёркиванием ^^^ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	for _, o := range bag.Items() {
		if err := prettyOffense(w, &o, fs, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

func prettyOffense(w io.Writer, o *diag.Offense, fs *source.FileSet, opts PrettyOpts, pal palette) error {
	f := fs.Get(o.Primary.File)
	start, end := fs.Resolve(o.Primary)
	path := displayPath(fs, o.Primary.File, opts.PathMode)

	sevc := pal.severity(o.Severity)
	if _, err := fmt.Fprintf(w, "%s: %s: %s %s\n",
		pal.path.Sprintf("%s:%d:%d", path, start.Line, start.Col),
		sevc.Sprint(o.Severity.Letter()),
		pal.cop.Sprint(o.Cop+":"),
		o.Message,
	); err != nil {
		return err
	}

	first, ctx := contextLines(f, start.Line, opts.Context)
	gutter := len(fmt.Sprint(start.Line))
	for i, line := range ctx {
		if _, err := fmt.Fprintf(w, "%s | %s\n", pal.lineNo.Sprintf("%*d", gutter, first+uint32(i)), clip(line, opts.Width)); err != nil {
			return err
		}
	}

	line := f.GetLine(start.Line)
	pad, width := underline(line, start, end)
	text := clip(line, opts.Width)
	if opts.Width > 0 {
		avail := max(int(opts.Width)-pad, 1)
		width = min(width, avail)
	}
	if opts.Context > 0 {
		if _, err := fmt.Fprintf(w, "%s | %s\n%s | %s%s\n",
			pal.lineNo.Sprintf("%*d", gutter, start.Line), text,
			strings.Repeat(" ", gutter), strings.Repeat(" ", pad), pal.caret.Sprint(strings.Repeat("^", width)),
		); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "%s\n%s%s\n", text, strings.Repeat(" ", pad), pal.caret.Sprint(strings.Repeat("^", width))); err != nil {
		return err
	}

	if !opts.ShowNotes {
		return nil
	}
	for _, n := range o.Notes {
		ns, _ := fs.Resolve(n.Span)
		if _, err := fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), displayPath(fs, n.Span.File, opts.PathMode), ns.Line, ns.Col, n.Msg); err != nil {
			return err
		}
	}
	return nil
}

// underline returns the display column where the caret starts and how many
// carets to draw. Widths are measured in terminal cells; a span that runs
// past the end of its first line is underlined to the end of the line.
func underline(line string, start, end source.LineCol) (pad, width int) {
	col := min(int(start.Col-1), len(line))
	pad = runewidth.StringWidth(expandTabs(line[:col]))

	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col-1), len(line))
	}
	if stop < col {
		stop = col
	}
	width = runewidth.StringWidth(expandTabs(line[col:stop]))
	return pad, max(width, 1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", " ")
}

func clip(line string, width uint16) string {
	line = expandTabs(strings.TrimRight(line, "\r"))
	if width == 0 || runewidth.StringWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "…")
}

// Summary prints the closing line of a run, e.g.
// "3 files inspected, 2 offenses detected".
func Summary(w io.Writer, files, offenses int, useColor bool) error {
	c := color.New(color.FgGreen)
	if offenses > 0 {
		c = color.New(color.FgRed)
	}
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	noOffenses := "no offenses"
	if offenses > 0 {
		noOffenses = plural(offenses, "offense")
	}
	_, err := fmt.Fprintf(w, "\n%s inspected, %s detected\n", plural(files, "file"), c.Sprint(noOffenses))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
