package directive

import (
	"strings"

	"lintel/internal/diag"
	"lintel/internal/source"
)

// Registry holds the directives of one file and answers whether a cop is
// disabled on a given line.
type Registry struct {
	file       *source.File
	directives []Directive
}

// NewRegistry creates an empty registry for file.
func NewRegistry(file *source.File) *Registry {
	return &Registry{file: file}
}

// Scan builds a registry from the comment spans of file. Ordinary comments
// are ignored.
func Scan(file *source.File, fs *source.FileSet, comments []source.Span) *Registry {
	r := NewRegistry(file)
	for _, sp := range comments {
		action, cops, ok := Parse(file.Slice(sp))
		if !ok {
			continue
		}
		start, _ := fs.Resolve(sp)
		line := file.GetLine(start.Line)
		before := line[:min(int(start.Col-1), len(line))]
		r.Add(Directive{
			Action:   action,
			Cops:     cops,
			Span:     sp,
			Line:     start.Line,
			Trailing: strings.TrimSpace(before) != "",
		})
	}
	return r
}

// Add registers a directive. Directives must be added in source order.
func (r *Registry) Add(d Directive) {
	r.directives = append(r.directives, d)
}

// All returns the registered directives.
func (r *Registry) All() []Directive {
	return append([]Directive(nil), r.directives...)
}

// Len returns the number of directives.
func (r *Registry) Len() int {
	return len(r.directives)
}

// Disabled reports whether cop is switched off on line. Directives on their
// own line are replayed in order, so "enable Rails/X" after "disable all"
// switches only that cop back on. The line of an enable directive is still
// covered by the range it closes. A trailing disable covers only its line.
func (r *Registry) Disabled(cop string, line uint32) bool {
	disabled := false
	for _, d := range r.directives {
		if d.Line > line {
			break
		}
		if !d.Targets(cop) {
			continue
		}
		switch {
		case d.Action == Disable && d.Trailing:
			if d.Line == line {
				return true
			}
		case d.Action == Disable:
			disabled = true
		case d.Line < line:
			disabled = false
		}
	}
	return disabled
}

// Unknown returns the targets used in directives for which known is false,
// each with the span of the first directive naming it, in source order.
// known receives qualified cop names and department names alike.
func (r *Registry) Unknown(known func(string) bool) []UnknownCop {
	seen := make(map[string]bool)
	var out []UnknownCop
	for _, d := range r.directives {
		for _, c := range d.Cops {
			if c == All || seen[c] || known(c) {
				continue
			}
			seen[c] = true
			out = append(out, UnknownCop{Name: c, Span: d.Span})
		}
	}
	return out
}

// UnknownCop is a directive target that names no known cop.
type UnknownCop struct {
	Name string
	Span source.Span
}

// Apply removes the offenses of bag that fall on disabled lines and returns
// how many were removed. Offenses of other files are kept.
func (r *Registry) Apply(bag *diag.Bag, fs *source.FileSet) int {
	if len(r.directives) == 0 {
		return 0
	}
	return bag.Filter(func(o diag.Offense) bool {
		if o.Primary.File != r.file.ID {
			return true
		}
		start, _ := fs.Resolve(o.Primary)
		return !r.Disabled(o.Cop, start.Line)
	})
}
