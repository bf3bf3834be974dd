package diag

import (
	"lintel/internal/source"
)

type Note struct {
	Span source.Span `msgpack:"span"`
	Msg  string      `msgpack:"msg"`
}

// Offense is a single finding of a cop. Offenses are created through a
// Reporter and never modified afterwards.
type Offense struct {
	Severity Severity    `msgpack:"sev"`
	Cop      string      `msgpack:"cop"`
	Message  string      `msgpack:"msg"`
	Primary  source.Span `msgpack:"span"`
	Notes    []Note      `msgpack:"notes,omitempty"`
	// Safe mirrors the cop's safety flag: false means a fix needs review.
	Safe bool `msgpack:"safe"`
}

func New(sev Severity, cop string, primary source.Span, msg string) Offense {
	return Offense{
		Severity: sev,
		Cop:      cop,
		Primary:  primary,
		Message:  msg,
	}
}

func (o Offense) WithNote(sp source.Span, msg string) Offense {
	o.Notes = append(o.Notes, Note{Span: sp, Msg: msg})
	return o
}
