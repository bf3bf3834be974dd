// Package directive handles inline comments that switch cops off and on:
//
//	# lintel:disable Rails/ModuleLevelRelativeDate
//	TODAY = Time.zone.now
//	# lintel:enable Rails/ModuleLevelRelativeDate
//
//	STAMP = Time.now # lintel:disable all
//
// A directive on a line of its own opens a range that lasts until the
// matching enable or the end of the file. A trailing directive only covers its
// own line. The rubocop: prefix is accepted as well so existing comments keep
// working.
package directive

import (
	"strings"

	"lintel/internal/source"
)

// Action is what a directive does.
type Action uint8

const (
	Disable Action = iota + 1
	Enable
)

func (a Action) String() string {
	switch a {
	case Disable:
		return "disable"
	case Enable:
		return "enable"
	}
	return "unknown"
}

// All targets every cop.
const All = "all"

var prefixes = []string{"lintel:", "rubocop:"}

// Directive is one parsed comment.
type Directive struct {
	Action Action
	// Cops lists qualified cop names, department names or All.
	Cops []string
	Span source.Span
	// Line is the 1-based line of the comment.
	Line uint32
	// Trailing is set when code precedes the comment on its line.
	Trailing bool
}

// Targets reports whether the directive applies to cop, by its qualified
// name, its department or All.
func (d Directive) Targets(cop string) bool {
	dept, _, _ := strings.Cut(cop, "/")
	for _, c := range d.Cops {
		if c == All || c == cop || c == dept {
			return true
		}
	}
	return false
}

// Parse recognises a directive in a comment's text. ok is false for ordinary
// comments.
func Parse(text string) (action Action, cops []string, ok bool) {
	body, found := strings.CutPrefix(strings.TrimSpace(text), "#")
	if !found {
		return 0, nil, false
	}
	body = strings.TrimSpace(body)

	var rest string
	matched := false
	for _, p := range prefixes {
		if r, hit := strings.CutPrefix(body, p); hit {
			rest, matched = r, true
			break
		}
	}
	if !matched {
		return 0, nil, false
	}

	verb, list, _ := strings.Cut(rest, " ")
	switch verb {
	case "disable":
		action = Disable
	case "enable":
		action = Enable
	default:
		return 0, nil, false
	}

	// "-- reason" ends the cop list
	if i := strings.Index(list, "--"); i >= 0 {
		list = list[:i]
	}
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cops = append(cops, c)
		}
	}
	if len(cops) == 0 {
		return 0, nil, false
	}
	return action, cops, true
}
