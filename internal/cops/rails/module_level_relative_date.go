// Package rails holds cops for Rails applications.
package rails

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"lintel/internal/cop"
	"lintel/internal/diag"
	"lintel/internal/scope"
	"lintel/internal/syntax"
)

// relativeDateMethods are the ActiveSupport calls whose result depends on
// the moment they are evaluated.
var relativeDateMethods = []string{
	"now", "since", "from_now", "after", "ago", "until", "before", "yesterday", "tomorrow",
}

var (
	// goodScopes re-run their body on every call or yield.
	goodScopes = syntax.NewKindSet(syntax.KindDef, syntax.KindDefs, syntax.KindBlock, syntax.KindNumBlock, syntax.KindLambda)
	// badScopes run their body once, when the file is loaded.
	badScopes  = syntax.NewKindSet(syntax.KindClass, syntax.KindSClass, syntax.KindModule)
	scopeKinds = goodScopes.Union(badScopes)
)

// ModuleLevelRelativeDate flags relative date calls evaluated in a class or
// module body. Such a value is computed once and kept until the class is
// reloaded:
//
//	# bad
//	validates :start_at, comparison: { start_at: Time.zone.now }
//	TODAY = Time.zone.now
//	@@today = Time.zone.now
//
//	# good
//	validates :start_at, comparison: { start_at: -> { Time.zone.now } }
//	def today
//	  Time.zone.now
//	end
//
// The cop is unsafe: fixing an offense means moving the call into a method or
// proc.
type ModuleLevelRelativeDate struct{}

func (ModuleLevelRelativeDate) Meta() cop.Meta {
	return cop.Meta{
		Department:       "Rails",
		Name:             "ModuleLevelRelativeDate",
		Message:          "Do not use `%s` at the module level as it will be evaluated only once.",
		Description:      "Checks if a relative date call occurs at the class or module level.",
		Severity:         diag.SevWarning,
		Safe:             false,
		SafeAutoCorrect:  false,
		EnabledByDefault: true,
		VersionAdded:     "2.30",
	}
}

func (ModuleLevelRelativeDate) Interest() cop.Interest {
	return cop.Interest{
		Kinds:   []syntax.Kind{syntax.KindSend, syntax.KindCSend},
		Methods: relativeDateMethods,
	}
}

func (ModuleLevelRelativeDate) Visit(pass *cop.Pass, node syntax.NodeID) error {
	tree := pass.Tree()
	if !isRelativeDate(tree.Method(node)) {
		return nil
	}
	kind, _, ok := scope.NearestEnclosing(tree, node, scopeKinds)
	if !ok || goodScopes.Has(kind) {
		return nil
	}
	pass.Reportf(node, callSource(tree, node))
	return nil
}

func isRelativeDate(method string) bool {
	return slices.Contains(relativeDateMethods, method)
}

// callSource renders the call for the message on a single line. Line breaks
// and the indentation after them are dropped; a method chain split across
// lines is glued back at its dots, anything else is joined with one space.
func callSource(tree *syntax.Tree, node syntax.NodeID) string {
	lines := strings.Split(norm.NFC.String(tree.Text(node)), "\n")
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(lines[0], " \t\r"))
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		prev := sb.String()
		if !strings.HasPrefix(line, ".") && !strings.HasPrefix(line, "&.") &&
			!strings.HasSuffix(prev, ".") && !strings.HasSuffix(prev, "(") {
			sb.WriteByte(' ')
		}
		sb.WriteString(line)
	}
	return sb.String()
}
