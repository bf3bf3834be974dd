// Package cops wires the built-in cops into a registry.
package cops

import (
	"lintel/internal/cop"
	"lintel/internal/cops/rails"
	"lintel/internal/diag"
)

// IDs of offenses produced outside of cops.
const (
	SyntaxID    = "Lint/Syntax"
	DirectiveID = "Lint/Directive"
)

// Builtin returns the built-in cops in registration order.
func Builtin() []cop.Rule {
	return []cop.Rule{
		rails.ModuleLevelRelativeDate{},
	}
}

// Default returns a frozen registry with every built-in cop.
func Default() *cop.Registry {
	reg := cop.NewRegistry()
	reg.MustRegister(Builtin()...)
	reg.Freeze()
	return reg
}

// Internal describes the offenses the driver reports on its own. They can be
// configured like cops but are never dispatched by the engine.
func Internal() []cop.Meta {
	return []cop.Meta{
		{
			Department:       "Lint",
			Name:             "Syntax",
			Description:      "Reports source code that could not be parsed.",
			Severity:         diag.SevFatal,
			Safe:             true,
			EnabledByDefault: true,
			VersionAdded:     "0.9",
		},
		{
			Department:       "Lint",
			Name:             "Directive",
			Message:          "Unknown cop `%s` in inline directive.",
			Description:      "Checks inline disable/enable comments for unknown cop names.",
			Severity:         diag.SevWarning,
			Safe:             true,
			EnabledByDefault: true,
			VersionAdded:     "0.9",
		},
	}
}

// Known reports whether id names a built-in cop or an internal offense.
func Known(reg *cop.Registry, id string) bool {
	if _, ok := reg.Lookup(id); ok {
		return true
	}
	for _, m := range Internal() {
		if m.ID() == id {
			return true
		}
	}
	return false
}

// KnownDepartment reports whether name is the department of a built-in cop or
// an internal offense.
func KnownDepartment(reg *cop.Registry, name string) bool {
	for _, m := range append(reg.Metas(), Internal()...) {
		if m.Department == name {
			return true
		}
	}
	return false
}
