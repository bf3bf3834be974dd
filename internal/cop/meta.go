package cop

import (
	"fmt"
	"strings"

	"lintel/internal/diag"
	"lintel/internal/syntax"
)

// Meta describes a cop.
type Meta struct {
	Name       string
	Department string
	// Message is the offense template used by Pass.Reportf.
	Message     string
	Description string
	Severity    diag.Severity
	// Safe is false when acting on the offense needs a manual refactor.
	Safe             bool
	SafeAutoCorrect  bool
	EnabledByDefault bool
	VersionAdded     string
}

// ID returns the qualified name "Department/Name".
func (m Meta) ID() string {
	return m.Department + "/" + m.Name
}

func (m Meta) validate() error {
	if m.Name == "" || m.Department == "" {
		return fmt.Errorf("cop %q: name and department are required", m.ID())
	}
	if strings.Contains(m.Name, "/") || strings.Contains(m.Department, "/") {
		return fmt.Errorf("cop %q: name and department must not contain '/'", m.ID())
	}
	return nil
}

// Interest declares which nodes a cop wants to visit. Methods narrows the
// call-like kinds (send, csend) to calls of those method names; it has no
// effect on other kinds. An empty Methods list means every call.
type Interest struct {
	Kinds   []syntax.Kind
	Methods []string
}

func (in Interest) validate(id string) error {
	if len(in.Kinds) == 0 {
		return fmt.Errorf("cop %q: interest names no node kinds", id)
	}
	for _, k := range in.Kinds {
		if !k.Valid() {
			return fmt.Errorf("cop %q: invalid node kind %d in interest", id, k)
		}
	}
	for _, m := range in.Methods {
		if m == "" {
			return fmt.Errorf("cop %q: empty method name in interest", id)
		}
	}
	return nil
}

// Rule is implemented by every cop.
type Rule interface {
	Meta() Meta
	Interest() Interest
	// Visit inspects node. A returned error aborts analysis of the file.
	Visit(pass *Pass, node syntax.NodeID) error
}
