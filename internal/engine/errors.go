package engine

import (
	"fmt"

	"lintel/internal/source"
	"lintel/internal/syntax"
)

// RuleError reports a cop that returned an error or panicked while visiting a
// node.
type RuleError struct {
	Cop  string
	Node syntax.NodeID
	Span source.Span
	Err  error
	// Stack is set when the cop panicked.
	Stack []byte
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("cop %s failed at %s: %v", e.Cop, e.Span, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Panicked reports whether the failure was a recovered panic.
func (e *RuleError) Panicked() bool { return e.Stack != nil }
