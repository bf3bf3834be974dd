package syntax

import "fmt"

// MalformedError reports a violation of the tree contract detected while
// building a tree. It indicates a bug in the frontend, not a finding in the
// analysed source.
type MalformedError struct {
	Node   NodeID
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Node.IsValid() {
		return fmt.Sprintf("malformed syntax tree: node %d: %s", e.Node, e.Reason)
	}
	return "malformed syntax tree: " + e.Reason
}
