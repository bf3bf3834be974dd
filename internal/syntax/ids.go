package syntax

// NodeID addresses a node inside its Tree.
type NodeID uint32

// NoNodeID is the parent of the root and the result of failed lookups.
const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }
