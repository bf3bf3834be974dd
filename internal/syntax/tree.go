package syntax

import (
	"fmt"
	"iter"

	"lintel/internal/source"
)

type node struct {
	kind     Kind
	span     source.Span
	parent   NodeID
	method   string
	children []NodeID
}

// Tree is an immutable syntax tree of one file. Nodes are addressed by NodeID
// and link to their parent by index; the tree does not own the source bytes
// beyond keeping a read-only reference for rendering node text.
//
// A Tree is safe for concurrent reads.
type Tree struct {
	file  source.FileID
	src   []byte
	nodes *Arena[node]
	root  NodeID
}

func (t *Tree) get(id NodeID) *node {
	n := t.nodes.Get(uint32(id))
	if n == nil {
		panic(fmt.Sprintf("syntax: node %d does not exist in tree of %d nodes", id, t.nodes.Len()))
	}
	return n
}

// File returns the source file the tree was built from.
func (t *Tree) File() source.FileID { return t.file }

// Root returns the root node.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return int(t.nodes.Len()) }

// Kind returns the tag of id.
func (t *Tree) Kind(id NodeID) Kind { return t.get(id).kind }

// Span returns the byte range of id.
func (t *Tree) Span(id NodeID) source.Span { return t.get(id).span }

// Parent returns the parent of id, NoNodeID for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.get(id).parent }

// Method returns the called method name of a call-like node, "" otherwise.
func (t *Tree) Method(id NodeID) string { return t.get(id).method }

// ChildCount returns the number of direct children of id.
func (t *Tree) ChildCount(id NodeID) int { return len(t.get(id).children) }

// Child returns the i-th child of id.
func (t *Tree) Child(id NodeID, i int) NodeID { return t.get(id).children[i] }

// Children yields the direct children of id in source order. The sequence
// can be ranged over any number of times.
func (t *Tree) Children(id NodeID) iter.Seq[NodeID] {
	children := t.get(id).children
	return func(yield func(NodeID) bool) {
		for _, c := range children {
			if !yield(c) {
				return
			}
		}
	}
}

// Text returns the source text covered by id.
func (t *Tree) Text(id NodeID) string {
	sp := t.get(id).span
	n := uint32(len(t.src))
	start, end := min(sp.Start, n), min(sp.End, n)
	return string(t.src[start:end])
}

// All yields every node reachable from the root in depth-first pre-order.
func (t *Tree) All() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !t.root.IsValid() {
			return
		}
		stack := []NodeID{t.root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(id) {
				return
			}
			children := t.get(id).children
			// в обратном порядке, чтобы первый ребёнок был снят со стека первым
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}
