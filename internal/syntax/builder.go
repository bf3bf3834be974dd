package syntax

import (
	"fmt"

	"fortio.org/safecast"

	"lintel/internal/source"
)

// Builder constructs a Tree top-down: Open pushes a node as the last child of
// the currently open node, Close pops it. Node ids are therefore assigned in
// pre-order. The first contract violation is remembered and returned by Finish;
// later calls become no-ops.
type Builder struct {
	file     source.FileID
	src      []byte
	srcLen   uint32
	nodes    *Arena[node]
	stack    []NodeID
	root     NodeID
	err      *MalformedError
	finished bool
}

// NewBuilder creates a builder for a tree over src. capHint is the expected
// node count; zero picks a default.
func NewBuilder(file source.FileID, src []byte, capHint uint) *Builder {
	if capHint == 0 {
		capHint = 1 << 8
	}
	srcLen, err := safecast.Conv[uint32](len(src))
	if err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}
	return &Builder{
		file:   file,
		src:    src,
		srcLen: srcLen,
		nodes:  NewArena[node](capHint),
		stack:  make([]NodeID, 0, 32),
	}
}

func (b *Builder) fail(id NodeID, format string, args ...any) {
	if b.err == nil {
		b.err = &MalformedError{Node: id, Reason: fmt.Sprintf(format, args...)}
	}
}

func (b *Builder) broken() bool {
	return b.err != nil || b.finished
}

// Open starts a node of kind covering sp and returns its id.
func (b *Builder) Open(kind Kind, sp source.Span) NodeID {
	if b.broken() {
		return NoNodeID
	}
	if !kind.Valid() {
		b.fail(NoNodeID, "node without kind at %s", sp)
		return NoNodeID
	}
	if sp.File != b.file {
		b.fail(NoNodeID, "%s node span %s belongs to another file", kind, sp)
		return NoNodeID
	}
	if sp.End < sp.Start || sp.End > b.srcLen {
		b.fail(NoNodeID, "%s node span %s is outside the source (%d bytes)", kind, sp, b.srcLen)
		return NoNodeID
	}

	parent := NoNodeID
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1]
		if ps := b.nodes.Get(uint32(parent)).span; !ps.Contains(sp) {
			b.fail(parent, "child %s span %s escapes parent span %s", kind, sp, ps)
			return NoNodeID
		}
	} else if b.root.IsValid() {
		b.fail(b.root, "second root %s opened", kind)
		return NoNodeID
	}

	id := NodeID(b.nodes.Allocate(node{kind: kind, span: sp, parent: parent}))
	if parent.IsValid() {
		p := b.nodes.Get(uint32(parent))
		p.children = append(p.children, id)
	} else {
		b.root = id
	}
	b.stack = append(b.stack, id)
	return id
}

// SetMethod records the method name of an open call-like node.
func (b *Builder) SetMethod(id NodeID, name string) {
	if b.broken() {
		return
	}
	n := b.nodes.Get(uint32(id))
	if n == nil {
		b.fail(id, "method set on unknown node")
		return
	}
	if !n.kind.IsCall() {
		b.fail(id, "method %q set on %s node", name, n.kind)
		return
	}
	n.method = name
}

// Close ends the innermost open node, which must be id.
func (b *Builder) Close(id NodeID) {
	if b.broken() {
		return
	}
	if len(b.stack) == 0 || b.stack[len(b.stack)-1] != id {
		b.fail(id, "close does not match the innermost open node")
		return
	}
	n := b.nodes.Get(uint32(id))
	if n.kind.IsCall() && n.method == "" {
		b.fail(id, "%s node without method name", n.kind)
		return
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// Leaf opens and immediately closes a childless node.
func (b *Builder) Leaf(kind Kind, sp source.Span) NodeID {
	id := b.Open(kind, sp)
	b.Close(id)
	return id
}

// Finish freezes the tree. The builder must not be used afterwards.
func (b *Builder) Finish() (*Tree, error) {
	if b.finished {
		return nil, &MalformedError{Reason: "builder already finished"}
	}
	b.finished = true
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) > 0 {
		return nil, &MalformedError{Node: b.stack[len(b.stack)-1], Reason: "node was never closed"}
	}
	if !b.root.IsValid() {
		return nil, &MalformedError{Reason: "empty tree"}
	}
	return &Tree{
		file:  b.file,
		src:   b.src,
		nodes: b.nodes,
		root:  b.root,
	}, nil
}
