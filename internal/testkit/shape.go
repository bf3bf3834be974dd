package testkit

import (
	"fmt"

	"lintel/internal/source"
	"lintel/internal/syntax"
)

// Shape describes a tree without source text. BuildShape lays every node out
// so that spans nest, which is all the engine and the scope queries need.
type Shape struct {
	Kind   syntax.Kind
	Method string
	Kids   []Shape
}

// Send is a call node shape.
func Send(method string, kids ...Shape) Shape {
	return Shape{Kind: syntax.KindSend, Method: method, Kids: kids}
}

// N is a non-call node shape.
func N(kind syntax.Kind, kids ...Shape) Shape {
	return Shape{Kind: kind, Kids: kids}
}

func (s Shape) size() int {
	n := 1
	for _, k := range s.Kids {
		n += k.size()
	}
	return n
}

// BuildShape builds a tree for root over a synthetic source. A node of
// subtree size n spans 2n-1 bytes; its children follow its first byte.
func BuildShape(root Shape) (*syntax.Tree, error) {
	total := root.size()
	src := make([]byte, 2*total)
	for i := range src {
		src[i] = 'x'
	}
	b := syntax.NewBuilder(0, src, uint(total))

	var pos uint32
	var walk func(s Shape)
	walk = func(s Shape) {
		start := pos
		end := start + uint32(2*s.size()-1)
		pos++
		id := b.Open(s.Kind, source.Span{Start: start, End: end})
		if s.Method != "" {
			b.SetMethod(id, s.Method)
		}
		for _, k := range s.Kids {
			walk(k)
		}
		b.Close(id)
		pos = end + 1
	}
	walk(root)

	tree, err := b.Finish()
	if err != nil {
		return nil, fmt.Errorf("build shape: %w", err)
	}
	return tree, nil
}

// FindCall returns the first node in pre-order calling method.
func FindCall(tree *syntax.Tree, method string) syntax.NodeID {
	for id := range tree.All() {
		if tree.Kind(id).IsCall() && tree.Method(id) == method {
			return id
		}
	}
	return syntax.NoNodeID
}
