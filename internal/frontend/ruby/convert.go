package ruby

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"lintel/internal/source"
	"lintel/internal/syntax"
)

type converter struct {
	b        *syntax.Builder
	file     *source.File
	open     []source.Span
	comments []Comment
	errs     []SyntaxError
	err      error
}

func newConverter(file *source.File, capHint uint) *converter {
	return &converter{
		b:    syntax.NewBuilder(file.ID, file.Content, capHint),
		file: file,
	}
}

func (c *converter) span(n *tree_sitter.Node) source.Span {
	start, err := safecast.Conv[uint32](n.StartByte())
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("node start offset overflow: %w", err)
	}
	end, err := safecast.Conv[uint32](n.EndByte())
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("node end offset overflow: %w", err)
	}
	return source.Span{File: c.file.ID, Start: start, End: end}
}

// push opens a node unless sp escapes the innermost open node; tree-sitter
// attaches some extras (trailing comments, heredoc bodies) to an ancestor
// whose reshaped span no longer covers them, and those are skipped.
func (c *converter) push(kind syntax.Kind, sp source.Span) (syntax.NodeID, bool) {
	if n := len(c.open); n > 0 && !c.open[n-1].Contains(sp) {
		return syntax.NoNodeID, false
	}
	id := c.b.Open(kind, sp)
	c.open = append(c.open, sp)
	return id, true
}

func (c *converter) pop(id syntax.NodeID) {
	c.b.Close(id)
	c.open = c.open[:len(c.open)-1]
}

func (c *converter) node(n *tree_sitter.Node) {
	if n == nil || c.err != nil {
		return
	}
	if n.IsMissing() {
		c.syntaxError(n, fmt.Sprintf("missing `%s`", n.Kind()))
		return
	}
	if n.IsError() {
		c.syntaxError(n, "unexpected "+c.describe(n))
		c.generic(syntax.KindOther, n)
		return
	}
	if !n.IsNamed() || dropped[n.Kind()] {
		return
	}

	switch n.Kind() {
	case "comment":
		sp := c.span(n)
		c.comments = append(c.comments, Comment{Span: sp, Text: c.file.Slice(sp)})
		if id, ok := c.push(syntax.KindComment, sp); ok {
			c.pop(id)
		}
	case "call":
		c.call(n)
	case "lambda":
		c.lambda(n)
	case "block", "do_block":
		// a block outside a call or lambda only appears in broken code
		c.blockNode(n, syntax.KindBlock, nil)
	case "assignment":
		kind := syntax.KindOther
		if left := n.ChildByFieldName("left"); left != nil {
			if k, ok := assignKind[left.Kind()]; ok {
				kind = k
			}
		}
		c.generic(kind, n)
	default:
		c.generic(lookupKind(n.Kind()), n)
	}
}

// generic emits n as kind and converts every child.
func (c *converter) generic(kind syntax.Kind, n *tree_sitter.Node) {
	id, ok := c.push(kind, c.span(n))
	if !ok {
		return
	}
	c.children(n, nil)
	c.pop(id)
}

// children converts the children of n except skip.
func (c *converter) children(n *tree_sitter.Node, skip *tree_sitter.Node) {
	for i := range n.ChildCount() {
		ch := n.Child(i)
		if ch == nil || (skip != nil && ch.Id() == skip.Id()) {
			continue
		}
		c.node(ch)
	}
}

// call emits a send or csend. With a block attached the result is
// (block (send ...) (args ...) body), matching the parser gem.
func (c *converter) call(n *tree_sitter.Node) {
	block := n.ChildByFieldName("block")
	if block == nil {
		c.send(n, nil)
		return
	}
	kind := syntax.KindBlock
	if usesNumberedParams(block, c.file.Content) {
		kind = syntax.KindNumBlock
	}
	c.blockNode(block, kind, n)
}

// blockNode emits a block for blk. When call is set the block covers the whole
// call and its first child is the call without the block.
func (c *converter) blockNode(blk *tree_sitter.Node, kind syntax.Kind, call *tree_sitter.Node) {
	outer := blk
	if call != nil {
		outer = call
	}
	id, ok := c.push(kind, c.span(outer))
	if !ok {
		return
	}
	if call != nil {
		c.send(call, blk)
	}
	c.children(blk, nil)
	c.pop(id)
}

// send emits the call node n without block.
func (c *converter) send(n *tree_sitter.Node, block *tree_sitter.Node) {
	kind := syntax.KindSend
	if op := n.ChildByFieldName("operator"); op != nil && op.Kind() == "&." {
		kind = syntax.KindCSend
	}
	method := n.ChildByFieldName("method")
	name := "call" // recv.()
	if method != nil {
		name = c.file.Slice(c.span(method))
	}

	sp := c.span(n)
	if block != nil {
		sp.End = c.span(block).Start
		// trim the whitespace between the call and its block
		for sp.End > sp.Start && isSpace(c.file.Content[sp.End-1]) {
			sp.End--
		}
	}

	id, ok := c.push(kind, sp)
	if !ok {
		return
	}
	c.b.SetMethod(id, name)
	for i := range n.ChildCount() {
		ch := n.Child(i)
		if ch == nil {
			continue
		}
		if (block != nil && ch.Id() == block.Id()) || (method != nil && ch.Id() == method.Id()) {
			continue
		}
		if ch.Kind() == "argument_list" {
			c.children(ch, nil)
			continue
		}
		c.node(ch)
	}
	c.pop(id)
}

// lambda emits (block (lambda) (args) body) for `-> (x) { ... }`.
func (c *converter) lambda(n *tree_sitter.Node) {
	id, ok := c.push(syntax.KindBlock, c.span(n))
	if !ok {
		return
	}
	arrow := c.span(n)
	arrow.End = min(arrow.Start+2, arrow.End)
	if lid, ok := c.push(syntax.KindLambda, arrow); ok {
		c.pop(lid)
	}
	body := n.ChildByFieldName("body")
	for i := range n.ChildCount() {
		ch := n.Child(i)
		if ch == nil {
			continue
		}
		if body != nil && ch.Id() == body.Id() {
			// the { } or do..end of a lambda is not a block of its own
			c.children(ch, nil)
			continue
		}
		c.node(ch)
	}
	c.pop(id)
}

func (c *converter) syntaxError(n *tree_sitter.Node, msg string) {
	c.errs = append(c.errs, SyntaxError{Span: c.span(n), Message: msg})
}

func (c *converter) describe(n *tree_sitter.Node) string {
	text := c.file.Slice(c.span(n))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "end of input"
	}
	if r := []rune(text); len(r) > 40 {
		text = string(r[:40]) + "..."
	}
	return "`" + text + "`"
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// usesNumberedParams reports whether a block without explicit parameters
// refers to _1.._9 or it outside of nested blocks.
func usesNumberedParams(blk *tree_sitter.Node, src []byte) bool {
	if blk.ChildByFieldName("parameters") != nil {
		return false
	}
	var found bool
	var walk func(n *tree_sitter.Node, top bool)
	walk = func(n *tree_sitter.Node, top bool) {
		if found || n == nil {
			return
		}
		switch n.Kind() {
		case "block", "do_block", "lambda":
			if !top {
				return
			}
		case "identifier":
			name := string(src[n.StartByte():n.EndByte()])
			if name == "it" || (len(name) == 2 && name[0] == '_' && name[1] >= '1' && name[1] <= '9') {
				found = true
			}
			return
		}
		for i := range n.ChildCount() {
			walk(n.Child(i), false)
		}
	}
	walk(blk, true)
	return found
}
