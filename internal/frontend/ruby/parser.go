package ruby

import (
	"context"
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"lintel/internal/source"
	"lintel/internal/syntax"
	"lintel/internal/trace"
)

// Comment is a source comment found while converting.
type Comment struct {
	Span source.Span
	Text string
}

// SyntaxError is a recoverable parse error. The tree is still produced, with
// the broken region converted as KindOther nodes.
type SyntaxError struct {
	Span    source.Span
	Message string
}

// Result is the outcome of parsing one file.
type Result struct {
	Tree     *syntax.Tree
	Comments []Comment
	Errors   []SyntaxError
}

// HasErrors reports whether the source had syntax errors.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Parser wraps a tree-sitter parser configured for Ruby. A Parser is not safe
// for concurrent use; create one per goroutine.
type Parser struct {
	ts *tree_sitter.Parser
}

// NewParser creates a Ruby parser. Close must be called to release it.
func NewParser() (*Parser, error) {
	ts := tree_sitter.NewParser()
	if err := ts.SetLanguage(tree_sitter.NewLanguage(tree_sitter_ruby.Language())); err != nil {
		ts.Close()
		return nil, fmt.Errorf("ruby grammar: %w", err)
	}
	return &Parser{ts: ts}, nil
}

func (p *Parser) Close() {
	if p != nil && p.ts != nil {
		p.ts.Close()
		p.ts = nil
	}
}

// Parse converts the content of file into a syntax tree.
func (p *Parser) Parse(ctx context.Context, file *source.File) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, span := trace.Start(ctx, trace.ScopePass, "parse")
	defer span.End(file.Path)

	tsTree := p.ts.Parse(file.Content, nil)
	if tsTree == nil {
		return nil, errors.New("ruby parser returned no tree")
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	c := newConverter(file, uint(len(file.Content)/4+16))
	c.node(root)
	if c.err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, c.err)
	}
	tree, err := c.b.Finish()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, err)
	}
	return &Result{Tree: tree, Comments: c.comments, Errors: c.errs}, nil
}

// Parse is a convenience wrapper that parses one file with a fresh Parser.
func Parse(ctx context.Context, file *source.File) (*Result, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Parse(ctx, file)
}
