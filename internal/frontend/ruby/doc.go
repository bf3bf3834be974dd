// Package ruby turns Ruby source into a syntax.Tree using the tree-sitter
// Ruby grammar.
//
// The conversion reshapes tree-sitter's concrete tree into the node model the
// cops expect, which follows the parser gem:
//
//   - a call with a block becomes a block node whose first child is the call
//     without the block, followed by the block parameters and the body;
//   - a lambda literal becomes a block node whose first child is a lambda leaf;
//   - a block without parameters that uses _1.._9 or it becomes a numblock;
//   - argument lists are flattened into the call node; the method name is
//     stored on the call, not as a child;
//   - assignments are tagged by their target (casgn, ivasgn, cvasgn, ...).
//
// Anonymous tokens (keywords, punctuation) are dropped. Comments are kept as
// comment nodes and also collected separately for the directive scanner.
package ruby
