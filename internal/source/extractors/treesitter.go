// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

// parse runs a fresh parser over content. Parsers are not safe for
// concurrent use, so each call gets its own; the caller closes the tree.
func parse(language *tree_sitter.Language, content []byte) (*tree_sitter.Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser returned no tree")
	}
	return tree, nil
}

func nodeText(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > uint(len(content)) || end > uint(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}

func nodeLine(node *tree_sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}

func children(node *tree_sitter.Node) []*tree_sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, node.ChildCount())
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

func childOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for _, child := range children(node) {
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

func childrenOfKind(node *tree_sitter.Node, kind string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for _, child := range children(node) {
		if child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

func firstNamedChild(node *tree_sitter.Node) *tree_sitter.Node {
	for _, child := range children(node) {
		if child.IsNamed() {
			return child
		}
	}
	return nil
}

// commentBlock accumulates consecutive comment nodes that sit directly
// above a declaration.
type commentBlock struct {
	lines   []string
	lastRow uint
}

func (b *commentBlock) add(node *tree_sitter.Node, content []byte) {
	row := node.StartPosition().Row
	if len(b.lines) > 0 && row > b.lastRow+1 {
		b.lines = nil
	}
	b.lines = append(b.lines, nodeText(node, content))
	b.lastRow = node.EndPosition().Row
}

// take returns the block if it ends on the line before node, and resets.
func (b *commentBlock) take(node *tree_sitter.Node) []string {
	lines := b.lines
	adjacent := len(lines) > 0 && node.StartPosition().Row <= b.lastRow+1
	b.reset()
	if !adjacent {
		return nil
	}
	return lines
}

func (b *commentBlock) reset() {
	b.lines = nil
	b.lastRow = 0
}

// trailingComment attaches a comment that starts on the same line a field
// declaration ends on ("int id; // user id") to that declaration's fields.
type trailingComment struct {
	start  int
	row    uint
	active bool
}

func (t *trailingComment) mark(start int, decl *tree_sitter.Node) {
	t.start = start
	t.row = decl.EndPosition().Row
	t.active = true
}

func (t *trailingComment) reset() {
	t.active = false
}

// attach reports whether the comment was consumed as a trailing comment.
func (t *trailingComment) attach(fields similarity.FieldSet, comment *tree_sitter.Node, content []byte) bool {
	if !t.active || comment.StartPosition().Row != t.row {
		return false
	}
	t.active = false
	text := nodeText(comment, content)
	for i := t.start; i < len(fields); i++ {
		if fields[i].Comment == "" {
			fields[i].Comment = text
		}
	}
	return true
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
