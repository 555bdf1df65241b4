// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"context"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

// JavaExtractor extracts classes and records from Java sources.
// Static fields are skipped; inherited fields are resolved later by the
// catalog from each class's superclass.
type JavaExtractor struct {
	language *tree_sitter.Language
}

func NewJavaExtractor() *JavaExtractor {
	return &JavaExtractor{language: tree_sitter.NewLanguage(tree_sitter_java.Language())}
}

func (e *JavaExtractor) Name() string {
	return source.LanguageJava
}

func (e *JavaExtractor) CanHandle(src source.Source) bool {
	if strings.EqualFold(src.Format, "java") {
		return true
	}
	return src.Format == "" && hasExt(src.Path, ".java")
}

func (e *JavaExtractor) Extract(ctx context.Context, src source.Source) ([]*source.Class, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := parse(e.language, src.Content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("root node is nil")
	}

	f := &javaFile{content: src.Content, path: src.Path, imports: map[string]string{}}
	f.readHeader(root)
	f.walk(root, "")
	return f.classes, nil
}

type javaFile struct {
	content []byte
	path    string
	pkg     string
	// imports maps simple names to single-type imports.
	imports map[string]string
	classes []*source.Class
}

func (f *javaFile) readHeader(root *tree_sitter.Node) {
	for _, child := range children(root) {
		switch child.Kind() {
		case "package_declaration":
			if name := firstNamedOf(child, "scoped_identifier", "identifier"); name != nil {
				f.pkg = nodeText(name, f.content)
			}
		case "import_declaration":
			if childOfKind(child, "asterisk") != nil || childOfKind(child, "static") != nil {
				continue
			}
			if name := firstNamedOf(child, "scoped_identifier", "identifier"); name != nil {
				qualified := nodeText(name, f.content)
				f.imports[source.SimpleName(qualified)] = qualified
			}
		}
	}
}

// walk visits class and record declarations; outer is the enclosing
// type's dotted name for nested declarations.
func (f *javaFile) walk(node *tree_sitter.Node, outer string) {
	for _, child := range children(node) {
		switch child.Kind() {
		case "class_declaration", "record_declaration":
			c := f.class(child, outer)
			f.classes = append(f.classes, c)
			f.walk(child.ChildByFieldName("body"), nestedName(outer, c.Name))
		case "interface_declaration", "enum_declaration":
			name := nodeText(child.ChildByFieldName("name"), f.content)
			f.walk(child.ChildByFieldName("body"), nestedName(outer, name))
		case "class_body", "program", "enum_body", "enum_body_declarations", "interface_body":
			f.walk(child, outer)
		}
	}
}

func nestedName(outer, name string) string {
	if outer == "" {
		return name
	}
	return outer + "." + name
}

func (f *javaFile) class(node *tree_sitter.Node, outer string) *source.Class {
	name := nodeText(node.ChildByFieldName("name"), f.content)
	c := &source.Class{
		Name:          name,
		Package:       f.pkg,
		QualifiedName: source.Qualify(f.pkg, nestedName(outer, name)),
		Language:      source.LanguageJava,
		Kind:          source.KindClass,
		Path:          f.path,
		Line:          nodeLine(node),
		Annotations:   f.annotations(childOfKind(node, "modifiers")),
		Text:          nodeText(node, f.content),
	}
	if super := node.ChildByFieldName("superclass"); super != nil {
		if t := firstNamedChild(super); t != nil {
			c.Supers = append(c.Supers, f.qualifyType(nodeText(t, f.content)))
		}
	}

	if node.Kind() == "record_declaration" {
		c.Kind = source.KindRecord
		c.Fields = append(c.Fields, f.recordComponents(node.ChildByFieldName("parameters"))...)
	}
	c.Fields = append(c.Fields, f.bodyFields(node.ChildByFieldName("body"))...)
	return c
}

func (f *javaFile) recordComponents(params *tree_sitter.Node) similarity.FieldSet {
	var fields similarity.FieldSet
	for _, p := range childrenOfKind(params, "formal_parameter") {
		fields = append(fields, similarity.Field{
			Name:        nodeText(p.ChildByFieldName("name"), f.content),
			Type:        nodeText(p.ChildByFieldName("type"), f.content),
			Annotations: f.annotations(childOfKind(p, "modifiers")),
		})
	}
	return fields
}

func (f *javaFile) bodyFields(body *tree_sitter.Node) similarity.FieldSet {
	var (
		fields   similarity.FieldSet
		comments commentBlock
		trailing trailingComment
	)
	for _, child := range children(body) {
		switch child.Kind() {
		case "block_comment", "line_comment":
			if trailing.attach(fields, child, f.content) {
				continue
			}
			comments.add(child, f.content)
		case "field_declaration":
			doc := strings.Join(comments.take(child), "\n")
			modifiers := childOfKind(child, "modifiers")
			if childOfKind(modifiers, "static") != nil {
				trailing.reset()
				continue
			}
			typ := nodeText(child.ChildByFieldName("type"), f.content)
			annotations := f.annotations(modifiers)
			trailing.mark(len(fields), child)
			for _, decl := range childrenOfKind(child, "variable_declarator") {
				fields = append(fields, similarity.Field{
					Name:        nodeText(decl.ChildByFieldName("name"), f.content),
					Type:        typ,
					Comment:     doc,
					Annotations: annotations,
				})
			}
		default:
			if child.IsNamed() {
				comments.reset()
				trailing.reset()
			}
		}
	}
	return fields
}

// annotations renders each annotation as its (import-qualified) name,
// followed by its argument list when present.
func (f *javaFile) annotations(modifiers *tree_sitter.Node) []string {
	var out []string
	for _, child := range children(modifiers) {
		if child.Kind() != "marker_annotation" && child.Kind() != "annotation" {
			continue
		}
		name := f.qualifyType(nodeText(child.ChildByFieldName("name"), f.content))
		if args := child.ChildByFieldName("arguments"); args != nil {
			name += nodeText(args, f.content)
		}
		out = append(out, name)
	}
	return out
}

func (f *javaFile) qualifyType(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	base := source.SimpleName(name)
	if q, ok := f.imports[base]; ok {
		return q + strings.TrimPrefix(name, base)
	}
	return name
}

func firstNamedOf(node *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	for _, child := range children(node) {
		for _, k := range kinds {
			if child.Kind() == k {
				return child
			}
		}
	}
	return nil
}
