// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

var (
	// directivePattern matches "//ns:name" directives such as "//wheelclass:data".
	directivePattern = regexp.MustCompile(`^//([a-z][a-z0-9]*:[A-Za-z0-9_.-]+)`)
	structTagPattern = regexp.MustCompile(`([A-Za-z_][\w.-]*):"((?:[^"\\]|\\.)*)"`)
)

// GoExtractor extracts struct types from Go sources. Doc-comment
// directives become class annotations, struct tag items become field
// annotations and embedded fields are recorded as supers.
type GoExtractor struct {
	language *tree_sitter.Language
}

func NewGoExtractor() *GoExtractor {
	return &GoExtractor{language: tree_sitter.NewLanguage(tree_sitter_go.Language())}
}

func (e *GoExtractor) Name() string {
	return source.LanguageGo
}

func (e *GoExtractor) CanHandle(src source.Source) bool {
	switch strings.ToLower(src.Format) {
	case "go", "golang":
		return true
	}
	return src.Format == "" && hasExt(src.Path, ".go")
}

func (e *GoExtractor) Extract(ctx context.Context, src source.Source) ([]*source.Class, error) {
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

	f := &goFile{content: src.Content, path: src.Path}
	var comments commentBlock
	for _, child := range children(root) {
		switch child.Kind() {
		case "package_clause":
			f.pkg = nodeText(childOfKind(child, "package_identifier"), f.content)
		case "comment":
			comments.add(child, f.content)
		case "type_declaration":
			f.typeDeclaration(child, comments.take(child))
		default:
			if child.IsNamed() {
				comments.reset()
			}
		}
	}
	return f.classes, nil
}

type goFile struct {
	content []byte
	path    string
	pkg     string
	classes []*source.Class
}

// typeDeclaration handles both "type T struct{}" and grouped
// "type ( ... )" declarations; in a group each spec has its own doc.
func (f *goFile) typeDeclaration(decl *tree_sitter.Node, doc []string) {
	specs := childrenOfKind(decl, "type_spec")
	if len(specs) == 1 && childOfKind(decl, "(") == nil {
		f.typeSpec(specs[0], decl, doc)
		return
	}
	var comments commentBlock
	for _, child := range children(decl) {
		switch child.Kind() {
		case "comment":
			comments.add(child, f.content)
		case "type_spec":
			f.typeSpec(child, child, comments.take(child))
		}
	}
}

func (f *goFile) typeSpec(spec, textNode *tree_sitter.Node, doc []string) {
	typ := spec.ChildByFieldName("type")
	if typ == nil || typ.Kind() != "struct_type" {
		return
	}
	name := nodeText(spec.ChildByFieldName("name"), f.content)
	c := &source.Class{
		Name:          name,
		Package:       f.pkg,
		QualifiedName: source.Qualify(f.pkg, name),
		Language:      source.LanguageGo,
		Kind:          source.KindStruct,
		Path:          f.path,
		Line:          nodeLine(textNode),
		Annotations:   directives(doc),
		Text:          nodeText(textNode, f.content),
	}
	c.Fields, c.Supers = f.structFields(childOfKind(typ, "field_declaration_list"))
	f.classes = append(f.classes, c)
}

func (f *goFile) structFields(list *tree_sitter.Node) (similarity.FieldSet, []string) {
	var (
		fields   similarity.FieldSet
		supers   []string
		comments commentBlock
		trailing trailingComment
	)
	for _, child := range children(list) {
		switch child.Kind() {
		case "comment":
			if trailing.attach(fields, child, f.content) {
				continue
			}
			comments.add(child, f.content)
		case "field_declaration":
			doc := strings.Join(comments.take(child), "\n")
			typ := nodeText(child.ChildByFieldName("type"), f.content)
			names := childrenOfKind(child, "field_identifier")
			if len(names) == 0 {
				supers = append(supers, strings.TrimPrefix(typ, "*"))
				trailing.reset()
				continue
			}
			tags := structTags(nodeText(child.ChildByFieldName("tag"), f.content))
			trailing.mark(len(fields), child)
			for _, n := range names {
				fields = append(fields, similarity.Field{
					Name:        nodeText(n, f.content),
					Type:        typ,
					Comment:     doc,
					Annotations: tags,
				})
			}
		default:
			if child.IsNamed() {
				comments.reset()
				trailing.reset()
			}
		}
	}
	return fields, supers
}

func directives(doc []string) []string {
	var out []string
	for _, block := range doc {
		for _, line := range strings.Split(block, "\n") {
			if m := directivePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				out = append(out, m[1])
			}
		}
	}
	return out
}

// structTags splits a struct tag literal into `key:"value"` items.
func structTags(literal string) []string {
	if literal == "" {
		return nil
	}
	tag := strings.Trim(literal, "`")
	if strings.HasPrefix(literal, `"`) {
		if u, err := strconv.Unquote(literal); err == nil {
			tag = u
		}
	}
	return structTagPattern.FindAllString(tag, -1)
}
