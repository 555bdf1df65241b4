// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"strings"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

// Languages understood by the extractors. Classes are only compared
// against classes of the same language.
const (
	LanguageJava     = "java"
	LanguageGo       = "go"
	LanguageManifest = "manifest"
)

// Class kinds.
const (
	KindClass  = "class"
	KindRecord = "record"
	KindStruct = "struct"
)

// Source describes one raw file handed to the pipeline.
type Source struct {
	// Path is the file path relative to the project root, or any identifier.
	Path    string
	Content []byte
	// Format is an optional hint ("java", "go", "yaml", "json").
	Format string
}

// Class is a data-holding type found in a source file.
type Class struct {
	Name          string `json:"name"`
	Package       string `json:"package,omitempty"`
	QualifiedName string `json:"qualified_name"`
	Language      string `json:"language"`
	Kind          string `json:"kind"`
	Path          string `json:"path,omitempty"`
	Line          int    `json:"line,omitempty"`
	// Annotations holds class-level annotations (Java) or directives (Go).
	Annotations []string `json:"annotations,omitempty"`
	// Supers lists the superclass (Java) or embedded types (Go), as written.
	Supers []string            `json:"supers,omitempty"`
	Fields similarity.FieldSet `json:"fields"`
	// Text is the declaration's source text.
	Text string `json:"-"`
}

// Extractor turns a source file into the classes it declares.
type Extractor interface {
	CanHandle(source Source) bool
	Extract(ctx context.Context, source Source) ([]*Class, error)
	Name() string
}

// Qualify joins a package and a type name.
func Qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// SimpleName returns the last dotted segment of a possibly qualified,
// possibly generic type name: "java.util.List<String>" -> "List".
func SimpleName(name string) string {
	if i := strings.IndexAny(name, "<["); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(strings.TrimLeft(name, "*&"))
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// HasMarker reports whether c is a data class. Records always are; other
// classes need an annotation equal to one of markers, compared by qualified
// or simple name so that "lombok.Data" and "Data" are interchangeable.
func HasMarker(c *Class, markers []string) bool {
	if c == nil {
		return false
	}
	if c.Kind == KindRecord {
		return true
	}
	for _, a := range c.Annotations {
		for _, m := range markers {
			if a == m || SimpleName(a) == SimpleName(m) && !strings.Contains(m, ":") && !strings.Contains(a, ":") {
				return true
			}
		}
	}
	return false
}
