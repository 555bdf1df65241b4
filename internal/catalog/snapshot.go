// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

var (
	ErrNotFound  = errors.New("class not found")
	ErrAmbiguous = errors.New("ambiguous class name")
)

// Snapshot is an immutable view of the classes found in one scan.
type Snapshot struct {
	Root string
	// Version changes whenever any scanned file's path or content changes.
	Version uint64
	Files   int

	classes     []*source.Class
	byQualified map[string][]*source.Class
	bySimple    map[string][]*source.Class
}

func (s *Snapshot) index() {
	s.byQualified = make(map[string][]*source.Class, len(s.classes))
	s.bySimple = make(map[string][]*source.Class, len(s.classes))
	for _, c := range s.classes {
		s.byQualified[c.QualifiedName] = append(s.byQualified[c.QualifiedName], c)
		s.bySimple[c.Name] = append(s.bySimple[c.Name], c)
	}
}

// Classes returns every class in path and declaration order.
func (s *Snapshot) Classes() []*source.Class {
	return s.classes
}

// DataClasses returns the classes carrying one of markers. With
// requireMarker false every class with at least one field qualifies.
func (s *Snapshot) DataClasses(markers []string, requireMarker bool) []*source.Class {
	var out []*source.Class
	for _, c := range s.classes {
		if requireMarker && !source.HasMarker(c, markers) {
			continue
		}
		if !requireMarker && len(c.Fields) == 0 && len(c.Supers) == 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Lookup finds a class by qualified name, falling back to a unique simple
// name. A name may be prefixed with "path#" to pick a class from one file.
func (s *Snapshot) Lookup(name string) (*source.Class, error) {
	name = strings.TrimSpace(name)
	var path string
	if i := strings.LastIndex(name, "#"); i >= 0 {
		path, name = name[:i], name[i+1:]
	}

	matches := s.byQualified[name]
	if len(matches) == 0 {
		matches = s.bySimple[name]
	}
	if path != "" {
		matches = filterPath(matches, path)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case 1:
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, c := range matches {
		names[i] = fmt.Sprintf("%s (%s:%d)", c.QualifiedName, c.Path, c.Line)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("%w: %s matches %s", ErrAmbiguous, name, strings.Join(names, ", "))
}

func filterPath(classes []*source.Class, path string) []*source.Class {
	var out []*source.Class
	for _, c := range classes {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Fields returns the class's own fields followed, when includeInherited is
// set, by the fields of its supers in declaration order. Supers resolve
// only to classes of the same language; unresolved supers are skipped.
func (s *Snapshot) Fields(c *source.Class, includeInherited bool) similarity.FieldSet {
	if c == nil {
		return nil
	}
	if !includeInherited {
		return c.Fields
	}
	var out similarity.FieldSet
	s.collect(c, map[*source.Class]bool{}, &out)
	return out
}

func (s *Snapshot) collect(c *source.Class, seen map[*source.Class]bool, out *similarity.FieldSet) {
	if seen[c] {
		return
	}
	seen[c] = true
	*out = append(*out, c.Fields...)
	for _, super := range c.Supers {
		if parent := s.resolveSuper(c, super); parent != nil {
			s.collect(parent, seen, out)
		}
	}
}

// resolveSuper tries, in order: the name as written, the name qualified
// with the class's package, and a unique simple name.
func (s *Snapshot) resolveSuper(c *source.Class, super string) *source.Class {
	if i := strings.IndexAny(super, "<["); i >= 0 {
		super = super[:i]
	}
	simple := source.SimpleName(super)
	for _, name := range []string{super, source.Qualify(c.Package, simple)} {
		if match := sameLanguage(s.byQualified[name], c.Language); len(match) == 1 {
			return match[0]
		}
	}
	if match := sameLanguage(s.bySimple[simple], c.Language); len(match) == 1 {
		return match[0]
	}
	return nil
}

func sameLanguage(classes []*source.Class, language string) []*source.Class {
	var out []*source.Class
	for _, c := range classes {
		if c.Language == language {
			out = append(out, c)
		}
	}
	return out
}
