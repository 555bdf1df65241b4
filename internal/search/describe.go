// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

// FieldView is a field prepared for display.
type FieldView struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Comment     string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Annotations []string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Inherited   bool     `json:"inherited,omitempty" yaml:"inherited,omitempty"`
}

// Description is the detail view of one class.
type Description struct {
	Class  ClassInfo   `json:"class" yaml:"class"`
	Fields []FieldView `json:"fields" yaml:"fields"`
	Text   string      `json:"text,omitempty" yaml:"text,omitempty"`
}

// Describe returns a class with cleaned comments. Inherited fields follow
// the class's own fields and are flagged.
func (s *Service) Describe(ctx context.Context, name string, includeInherited bool) (*Description, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c, err := snap.Lookup(name)
	if err != nil {
		return nil, err
	}
	fields := snap.Fields(c, includeInherited)
	d := &Description{
		Class:  infoOf(c, len(fields)),
		Fields: make([]FieldView, 0, len(fields)),
		Text:   c.Text,
	}
	for i, f := range fields {
		d.Fields = append(d.Fields, FieldView{
			Name:        f.Name,
			Type:        f.Type,
			Comment:     similarity.CleanComment(f.Comment),
			Annotations: f.Annotations,
			Inherited:   i >= len(c.Fields),
		})
	}
	return d, nil
}

// Comparison is the scored comparison of two field sets.
type Comparison struct {
	Columns   string              `json:"columns" yaml:"columns"`
	Breakdown similarity.Breakdown `json:"breakdown" yaml:"breakdown"`
}

// Compare scores two explicit field sets.
func (s *Service) Compare(a, b similarity.FieldSet, columns similarity.ColumnSelector) Comparison {
	return Comparison{
		Columns:   columns.String(),
		Breakdown: similarity.Explain(a, b, columns),
	}
}

// ClassFields returns the fields of the named class in the current
// snapshot.
func (s *Service) ClassFields(ctx context.Context, name string, includeInherited bool) (similarity.FieldSet, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c, err := snap.Lookup(name)
	if err != nil {
		return nil, err
	}
	return snap.Fields(c, includeInherited), nil
}

// CompareClasses looks both classes up in the current snapshot and
// compares their fields.
func (s *Service) CompareClasses(ctx context.Context, a, b string, columns similarity.ColumnSelector, includeInherited bool) (*Comparison, error) {
	left, err := s.ClassFields(ctx, a, includeInherited)
	if err != nil {
		return nil, err
	}
	right, err := s.ClassFields(ctx, b, includeInherited)
	if err != nil {
		return nil, err
	}
	cmp := s.Compare(left, right, columns)
	return &cmp, nil
}
