// SPDX-License-Identifier: Apache-2.0

// Package search answers similarity queries against a catalog snapshot.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wheelclass/wheelclass-mcp/internal/catalog"
	"github.com/wheelclass/wheelclass-mcp/internal/debug"
	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

var (
	ErrClassNotFound  = catalog.ErrNotFound
	ErrAmbiguousClass = catalog.ErrAmbiguous
	ErrEmptySource    = errors.New("source has no fields")
)

// Settings are the defaults a Service applies to new queries and the
// rules it uses to pick candidates.
type Settings struct {
	Markers          []string
	RequireMarker    bool
	IncludeInherited bool
	Columns          similarity.ColumnSelector
	MinSimilarity    float64
}

// Service runs queries against the latest snapshot of a catalog.
type Service struct {
	catalog  *catalog.Catalog
	settings Settings
}

func NewService(c *catalog.Catalog, settings Settings) *Service {
	return &Service{catalog: c, settings: settings}
}

// Settings returns the service defaults.
func (s *Service) Settings() Settings {
	return s.settings
}

// Catalog returns the catalog the service queries.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Query describes one similarity search. The source is Fields when set,
// otherwise the fields of Class. When both are set Class only scopes the
// candidate language and is excluded from the results.
type Query struct {
	Class  string
	Fields similarity.FieldSet
	// Language restricts candidates when the source has no class.
	Language         string
	Columns          similarity.ColumnSelector
	MinSimilarity    float64
	Limit            int
	IncludeInherited bool
	IncludeText      bool
}

// NewQuery returns a query for class carrying the service defaults.
func (s *Service) NewQuery(class string) Query {
	return Query{
		Class:            class,
		Columns:          s.settings.Columns,
		MinSimilarity:    s.settings.MinSimilarity,
		IncludeInherited: s.settings.IncludeInherited,
	}
}

// ClassInfo is the metadata reported for a class.
type ClassInfo struct {
	Name          string   `json:"name" yaml:"name"`
	QualifiedName string   `json:"qualified_name" yaml:"qualified_name"`
	Language      string   `json:"language" yaml:"language"`
	Kind          string   `json:"kind" yaml:"kind"`
	Path          string   `json:"path,omitempty" yaml:"path,omitempty"`
	Line          int      `json:"line,omitempty" yaml:"line,omitempty"`
	Annotations   []string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Supers        []string `json:"supers,omitempty" yaml:"supers,omitempty"`
	FieldCount    int      `json:"field_count" yaml:"field_count"`
}

func infoOf(c *source.Class, fieldCount int) ClassInfo {
	return ClassInfo{
		Name:          c.Name,
		QualifiedName: c.QualifiedName,
		Language:      c.Language,
		Kind:          c.Kind,
		Path:          c.Path,
		Line:          c.Line,
		Annotations:   c.Annotations,
		Supers:        c.Supers,
		FieldCount:    fieldCount,
	}
}

// Match is one ranked candidate.
type Match struct {
	Class      ClassInfo           `json:"class" yaml:"class"`
	Similarity float64             `json:"similarity" yaml:"similarity"`
	Fields     similarity.FieldSet `json:"fields" yaml:"fields"`
	Text       string              `json:"text,omitempty" yaml:"text,omitempty"`
}

// Result is the answer to a FindSimilar query.
type Result struct {
	Version       string              `json:"version" yaml:"version"`
	Source        *ClassInfo          `json:"source,omitempty" yaml:"source,omitempty"`
	SourceFields  similarity.FieldSet `json:"source_fields" yaml:"source_fields"`
	Columns       string              `json:"columns" yaml:"columns"`
	MinSimilarity float64             `json:"min_similarity" yaml:"min_similarity"`
	Candidates    int                 `json:"candidates" yaml:"candidates"`
	Matches       []Match             `json:"matches" yaml:"matches"`
}

// FindSimilar ranks the data classes of the current snapshot against the
// query's source fields.
func (s *Service) FindSimilar(ctx context.Context, q Query) (*Result, error) {
	if q.Class == "" && len(q.Fields) == 0 {
		return nil, fmt.Errorf("%w: class or fields is required", ErrEmptySource)
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var src *source.Class
	fields := q.Fields
	language := q.Language
	if q.Class != "" {
		src, err = snap.Lookup(q.Class)
		if err != nil {
			return nil, err
		}
		language = src.Language
		if len(fields) == 0 {
			fields = snap.Fields(src, q.IncludeInherited)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, q.Class)
	}

	candidates, byID := s.candidates(snap, src, language, q)
	ranked, err := similarity.RankContext(ctx, fields, candidates, q.MinSimilarity, q.Columns)
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}

	result := &Result{
		Version:       strconv.FormatUint(snap.Version, 16),
		SourceFields:  fields,
		Columns:       q.Columns.String(),
		MinSimilarity: q.MinSimilarity,
		Candidates:    len(candidates),
		Matches:       make([]Match, 0, len(ranked)),
	}
	if src != nil {
		info := infoOf(src, len(fields))
		result.Source = &info
	}
	for _, r := range ranked {
		result.Matches = append(result.Matches, Match{
			Class:      infoOf(byID[r.CandidateID], len(r.Fields)),
			Similarity: r.Similarity,
			Fields:     r.Fields,
			Text:       r.SourceText,
		})
	}
	debug.LogSearch("%s: %d of %d candidates matched (columns %s, min %.2f)",
		q.Class, len(ranked), len(candidates), q.Columns, q.MinSimilarity)
	return result, nil
}

// candidates lists the data classes eligible for comparison, keyed by a
// unique ID that doubles as the ranking tie-break.
func (s *Service) candidates(snap *catalog.Snapshot, src *source.Class, language string, q Query) ([]similarity.Candidate, map[string]*source.Class) {
	var out []similarity.Candidate
	byID := make(map[string]*source.Class)
	for _, c := range snap.DataClasses(s.settings.Markers, s.settings.RequireMarker) {
		if src != nil && c.QualifiedName == src.QualifiedName && c.Language == src.Language {
			continue
		}
		if language != "" && language != source.LanguageManifest && c.Language != language {
			continue
		}
		id := c.QualifiedName
		if _, dup := byID[id]; dup {
			id = c.Path + "#" + c.Name
		}
		byID[id] = c
		cand := similarity.Candidate{ID: id, Fields: snap.Fields(c, q.IncludeInherited)}
		if q.IncludeText {
			cand.SourceText = c.Text
		}
		out = append(out, cand)
	}
	return out, byID
}

// Filter narrows ListDataClasses.
type Filter struct {
	Language string
	// Name is a glob matched against the qualified and the simple name.
	Name string
	// All lists every class, not only those carrying a marker.
	All bool
}

// ListDataClasses returns the data classes of the current snapshot sorted
// by qualified name.
func (s *Service) ListDataClasses(ctx context.Context, f Filter) ([]ClassInfo, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if f.Name != "" && !doublestar.ValidatePattern(f.Name) {
		return nil, fmt.Errorf("invalid name pattern %q", f.Name)
	}

	var classes []*source.Class
	if f.All {
		classes = snap.Classes()
	} else {
		classes = snap.DataClasses(s.settings.Markers, s.settings.RequireMarker)
	}
	out := make([]ClassInfo, 0, len(classes))
	for _, c := range classes {
		if f.Language != "" && c.Language != f.Language {
			continue
		}
		if f.Name != "" && !matchName(f.Name, c) {
			continue
		}
		out = append(out, infoOf(c, len(snap.Fields(c, s.settings.IncludeInherited))))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].QualifiedName != out[j].QualifiedName {
			return out[i].QualifiedName < out[j].QualifiedName
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func matchName(pattern string, c *source.Class) bool {
	for _, name := range []string{c.QualifiedName, c.Name} {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
