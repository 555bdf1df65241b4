// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

// manifestDoc is a hand-written field list:
//
//	name: UserDTO
//	package: com.acme
//	language: java
//	fields:
//	  - {name: id, type: Long, comment: user id}
type manifestDoc struct {
	Name        string              `yaml:"name"`
	Package     string              `yaml:"package"`
	Language    string              `yaml:"language"`
	Annotations []string            `yaml:"annotations"`
	Supers      []string            `yaml:"supers"`
	Fields      similarity.FieldSet `yaml:"fields"`
}

// ManifestExtractor reads YAML or JSON field manifests. A document is
// either a manifestDoc or a bare list of fields; multi-document YAML
// (separated by '---') yields one class per document.
type ManifestExtractor struct{}

func NewManifestExtractor() *ManifestExtractor {
	return &ManifestExtractor{}
}

func (e *ManifestExtractor) Name() string {
	return source.LanguageManifest
}

func (e *ManifestExtractor) CanHandle(src source.Source) bool {
	switch strings.ToLower(src.Format) {
	case "yaml", "yml", "json", "manifest":
		return true
	}
	return src.Format == "" && hasExt(src.Path, ".yaml", ".yml", ".json")
}

func (e *ManifestExtractor) Extract(_ context.Context, src source.Source) ([]*source.Class, error) {
	docs := strings.Split(string(src.Content), "\n---")
	var classes []*source.Class

	for i, doc := range docs {
		doc = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(doc), "---"))
		if doc == "" {
			continue
		}
		c, err := e.parseDocument([]byte(doc), src.Path, i)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if len(classes) == 0 {
		return nil, errors.New("manifest contains no documents")
	}
	return classes, nil
}

func (e *ManifestExtractor) parseDocument(content []byte, path string, docIndex int) (*source.Class, error) {
	var m manifestDoc
	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "[") {
		if err := yaml.Unmarshal(content, &m.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal field list: %w", err)
		}
	} else if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if len(m.Fields) == 0 {
		return nil, fmt.Errorf("manifest document %d has no fields", docIndex)
	}
	for i, f := range m.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("manifest document %d: field %d has no name", docIndex, i)
		}
	}

	name := m.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if docIndex > 0 {
			name = fmt.Sprintf("%s-%d", name, docIndex)
		}
	}
	language := strings.ToLower(m.Language)
	if language == "" {
		language = source.LanguageManifest
	}
	return &source.Class{
		Name:          name,
		Package:       m.Package,
		QualifiedName: source.Qualify(m.Package, name),
		Language:      language,
		Kind:          source.KindClass,
		Path:          path,
		Annotations:   m.Annotations,
		Supers:        m.Supers,
		Fields:        m.Fields,
		Text:          string(content),
	}, nil
}
