// SPDX-License-Identifier: Apache-2.0

package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

type stubExtractor struct {
	name    string
	format  string
	classes []*source.Class
	err     error
}

func (s stubExtractor) Name() string { return s.name }

func (s stubExtractor) CanHandle(src source.Source) bool { return src.Format == s.format }

func (s stubExtractor) Extract(context.Context, source.Source) ([]*source.Class, error) {
	return s.classes, s.err
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

func TestPipeline_SelectsFirstMatchingExtractor(t *testing.T) {
	first := stubExtractor{name: "first", format: "x", classes: []*source.Class{{Name: "A"}}}
	second := stubExtractor{name: "second", format: "x", classes: []*source.Class{{Name: "B"}}}
	p := source.NewPipeline(first, second)

	result, err := p.ExtractWithMeta(context.Background(), source.Source{Format: "x"})
	require.NoError(t, err)
	assert.Equal(t, "first", result.ExtractorUsed)
	require.Len(t, result.Classes, 1)
	assert.Equal(t, "A", result.Classes[0].Name)
	assert.Equal(t, []string{"first", "second"}, p.RegisteredExtractors())
}

func TestPipeline_Unsupported(t *testing.T) {
	p := source.NewPipeline()
	_, err := p.Extract(context.Background(), source.Source{Path: "a.txt", Format: "txt"})
	require.ErrorIs(t, err, source.ErrUnsupported)
	assert.Contains(t, err.Error(), "a.txt")
	assert.False(t, p.CanHandle(source.Source{Path: "a.txt"}))
}

func TestPipeline_CountsAnnotationDescriptions(t *testing.T) {
	class := &source.Class{Name: "UserDTO", Fields: similarity.FieldSet{
		{Name: "id", Annotations: []string{`ApiModelProperty("user id")`}},
		{Name: "name", Comment: "// display name", Annotations: []string{`ApiModelProperty("ignored")`}},
		{Name: "email"},
	}}
	p := source.NewPipeline(stubExtractor{name: "java", format: "x", classes: []*source.Class{class}})

	result, err := p.ExtractWithMeta(context.Background(), source.Source{Format: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Described)
	assert.Equal(t, "user id", class.Fields[0].Comment)
	assert.Equal(t, "// display name", class.Fields[1].Comment)
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := source.NewPipeline(stubExtractor{name: "java", format: "x", classes: []*source.Class{{Name: "A"}}})
	_, err := p.Extract(ctx, source.Source{Format: "x"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_WrapsExtractorError(t *testing.T) {
	boom := errors.New("boom")
	p := source.NewPipeline(stubExtractor{name: "broken", format: "x", err: boom})
	_, err := p.Extract(context.Background(), source.Source{Format: "x", Path: "f.x"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `extractor "broken" failed`)
}

// ---------------------------------------------------------------------------
// Markers and names
// ---------------------------------------------------------------------------

func TestHasMarker(t *testing.T) {
	markers := []string{"lombok.Data", "wheelclass:data"}
	tests := []struct {
		name  string
		class *source.Class
		want  bool
	}{
		{name: "qualified", class: &source.Class{Annotations: []string{"lombok.Data"}}, want: true},
		{name: "simple name", class: &source.Class{Annotations: []string{"Data"}}, want: true},
		{name: "directive", class: &source.Class{Annotations: []string{"wheelclass:data"}}, want: true},
		{name: "other directive", class: &source.Class{Annotations: []string{"other:data"}}, want: false},
		{name: "unrelated", class: &source.Class{Annotations: []string{"Entity"}}, want: false},
		{name: "record", class: &source.Class{Kind: source.KindRecord}, want: true},
		{name: "nil", class: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, source.HasMarker(tt.class, markers))
		})
	}
}

func TestSimpleName(t *testing.T) {
	assert.Equal(t, "List", source.SimpleName("java.util.List<String>"))
	assert.Equal(t, "Base", source.SimpleName("*models.Base"))
	assert.Equal(t, "Data", source.SimpleName("Data"))
	assert.Equal(t, "a.B", source.Qualify("a", "B"))
	assert.Equal(t, "B", source.Qualify("", "B"))
}

// ---------------------------------------------------------------------------
// Annotation descriptions
// ---------------------------------------------------------------------------

func TestAnnotationDescription(t *testing.T) {
	tests := []struct {
		name        string
		annotations []string
		want        string
	}{
		{name: "positional", annotations: []string{`io.swagger.annotations.ApiModelProperty("user id")`}, want: "user id"},
		{name: "named value", annotations: []string{`ApiModelProperty(value = "user id", required = true)`}, want: "user id"},
		{name: "openapi schema", annotations: []string{`Schema(example = "42", description = "the id")`}, want: "the id"},
		{name: "go tag", annotations: []string{`json:"id"`, `description:"order id"`}, want: "order id"},
		{name: "rule order wins", annotations: []string{`Comment("db comment")`, `ApiModelProperty("api")`}, want: "api"},
		{name: "escaped quote", annotations: []string{`ApiModelProperty("the \"key\"")`}, want: `the "key"`},
		{name: "marker only", annotations: []string{"lombok.NonNull"}, want: ""},
		{name: "none", annotations: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, source.AnnotationDescription(tt.annotations))
		})
	}
}

func TestDescribeFields_KeepsExistingComments(t *testing.T) {
	fields := similarity.FieldSet{
		{Name: "a", Comment: "/** own */", Annotations: []string{`ApiModelProperty("api")`}},
		{Name: "b", Comment: "/** */", Annotations: []string{`ApiModelProperty("api")`}},
	}
	assert.Equal(t, 1, source.DescribeFields(fields))
	assert.Equal(t, "/** own */", fields[0].Comment)
	assert.Equal(t, "api", fields[1].Comment)
}
