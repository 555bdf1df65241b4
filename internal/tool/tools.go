// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wheelclass/wheelclass-mcp/internal/debug"
	"github.com/wheelclass/wheelclass-mcp/internal/search"
	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

var fieldSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"name"},
	"properties": map[string]interface{}{
		"name":        map[string]interface{}{"type": "string"},
		"type":        map[string]interface{}{"type": "string"},
		"comment":     map[string]interface{}{"type": "string"},
		"annotations": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
	},
}

var columnsSchema = map[string]interface{}{
	"type":        "array",
	"description": "Columns to compare: any of name, type, comment. Defaults to the configured columns (name and type).",
	"items":       map[string]interface{}{"type": "string", "enum": []string{"name", "type", "comment"}},
}

var includeInheritedSchema = map[string]interface{}{
	"type":        "boolean",
	"description": "Include fields of superclasses or embedded structs. Defaults to the configured setting.",
}

// MetadataFindSimilarClasses describes the find_similar_classes tool.
var MetadataFindSimilarClasses = &mcp.Tool{
	Name: "find_similar_classes",
	Description: "Find data classes in the project whose fields are structurally similar to a source class " +
		"or an explicit field list. Each match carries a similarity in [0, 1] built from field name, type and " +
		"comment agreement, reduced when field counts differ. Matches are sorted by similarity, best first. " +
		"A Java source is only compared with Java classes and a Go source with Go structs; a field list " +
		"without a class is compared with every language.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"class": map[string]interface{}{
				"type":        "string",
				"description": "Qualified or simple name of the source class. Prefix with 'path#' to disambiguate.",
			},
			"fields": map[string]interface{}{
				"type":        "array",
				"description": "Explicit source fields. Used instead of the class's fields when given.",
				"items":       fieldSchema,
			},
			"language": map[string]interface{}{
				"type":        "string",
				"description": "Restrict candidates to one language when no class is given.",
				"enum":        []string{"java", "go"},
			},
			"columns": columnsSchema,
			"min_similarity": map[string]interface{}{
				"type":        "number",
				"description": "Minimum similarity for a match, inclusive. Defaults to 0.5.",
				"minimum":     0,
				"maximum":     1,
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of matches. 0 returns all.",
				"minimum":     0,
			},
			"include_inherited": includeInheritedSchema,
			"include_text": map[string]interface{}{
				"type":        "boolean",
				"description": "Include each match's declaration source text.",
			},
		},
	},
}

// InputFindSimilarClasses is the input for the FindSimilarClasses tool.
type InputFindSimilarClasses struct {
	Class            string              `json:"class"`
	Fields           similarity.FieldSet `json:"fields"`
	Language         string              `json:"language"`
	Columns          []string            `json:"columns"`
	MinSimilarity    *float64            `json:"min_similarity"`
	Limit            int                 `json:"limit"`
	IncludeInherited *bool               `json:"include_inherited"`
	IncludeText      bool                `json:"include_text"`
}

// MetadataListDataClasses describes the list_data_classes tool.
var MetadataListDataClasses = &mcp.Tool{
	Name: "list_data_classes",
	Description: "List the data classes found in the project: Java classes annotated with a data marker " +
		"such as lombok @Data, Java records, and Go structs carrying a //wheelclass:data directive.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"language": map[string]interface{}{
				"type": "string",
				"enum": []string{"java", "go"},
			},
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Glob matched against qualified and simple names, e.g. '*DTO'.",
			},
			"all": map[string]interface{}{
				"type":        "boolean",
				"description": "List every class, not only marked data classes.",
			},
		},
	},
}

// InputListDataClasses is the input for the ListDataClasses tool.
type InputListDataClasses struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	All      bool   `json:"all"`
}

// OutputListDataClasses is the output for the ListDataClasses tool.
type OutputListDataClasses struct {
	Classes []search.ClassInfo `json:"classes"`
	Count   int                `json:"count"`
}

// MetadataDescribeClass describes the describe_class tool.
var MetadataDescribeClass = &mcp.Tool{
	Name:        "describe_class",
	Description: "Show one class with its fields, cleaned comments, annotations and declaration source.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"class"},
		"properties": map[string]interface{}{
			"class": map[string]interface{}{
				"type":        "string",
				"description": "Qualified or simple class name, optionally prefixed with 'path#'.",
			},
			"include_inherited": includeInheritedSchema,
		},
	},
}

// InputDescribeClass is the input for the DescribeClass tool.
type InputDescribeClass struct {
	Class            string `json:"class"`
	IncludeInherited *bool  `json:"include_inherited"`
}

// MetadataCompareFieldSets describes the compare_field_sets tool.
var MetadataCompareFieldSets = &mcp.Tool{
	Name: "compare_field_sets",
	Description: "Score two field sets against each other and report the per-column scores, the field-count " +
		"penalty and the final similarity. Each side is either a class name or an explicit field list.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"left_class":        map[string]interface{}{"type": "string"},
			"right_class":       map[string]interface{}{"type": "string"},
			"left":              map[string]interface{}{"type": "array", "items": fieldSchema},
			"right":             map[string]interface{}{"type": "array", "items": fieldSchema},
			"columns":           columnsSchema,
			"include_inherited": includeInheritedSchema,
		},
	},
}

// InputCompareFieldSets is the input for the CompareFieldSets tool.
type InputCompareFieldSets struct {
	LeftClass        string              `json:"left_class"`
	RightClass       string              `json:"right_class"`
	Left             similarity.FieldSet `json:"left"`
	Right            similarity.FieldSet `json:"right"`
	Columns          []string            `json:"columns"`
	IncludeInherited *bool               `json:"include_inherited"`
}

// Tools binds the tool handlers to a search service.
type Tools struct {
	svc *search.Service
}

func NewTools(svc *search.Service) *Tools {
	return &Tools{svc: svc}
}

// FindSimilarClasses ranks project data classes against a class or field list.
func (t *Tools) FindSimilarClasses(ctx context.Context, _ *mcp.CallToolRequest, input InputFindSimilarClasses) (*mcp.CallToolResult, search.Result, error) {
	if input.Class == "" && len(input.Fields) == 0 {
		return nil, search.Result{}, fmt.Errorf("class or fields is required")
	}
	if input.Limit < 0 {
		return nil, search.Result{}, fmt.Errorf("limit must not be negative")
	}

	q := t.svc.NewQuery(input.Class)
	q.Fields = input.Fields
	q.Language = input.Language
	q.Limit = input.Limit
	q.IncludeText = input.IncludeText
	if input.MinSimilarity != nil {
		if *input.MinSimilarity < 0 || *input.MinSimilarity > 1 {
			return nil, search.Result{}, fmt.Errorf("min_similarity must be within [0, 1]")
		}
		q.MinSimilarity = *input.MinSimilarity
	}
	if input.IncludeInherited != nil {
		q.IncludeInherited = *input.IncludeInherited
	}
	cols, err := t.columns(input.Columns)
	if err != nil {
		return nil, search.Result{}, err
	}
	q.Columns = cols

	debug.LogMCP("find_similar_classes class=%q fields=%d", input.Class, len(input.Fields))
	result, err := t.svc.FindSimilar(ctx, q)
	if err != nil {
		return nil, search.Result{}, err
	}
	return nil, *result, nil
}

// ListDataClasses lists the project's data classes.
func (t *Tools) ListDataClasses(ctx context.Context, _ *mcp.CallToolRequest, input InputListDataClasses) (*mcp.CallToolResult, OutputListDataClasses, error) {
	classes, err := t.svc.ListDataClasses(ctx, search.Filter{
		Language: input.Language,
		Name:     input.Name,
		All:      input.All,
	})
	if err != nil {
		return nil, OutputListDataClasses{}, err
	}
	return nil, OutputListDataClasses{Classes: classes, Count: len(classes)}, nil
}

// DescribeClass returns one class in detail.
func (t *Tools) DescribeClass(ctx context.Context, _ *mcp.CallToolRequest, input InputDescribeClass) (*mcp.CallToolResult, search.Description, error) {
	if input.Class == "" {
		return nil, search.Description{}, fmt.Errorf("class is required")
	}
	inherited := t.svc.Settings().IncludeInherited
	if input.IncludeInherited != nil {
		inherited = *input.IncludeInherited
	}
	d, err := t.svc.Describe(ctx, input.Class, inherited)
	if err != nil {
		return nil, search.Description{}, err
	}
	return nil, *d, nil
}

// CompareFieldSets scores two classes or explicit field lists.
func (t *Tools) CompareFieldSets(ctx context.Context, _ *mcp.CallToolRequest, input InputCompareFieldSets) (*mcp.CallToolResult, search.Comparison, error) {
	cols, err := t.columns(input.Columns)
	if err != nil {
		return nil, search.Comparison{}, err
	}
	inherited := t.svc.Settings().IncludeInherited
	if input.IncludeInherited != nil {
		inherited = *input.IncludeInherited
	}

	left, err := t.side(ctx, input.LeftClass, input.Left, inherited)
	if err != nil {
		return nil, search.Comparison{}, fmt.Errorf("left: %w", err)
	}
	right, err := t.side(ctx, input.RightClass, input.Right, inherited)
	if err != nil {
		return nil, search.Comparison{}, fmt.Errorf("right: %w", err)
	}
	return nil, t.svc.Compare(left, right, cols), nil
}

func (t *Tools) side(ctx context.Context, class string, fields similarity.FieldSet, inherited bool) (similarity.FieldSet, error) {
	if len(fields) > 0 {
		return fields, nil
	}
	if class == "" {
		return nil, fmt.Errorf("a class or a field list is required")
	}
	return t.svc.ClassFields(ctx, class, inherited)
}

func (t *Tools) columns(names []string) (similarity.ColumnSelector, error) {
	if len(names) == 0 {
		return t.svc.Settings().Columns, nil
	}
	return similarity.ParseColumnList(names)
}
