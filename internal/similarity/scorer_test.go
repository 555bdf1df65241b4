// SPDX-License-Identifier: Apache-2.0

package similarity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

func fields(pairs ...string) similarity.FieldSet {
	fs := make(similarity.FieldSet, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fs = append(fs, similarity.Field{Name: pairs[i], Type: pairs[i+1]})
	}
	return fs
}

var user = similarity.FieldSet{
	{Name: "id", Type: "Long", Comment: "/** user id */"},
	{Name: "userName", Type: "String", Comment: "/** login name */"},
	{Name: "email", Type: "String", Comment: "// contact email"},
	{Name: "createdAt", Type: "LocalDateTime", Comment: "/**\n * creation time\n */"},
}

// ---------------------------------------------------------------------------
// Degenerate input
// ---------------------------------------------------------------------------

func TestScore_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name    string
		source  similarity.FieldSet
		target  similarity.FieldSet
		columns similarity.ColumnSelector
	}{
		{name: "empty source", source: nil, target: user, columns: similarity.AllColumns},
		{name: "empty target", source: user, target: similarity.FieldSet{}, columns: similarity.AllColumns},
		{name: "both empty", columns: similarity.AllColumns},
		{name: "no columns", source: user, target: user, columns: 0},
		{name: "only out-of-range columns", source: user, target: user, columns: similarity.ColumnIndices(5, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, similarity.Score(tt.source, tt.target, tt.columns))
		})
	}
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestScore_IdenticalSetsAreMaximallySimilar(t *testing.T) {
	assert.Equal(t, 1.0, similarity.Score(user, user, similarity.AllColumns))
	assert.Equal(t, 1.0, similarity.Score(user, user, similarity.Columns(similarity.ColumnName, similarity.ColumnType)))
}

func TestScore_IdenticalSetsWithoutComments(t *testing.T) {
	bare := fields("id", "Long", "name", "String")
	// No comments on either side: the comment column contributes 0.
	assert.InDelta(t, 2.0/3.0, similarity.Score(bare, bare, similarity.AllColumns), 1e-9)
	assert.Equal(t, 0.0, similarity.Score(bare, bare, similarity.Columns(similarity.ColumnComment)))
}

func TestScore_Symmetric(t *testing.T) {
	other := similarity.FieldSet{
		{Name: "ID", Type: "long", Comment: "the user id field"},
		{Name: "email", Type: "String"},
		{Name: "phone", Type: "String", Comment: "phone number"},
	}
	for _, cols := range []similarity.ColumnSelector{
		similarity.Columns(similarity.ColumnName),
		similarity.Columns(similarity.ColumnType),
		similarity.Columns(similarity.ColumnComment),
		similarity.AllColumns,
	} {
		assert.Equal(t, similarity.Score(user, other, cols), similarity.Score(other, user, cols), "columns %s", cols)
	}
}

func TestScore_Bounded(t *testing.T) {
	sets := []similarity.FieldSet{
		user,
		fields("a", "int"),
		fields("a", "int", "a", "int", "a", "int"),
		fields("", "", "", ""),
		{{Name: "x", Type: "T", Comment: "/***/"}},
		{{Name: "x", Type: "T", Comment: "*"}, {Name: "y", Type: "T", Comment: "note"}},
	}
	for _, a := range sets {
		for _, b := range sets {
			s := similarity.Score(a, b, similarity.AllColumns)
			assert.False(t, math.IsNaN(s))
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

// ---------------------------------------------------------------------------
// Columns
// ---------------------------------------------------------------------------

func TestScore_NameIsCaseInsensitive(t *testing.T) {
	a := fields("userName", "String")
	b := fields("USERNAME", "Integer")
	assert.Equal(t, 1.0, similarity.Score(a, b, similarity.Columns(similarity.ColumnName)))
	assert.Equal(t, 0.0, similarity.Score(a, b, similarity.Columns(similarity.ColumnType)))
}

func TestScore_NameHarmonicMean(t *testing.T) {
	a := fields("id", "Long", "name", "String")
	b := fields("id", "Long", "name", "String", "age", "int", "city", "String")
	// precision 2/2, recall 2/4 -> 2*1*0.5/1.5
	b1 := similarity.Explain(a, b, similarity.Columns(similarity.ColumnName))
	assert.InDelta(t, 2.0/3.0, b1.Name, 1e-9)
	assert.InDelta(t, 0.5, b1.Penalty, 1e-9)
	assert.InDelta(t, 1.0/3.0, b1.Similarity, 1e-9)
}

func TestScore_FieldCountPenalty(t *testing.T) {
	a := fields("id", "Long", "name", "String")
	// Four fields whose names all match a's two names.
	b := fields("id", "Long", "name", "String", "ID", "Long", "Name", "String")

	got := similarity.Explain(a, b, similarity.Columns(similarity.ColumnName))
	assert.Equal(t, 1.0, got.Combined)
	assert.Equal(t, 0.5, got.Penalty)
	assert.Equal(t, 0.5, got.Similarity)
}

func TestScore_TypeMultisetDice(t *testing.T) {
	a := fields("a", "String", "b", "String", "c", "Long")
	b := fields("x", "string", "y", "Long", "z", "Long")
	// overlap: string min(2,1)=1, long min(1,2)=1 -> 2*2/6
	got := similarity.Explain(a, b, similarity.Columns(similarity.ColumnType))
	assert.InDelta(t, 2.0/3.0, got.Type, 1e-9)
	assert.Equal(t, 1.0, got.Penalty)
}

func TestScore_CommentContainment(t *testing.T) {
	a := similarity.FieldSet{{Name: "uid", Type: "Long", Comment: "/** user id */"}}
	b := similarity.FieldSet{{Name: "owner", Type: "Integer", Comment: "the User Id field"}}
	assert.Equal(t, 1.0, similarity.Score(a, b, similarity.Columns(similarity.ColumnComment)))
}

func TestScore_CommentAllEmptyOnOneSide(t *testing.T) {
	a := similarity.FieldSet{{Name: "id", Type: "Long", Comment: "/** */"}}
	b := similarity.FieldSet{{Name: "id", Type: "Long", Comment: "id"}}
	got := similarity.Explain(a, b, similarity.AllColumns)
	assert.Equal(t, 0.0, got.Comment)
	assert.InDelta(t, 2.0/3.0, got.Similarity, 1e-9)
}

func TestScore_EmptyCommentNeverMatches(t *testing.T) {
	a := similarity.FieldSet{
		{Name: "a", Type: "T", Comment: "order total"},
		{Name: "b", Type: "T"},
	}
	b := similarity.FieldSet{
		{Name: "c", Type: "T", Comment: "total"},
		{Name: "d", Type: "T"},
	}
	got := similarity.Explain(a, b, similarity.Columns(similarity.ColumnComment))
	assert.InDelta(t, 0.5, got.Comment, 1e-9)
}

func TestScore_DuplicateNames(t *testing.T) {
	a := fields("id", "Long", "id", "Long")
	b := fields("id", "Long")
	require.NotPanics(t, func() { similarity.Score(a, b, similarity.AllColumns) })
	got := similarity.Explain(a, b, similarity.Columns(similarity.ColumnName, similarity.ColumnType))
	assert.Equal(t, 1.0, got.Name)
	assert.InDelta(t, 2.0/3.0, got.Type, 1e-9)
	assert.Equal(t, 0.5, got.Penalty)
}

func TestExplain_UnselectedColumnsStayZero(t *testing.T) {
	got := similarity.Explain(user, user, similarity.Columns(similarity.ColumnType))
	assert.Equal(t, 0.0, got.Name)
	assert.Equal(t, 0.0, got.Comment)
	assert.Equal(t, 1.0, got.Type)
}
