// SPDX-License-Identifier: Apache-2.0

package similarity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

func TestRank_FiltersAndOrders(t *testing.T) {
	source := fields("id", "Long", "name", "String")
	candidates := []similarity.Candidate{
		{ID: "com.acme.Zebra", Fields: fields("id", "Long", "name", "String")},
		{ID: "com.acme.Partial", Fields: fields("id", "Long", "title", "Integer", "flag", "Boolean")},
		{ID: "com.acme.Alpha", Fields: fields("ID", "long", "NAME", "string")},
	}

	results := similarity.Rank(source, candidates, 0.5, similarity.Columns(similarity.ColumnName, similarity.ColumnType))

	require.Len(t, results, 2)
	assert.Equal(t, "com.acme.Alpha", results[0].CandidateID, "ties break by candidate ID")
	assert.Equal(t, "com.acme.Zebra", results[1].CandidateID)
	for _, r := range results {
		assert.Equal(t, 1.0, r.Similarity)
	}
}

func TestRank_ThresholdIsInclusive(t *testing.T) {
	source := fields("id", "Long", "name", "String")
	candidates := []similarity.Candidate{
		{ID: "half", Fields: fields("id", "Long", "name", "String", "ID", "Long", "Name", "String")},
	}
	results := similarity.Rank(source, candidates, 0.5, similarity.Columns(similarity.ColumnName))
	require.Len(t, results, 1)
	assert.Equal(t, 0.5, results[0].Similarity)
}

func TestRank_DescendingWithSourceText(t *testing.T) {
	source := fields("a", "int", "b", "int", "c", "int")
	candidates := []similarity.Candidate{
		{ID: "one", Fields: fields("a", "int", "x", "bool", "y", "bool")},
		{ID: "three", Fields: fields("a", "int", "b", "int", "c", "int"), SourceText: "class three {}"},
		{ID: "two", Fields: fields("a", "int", "b", "int", "z", "bool")},
	}
	results := similarity.Rank(source, candidates, 0, similarity.AllColumns.Without(similarity.ColumnComment))
	require.Len(t, results, 3)
	assert.Equal(t, []string{"three", "two", "one"}, []string{results[0].CandidateID, results[1].CandidateID, results[2].CandidateID})
	assert.Equal(t, "class three {}", results[0].SourceText)
	assert.Equal(t, candidates[1].Fields, results[0].Fields)
}

func TestRank_EmptyInputs(t *testing.T) {
	assert.Empty(t, similarity.Rank(nil, []similarity.Candidate{{ID: "x", Fields: fields("a", "int")}}, 0.1, similarity.AllColumns))
	assert.Empty(t, similarity.Rank(fields("a", "int"), nil, 0, similarity.AllColumns))
}

func TestRankContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := similarity.RankContext(ctx, fields("a", "int"), []similarity.Candidate{{ID: "x", Fields: fields("a", "int")}}, 0, similarity.AllColumns)
	require.ErrorIs(t, err, context.Canceled)
}
