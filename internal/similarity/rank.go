// SPDX-License-Identifier: Apache-2.0

package similarity

import (
	"context"
	"sort"
)

// Rank scores every candidate against source, drops those below
// minSimilarity and returns the rest sorted by similarity descending.
// Equal scores are ordered by candidate ID ascending.
func Rank(source FieldSet, candidates []Candidate, minSimilarity float64, columns ColumnSelector) []ScoreResult {
	results, _ := RankContext(context.Background(), source, candidates, minSimilarity, columns)
	return results
}

// RankContext is Rank with a cancellation check between candidates.
func RankContext(ctx context.Context, source FieldSet, candidates []Candidate, minSimilarity float64, columns ColumnSelector) ([]ScoreResult, error) {
	results := make([]ScoreResult, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := Score(source, c.Fields, columns)
		if s < minSimilarity {
			continue
		}
		results = append(results, ScoreResult{
			CandidateID: c.ID,
			Fields:      c.Fields,
			Similarity:  s,
			SourceText:  c.SourceText,
		})
	}
	SortResults(results)
	return results, nil
}

// SortResults orders results by similarity descending, then candidate ID.
func SortResults(results []ScoreResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].CandidateID < results[j].CandidateID
	})
}
