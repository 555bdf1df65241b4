// SPDX-License-Identifier: Apache-2.0

// Package similarity scores how structurally alike two field sets are.
//
// A score combines per-column match rates (name, type, comment) with a
// penalty for differing field counts. Every function here is pure and safe
// for concurrent use.
package similarity

import (
	"math"
	"strings"
)

// Breakdown exposes the intermediate values behind a score.
type Breakdown struct {
	Columns ColumnSelector `json:"-"`
	Name    float64        `json:"name"`
	Type    float64        `json:"type"`
	Comment float64        `json:"comment"`
	// Combined is the unweighted mean of the selected column scores.
	Combined float64 `json:"combined"`
	// Penalty is 1 for equally sized sets and shrinks as the sizes diverge.
	Penalty    float64 `json:"penalty"`
	Similarity float64 `json:"similarity"`
}

// Score returns the similarity of source and target in [0, 1].
// Empty inputs or an empty selector score 0.
func Score(source, target FieldSet, columns ColumnSelector) float64 {
	return Explain(source, target, columns).Similarity
}

// Explain computes the score along with its per-column components.
// Unselected columns are left at zero.
func Explain(source, target FieldSet, columns ColumnSelector) Breakdown {
	b := Breakdown{Columns: columns}
	if len(source) == 0 || len(target) == 0 || columns.Empty() {
		return b
	}

	var sum float64
	for _, col := range columns.List() {
		var s float64
		switch col {
		case ColumnName:
			s = nameScore(source, target)
			b.Name = s
		case ColumnType:
			s = typeScore(source, target)
			b.Type = s
		case ColumnComment:
			s = commentScore(source, target)
			b.Comment = s
		}
		sum += s
	}
	b.Combined = clamp(sum / float64(columns.Len()))
	b.Penalty = sizePenalty(len(source), len(target))
	b.Similarity = clamp(b.Combined * b.Penalty)
	return b
}

// nameScore is the harmonic mean of the fraction of each side whose name
// appears, case-insensitively, on the other side.
func nameScore(source, target FieldSet) float64 {
	sourceNames := lowerNames(source)
	targetNames := lowerNames(target)

	sourceMatches := 0
	for _, f := range source {
		if _, ok := targetNames[strings.ToLower(f.Name)]; ok {
			sourceMatches++
		}
	}
	targetMatches := 0
	for _, f := range target {
		if _, ok := sourceNames[strings.ToLower(f.Name)]; ok {
			targetMatches++
		}
	}
	return harmonic(sourceMatches, len(source), targetMatches, len(target))
}

func lowerNames(fields FieldSet) map[string]struct{} {
	names := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		names[strings.ToLower(f.Name)] = struct{}{}
	}
	return names
}

// typeScore is the Dice coefficient of the two type multisets:
// 2*overlap / (|source|+|target|), where overlap counts each lowercased
// type min(countSource, countTarget) times.
func typeScore(source, target FieldSet) float64 {
	targetCounts := make(map[string]int, len(target))
	for _, f := range target {
		targetCounts[strings.ToLower(f.Type)]++
	}
	overlap := 0
	for _, f := range source {
		t := strings.ToLower(f.Type)
		if targetCounts[t] > 0 {
			targetCounts[t]--
			overlap++
		}
	}
	total := len(source) + len(target)
	if total == 0 {
		return 0
	}
	return clamp(2 * float64(overlap) / float64(total))
}

// commentScore matches cleaned comments by case-insensitive containment in
// either direction. A side with no comment at all scores 0.
func commentScore(source, target FieldSet) float64 {
	sourceComments, ok := cleanComments(source)
	if !ok {
		return 0
	}
	targetComments, ok := cleanComments(target)
	if !ok {
		return 0
	}

	sourceMatches := 0
	for _, sc := range sourceComments {
		if anyContains(sc, targetComments) {
			sourceMatches++
		}
	}
	targetMatches := 0
	for _, tc := range targetComments {
		if anyContains(tc, sourceComments) {
			targetMatches++
		}
	}
	return harmonic(sourceMatches, len(source), targetMatches, len(target))
}

func anyContains(c string, others []string) bool {
	if c == "" {
		return false
	}
	for _, o := range others {
		if o == "" {
			continue
		}
		if strings.Contains(c, o) || strings.Contains(o, c) {
			return true
		}
	}
	return false
}

func harmonic(sourceMatches, sourceTotal, targetMatches, targetTotal int) float64 {
	if sourceTotal == 0 || targetTotal == 0 || (sourceMatches == 0 && targetMatches == 0) {
		return 0
	}
	p := float64(sourceMatches) / float64(sourceTotal)
	r := float64(targetMatches) / float64(targetTotal)
	if p+r == 0 {
		return 0
	}
	return clamp(2 * p * r / (p + r))
}

func sizePenalty(a, b int) float64 {
	larger := max(a, b)
	if larger == 0 {
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return clamp(1 - float64(diff)/float64(larger))
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
