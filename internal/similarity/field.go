// SPDX-License-Identifier: Apache-2.0

package similarity

// Field is one comparable member of a class.
type Field struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Comment     string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Annotations []string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// FieldSet is the ordered list of fields representing one class.
// Duplicate names are allowed.
type FieldSet []Field

// Candidate is a class offered to Rank for comparison against a source field set.
type Candidate struct {
	// ID identifies the candidate; it is also the tie-break key when ranking.
	ID         string
	Fields     FieldSet
	SourceText string
}

// ScoreResult is the outcome of scoring one candidate.
type ScoreResult struct {
	CandidateID string   `json:"candidate"`
	Fields      FieldSet `json:"fields"`
	Similarity  float64  `json:"similarity"`
	SourceText  string   `json:"source_text,omitempty"`
}
