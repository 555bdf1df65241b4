// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/wheelclass/wheelclass-mcp/internal/search"
	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

// render writes v as YAML or JSON, or calls table for the table format.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch format {
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func location(c search.ClassInfo) string {
	if c.Path == "" {
		return ""
	}
	if c.Line > 0 {
		return fmt.Sprintf("%s:%d", c.Path, c.Line)
	}
	return c.Path
}

func resultTable(r *search.Result) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		src := "(fields)"
		if r.Source != nil {
			src = r.Source.QualifiedName
		}
		fmt.Fprintf(tw, "# %s: %d of %d candidates, columns %s, min %.2f\n",
			src, len(r.Matches), r.Candidates, r.Columns, r.MinSimilarity)
		fmt.Fprintln(tw, "SIMILARITY\tCLASS\tFIELDS\tLOCATION")
		for _, m := range r.Matches {
			fmt.Fprintf(tw, "%.3f\t%s\t%d\t%s\n", m.Similarity, m.Class.QualifiedName, len(m.Fields), location(m.Class))
		}
	}
}

func classesTable(classes []search.ClassInfo) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "CLASS\tLANGUAGE\tKIND\tFIELDS\tLOCATION")
		for _, c := range classes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.QualifiedName, c.Language, c.Kind, c.FieldCount, location(c))
		}
	}
}

func describeTable(d *search.Description) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "# %s (%s %s) %s\n", d.Class.QualifiedName, d.Class.Language, d.Class.Kind, location(d.Class))
		if len(d.Class.Annotations) > 0 {
			fmt.Fprintf(tw, "# annotations: %s\n", strings.Join(d.Class.Annotations, ", "))
		}
		fmt.Fprintln(tw, "FIELD\tTYPE\tCOMMENT\tINHERITED")
		for _, f := range d.Fields {
			inherited := ""
			if f.Inherited {
				inherited = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Type, f.Comment, inherited)
		}
	}
}

func comparisonTable(c search.Comparison) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		b := c.Breakdown
		fmt.Fprintln(tw, "COLUMN\tSCORE")
		for _, col := range b.Columns.List() {
			var s float64
			switch col {
			case similarity.ColumnName:
				s = b.Name
			case similarity.ColumnType:
				s = b.Type
			case similarity.ColumnComment:
				s = b.Comment
			}
			fmt.Fprintf(tw, "%s\t%.3f\n", col, s)
		}
		fmt.Fprintf(tw, "combined\t%.3f\n", b.Combined)
		fmt.Fprintf(tw, "penalty\t%.3f\n", b.Penalty)
		fmt.Fprintf(tw, "similarity\t%.3f\n", b.Similarity)
	}
}
