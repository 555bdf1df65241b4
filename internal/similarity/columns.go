// SPDX-License-Identifier: Apache-2.0

package similarity

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is a comparison dimension.
type Column int

const (
	ColumnName Column = iota
	ColumnType
	ColumnComment

	numColumns = 3
)

var columnNames = [numColumns]string{"name", "type", "comment"}

func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return "column(" + strconv.Itoa(int(c)) + ")"
	}
	return columnNames[c]
}

func (c Column) valid() bool {
	return c >= 0 && c < numColumns
}

// ColumnSelector is the set of active columns. The zero value selects nothing.
type ColumnSelector uint8

// AllColumns selects name, type and comment.
const AllColumns = ColumnSelector(1<<ColumnName | 1<<ColumnType | 1<<ColumnComment)

// Columns builds a selector from the given columns. Out-of-range columns are ignored.
func Columns(cols ...Column) ColumnSelector {
	var s ColumnSelector
	for _, c := range cols {
		s = s.With(c)
	}
	return s
}

// ColumnIndices builds a selector from raw indices (0 name, 1 type, 2 comment).
// Unknown indices are ignored.
func ColumnIndices(indices ...int) ColumnSelector {
	var s ColumnSelector
	for _, i := range indices {
		s = s.With(Column(i))
	}
	return s
}

// With returns s with c added.
func (s ColumnSelector) With(c Column) ColumnSelector {
	if !c.valid() {
		return s
	}
	return s | 1<<c
}

// Without returns s with c removed.
func (s ColumnSelector) Without(c Column) ColumnSelector {
	if !c.valid() {
		return s
	}
	return s &^ (1 << c)
}

// Toggle flips c.
func (s ColumnSelector) Toggle(c Column) ColumnSelector {
	if s.Has(c) {
		return s.Without(c)
	}
	return s.With(c)
}

func (s ColumnSelector) Has(c Column) bool {
	return c.valid() && s&(1<<c) != 0
}

func (s ColumnSelector) Empty() bool {
	return s&AllColumns == 0
}

// Len returns the number of selected columns.
func (s ColumnSelector) Len() int {
	n := 0
	for c := Column(0); c < numColumns; c++ {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// List returns the selected columns in index order.
func (s ColumnSelector) List() []Column {
	cols := make([]Column, 0, numColumns)
	for c := Column(0); c < numColumns; c++ {
		if s.Has(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

func (s ColumnSelector) String() string {
	cols := s.List()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}

// ParseColumns accepts column names or indices, e.g. "name,type" or "0,1".
// An empty string yields an empty selector.
func ParseColumns(s string) (ColumnSelector, error) {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return ParseColumnList(parts)
}

// ParseColumnList is ParseColumns for an already split list.
func ParseColumnList(parts []string) (ColumnSelector, error) {
	var sel ColumnSelector
	for _, p := range parts {
		c, err := parseColumn(p)
		if err != nil {
			return 0, err
		}
		sel = sel.With(c)
	}
	return sel, nil
}

func parseColumn(p string) (Column, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if i, err := strconv.Atoi(p); err == nil {
		if !Column(i).valid() {
			return 0, fmt.Errorf("column index %d out of range", i)
		}
		return Column(i), nil
	}
	switch p {
	case "name", "names":
		return ColumnName, nil
	case "type", "types":
		return ColumnType, nil
	case "comment", "comments", "doc":
		return ColumnComment, nil
	}
	return 0, fmt.Errorf("unknown column %q (want name, type or comment)", p)
}
