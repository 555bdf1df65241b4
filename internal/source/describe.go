// SPDX-License-Identifier: Apache-2.0

package source

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

// descriptionRule names annotations (or Go struct tag keys) that carry a
// human-readable field description, and the argument keys to read it from.
// An empty key is the positional value.
type descriptionRule struct {
	annotations []string
	keys        []string
}

// descriptionRules is evaluated in order; the first rule yielding a
// non-empty value wins.
var descriptionRules = []descriptionRule{
	{annotations: []string{"ApiModelProperty", "ApiParam"}, keys: []string{"", "value", "notes"}},
	{annotations: []string{"Schema", "Parameter"}, keys: []string{"description", "title"}},
	{annotations: []string{"JsonPropertyDescription", "Comment", "Description"}, keys: []string{"", "value"}},
	{annotations: []string{"description", "desc", "doc", "comment"}, keys: []string{""}},
}

var (
	goTagPattern    = regexp.MustCompile(`^([A-Za-z_][\w.-]*):("(?:[^"\\]|\\.)*")$`)
	namedArgPattern = regexp.MustCompile(`(\w+)\s*=\s*("(?:[^"\\]|\\.)*")`)
	leadingString   = regexp.MustCompile(`^\s*("(?:[^"\\]|\\.)*")`)
)

// DescribeFields fills in the comment of every field that has none from
// its description-bearing annotations, e.g. @ApiModelProperty("user id"),
// and returns how many it filled.
func DescribeFields(fields similarity.FieldSet) int {
	n := 0
	for i := range fields {
		if similarity.CleanComment(fields[i].Comment) != "" {
			continue
		}
		if d := AnnotationDescription(fields[i].Annotations); d != "" {
			fields[i].Comment = d
			n++
		}
	}
	return n
}

// AnnotationDescription returns the first description found in annotations.
func AnnotationDescription(annotations []string) string {
	if len(annotations) == 0 {
		return ""
	}
	parsed := make([]parsedAnnotation, 0, len(annotations))
	for _, a := range annotations {
		parsed = append(parsed, parseAnnotation(a))
	}
	for _, rule := range descriptionRules {
		for _, p := range parsed {
			if !slices.Contains(rule.annotations, p.name) {
				continue
			}
			for _, key := range rule.keys {
				if v := strings.TrimSpace(p.args[key]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

type parsedAnnotation struct {
	name string
	args map[string]string
}

// parseAnnotation understands "pkg.Name", "Name(\"v\")", "Name(k = \"v\", ...)"
// and Go tag items such as `description:"v"`.
func parseAnnotation(text string) parsedAnnotation {
	text = strings.TrimPrefix(strings.TrimSpace(text), "@")
	p := parsedAnnotation{args: map[string]string{}}

	if m := goTagPattern.FindStringSubmatch(text); m != nil {
		p.name = m[1]
		p.args[""] = unquote(m[2])
		return p
	}

	open := strings.IndexByte(text, '(')
	if open < 0 {
		p.name = SimpleName(text)
		return p
	}
	p.name = SimpleName(text[:open])
	args := strings.TrimSpace(text[open+1:])
	args = strings.TrimSuffix(args, ")")

	if m := leadingString.FindStringSubmatch(args); m != nil {
		p.args[""] = unquote(m[1])
	}
	for _, m := range namedArgPattern.FindAllStringSubmatch(args, -1) {
		if _, seen := p.args[m[1]]; !seen {
			p.args[m[1]] = unquote(m[2])
		}
	}
	return p
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}
