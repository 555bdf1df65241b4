// SPDX-License-Identifier: Apache-2.0

package similarity

import (
	"regexp"
	"strings"
)

var commentMarkup = regexp.MustCompile(`[/*]+`)

// CleanComment strips doc-comment markup ("/**", "*/", "//", leading "*")
// and collapses whitespace, so "/** user id */" becomes "user id".
func CleanComment(comment string) string {
	if comment == "" {
		return ""
	}
	stripped := commentMarkup.ReplaceAllString(comment, "")
	return strings.Join(strings.Fields(stripped), " ")
}

func cleanComments(fields FieldSet) ([]string, bool) {
	cleaned := make([]string, len(fields))
	found := false
	for i, f := range fields {
		cleaned[i] = strings.ToLower(CleanComment(f.Comment))
		if cleaned[i] != "" {
			found = true
		}
	}
	return cleaned, found
}
