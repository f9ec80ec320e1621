// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases the title, collapses every run of non-alphanumeric
// characters into a single '-', and trims leading and trailing
// separators. The derivation is deterministic: the same title always
// yields the same slug. Uniqueness among stored posts is the store's
// responsibility, not this package's.
func Make(title string) string {
	var sb strings.Builder
	pendingSep := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	return sb.String()
}
