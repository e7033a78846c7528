package types

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TitleCase turns a manifest or skills key such as "backend_dev" or
// "senior-engineer" into a display label ("Backend Dev", "Senior Engineer").
// Underscores and hyphens become spaces; each word's first letter is upper-cased
// and the rest is left untouched.
func TitleCase(key string) string {
	replaced := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, key)

	words := strings.Fields(replaced)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
