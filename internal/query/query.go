// Package query holds the input contract shared by the search and traversal engines.
package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalid is the data-level error code carried by results for rejected queries.
const ErrInvalid = "invalid_query"

// DefaultMaxLength bounds query length in characters.
const DefaultMaxLength = 100

// allowedPunctuation lists the non-alphanumeric characters a query may contain.
const allowedPunctuation = "-'’.,?!"

// Normalize trims and case-folds q. It is the cache and lookup key form of a query.
func Normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Valid reports whether q is non-empty after trimming, at most maxLen characters, and made of
// letters, digits, spaces and the punctuation allow-list. A maxLen <= 0 uses DefaultMaxLength.
func Valid(q string, maxLen int) bool {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	q = strings.TrimSpace(q)
	if q == "" || utf8.RuneCountInString(q) > maxLen {
		return false
	}
	for _, r := range q {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == ' ':
		case strings.ContainsRune(allowedPunctuation, r):
		default:
			return false
		}
	}
	return true
}

// HasCompoundHint reports whether q looks like a request for a compound: hyphenated or
// several words.
func HasCompoundHint(q string) bool {
	q = strings.TrimSpace(q)
	return strings.Contains(q, "-") || strings.ContainsFunc(q, unicode.IsSpace)
}

// Parts splits q into lowercased word parts on hyphens and whitespace.
func Parts(q string) []string {
	return strings.FieldsFunc(Normalize(q), func(r rune) bool {
		return r == '-' || unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '\'')
	})
}
