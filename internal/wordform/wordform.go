// Package wordform holds the display and key normalizations applied to words
// and translations.
package wordform

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Key trims whitespace and applies NFC so that composed and decomposed
// spellings of the same word share one cache slot.
func Key(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Canonical returns the dictionary form of a word: first rune upper-cased,
// the remainder lower-cased.
func Canonical(word string) string {
	word = Key(word)
	if word == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(word)
	return cases.Upper(language.Und).String(string(r)) + cases.Lower(language.Und).String(word[size:])
}

// Capitalize upper-cases the first rune and leaves the rest untouched.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}
