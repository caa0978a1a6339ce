// Package boundary finds the word under a pointer inside a rendered text node.
//
// The caller supplies the node text, the caret offset nearest the pointer (in
// runes), the pointer position and a Layout able to measure rune ranges. A
// word is a maximal run of word-constituent runes around the offset: Unicode
// letters and numbers, the apostrophes ' and ’, and the hyphen.
package boundary

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinWordLength is the shortest accepted word, in runes.
const MinWordLength = 2

// Match is a resolved word and where it is rendered.
type Match struct {
	Word  string `json:"word"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Rect  Rect   `json:"rect"`
}

// IsWordRune reports whether r belongs to the word-constituent class.
func IsWordRune(r rune) bool {
	switch r {
	case '\'', '’', '-':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Span returns the rune bounds [left, right) of the word-constituent run
// touching offset. left == right when there is none.
func Span(runes []rune, offset int) (left, right int) {
	offset = min(max(offset, 0), len(runes))

	left = offset
	for left > 0 && IsWordRune(runes[left-1]) {
		left--
	}
	right = offset
	for right < len(runes) && IsWordRune(runes[right]) {
		right++
	}
	return left, right
}

// Resolve returns the word under pointer, or ok == false when the pointer is
// not over a valid word.
func Resolve(text string, offset int, pointer Point, layout Layout) (Match, bool) {
	if layout == nil || !utf8.ValidString(text) {
		return Match{}, false
	}

	runes := []rune(text)
	left, right := Span(runes, offset)

	word := strings.TrimSpace(string(runes[left:right]))
	if utf8.RuneCountInString(word) < MinWordLength {
		return Match{}, false
	}

	rect := layout.RangeRect(left, right)
	if rect.Empty() || !rect.Contains(pointer) {
		return Match{}, false
	}

	return Match{Word: word, Start: left, End: right, Rect: rect}, true
}
