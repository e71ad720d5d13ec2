package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// layoutStopwords are words printed on most cards that are never the card name.
// Compared against the lower-cased word.
var layoutStopwords = map[string]struct{}{
	"stage":   {},
	"basic":   {},
	"pv":      {},
	"hp":      {},
	"energie": {},
	"energy":  {},
}

// minTokenLength is exclusive: a token must be longer than this.
const minTokenLength = 2

// NormalizeTokens splits raw OCR text on whitespace and keeps the words that
// could plausibly be part of a card name. Order and repetition are preserved
// and the original casing is returned.
//
// A word is kept when it is not a layout stopword (case-insensitive), is made
// only of letters, and has more than two characters. Anything containing a
// digit or punctuation ("HP90", "Lv.50") is dropped.
func NormalizeTokens(rawText string) []string {
	var tokens []string
	for _, word := range strings.Fields(rawText) {
		if isNameToken(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func isNameToken(word string) bool {
	if utf8.RuneCountInString(word) <= minTokenLength {
		return false
	}
	if _, stop := layoutStopwords[strings.ToLower(word)]; stop {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
