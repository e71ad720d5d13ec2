package services

import (
	"regexp"

	"github.com/LooWze/LooWzeIA/internal/models"
)

// cardNumberPattern matches the printed "N/M" set position, e.g. "58/102".
var cardNumberPattern = regexp.MustCompile(`\d+/\d+`)

// ExtractCardNumber returns the first card number fraction in the text, or ""
// when there is none. The denominator is not checked against known set sizes.
func ExtractCardNumber(rawText string) string {
	return cardNumberPattern.FindString(rawText)
}

// ExtractCardName returns the first name token of the text, or "".
// This relies on OCR reading the title (top-left on the card) before anything else.
func ExtractCardName(rawText string) string {
	tokens := NormalizeTokens(rawText)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// ExtractIdentifiers derives the name and number identifiers for one face.
func ExtractIdentifiers(rawText string) models.IdentifierSet {
	return models.IdentifierSet{
		Name:   ExtractCardName(rawText),
		Number: ExtractCardNumber(rawText),
	}
}
