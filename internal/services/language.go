package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

// Localized HP abbreviations printed next to the card name. Italian (Punti
// Salute) and Spanish (Puntos de Salud) share PS.
var hpMarkers = []struct {
	pattern   *regexp.Regexp
	languages []lingua.Language
}{
	{regexp.MustCompile(`\b\d{2,3}\s*KP\b|\bKP\s*\d{2,3}\b`), []lingua.Language{lingua.German}},
	{regexp.MustCompile(`\b\d{2,3}\s*PV\b|\bPV\s*\d{2,3}\b`), []lingua.Language{lingua.French}},
	{regexp.MustCompile(`\b\d{2,3}\s*PS\b|\bPS\s*\d{2,3}\b`), []lingua.Language{lingua.Italian, lingua.Spanish}},
	{regexp.MustCompile(`\b\d{2,3}\s*HP\b|\bHP\s*\d{2,3}\b`), []lingua.Language{lingua.English}},
}

// markerMargin is how far below the statistical winner a language named by
// an HP marker may score and still be chosen.
const markerMargin = 0.2

type languageScore struct {
	language lingua.Language
	value    float64
}

// LanguageDetector guesses a card's print language from OCR text, choosing
// only among the languages OCR was configured for. It is safe for concurrent
// use.
type LanguageDetector struct {
	candidates []lingua.Language
	// nil with a single candidate, which then always wins.
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector for ISO 639-1 codes. Codes lingua
// does not model are ignored; with none left the detector assumes English.
func NewLanguageDetector(codes []string) *LanguageDetector {
	var candidates []lingua.Language
	seen := make(map[lingua.Language]bool)
	for _, code := range codes {
		lang, ok := linguaLanguage(code)
		if !ok || seen[lang] {
			continue
		}
		seen[lang] = true
		candidates = append(candidates, lang)
	}
	if len(candidates) == 0 {
		candidates = []lingua.Language{lingua.English}
	}

	d := &LanguageDetector{candidates: candidates}
	if len(candidates) > 1 {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidates...).
			Build()
	}
	return d
}

func linguaLanguage(code string) (lingua.Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, lang := range lingua.AllLanguages() {
		if strings.ToLower(lang.IsoCode639_1().String()) == code {
			return lang, true
		}
	}
	return lingua.Unknown, false
}

// Detect returns the ISO 639-1 code of the most likely language. It reports
// false when the text has no letters to work with.
func (d *LanguageDetector) Detect(text string) (string, bool) {
	if !containsLetter(text) {
		return "", false
	}
	if d.detector == nil {
		return isoCode(d.candidates[0]), true
	}

	values := d.detector.ComputeLanguageConfidenceValues(text)
	scores := make([]languageScore, 0, len(values))
	for _, v := range values {
		scores = append(scores, languageScore{language: v.Language(), value: v.Value()})
	}
	return isoCode(d.pick(scores, markedLanguages(text))), true
}

// pick takes the highest scoring language unless an HP marker names one that
// is within markerMargin of it. With no signal at all it prefers English, then
// the first configured language.
func (d *LanguageDetector) pick(scores []languageScore, marked []lingua.Language) lingua.Language {
	best, hinted := -1, -1
	for i, s := range scores {
		if best < 0 || s.value > scores[best].value {
			best = i
		}
		for _, m := range marked {
			if s.language == m && (hinted < 0 || s.value > scores[hinted].value) {
				hinted = i
			}
		}
	}

	if hinted >= 0 && scores[hinted].value >= scores[best].value-markerMargin {
		return scores[hinted].language
	}
	if best >= 0 && scores[best].value > 0 {
		return scores[best].language
	}

	for _, lang := range d.candidates {
		if lang == lingua.English {
			return lang
		}
	}
	return d.candidates[0]
}

func markedLanguages(text string) []lingua.Language {
	upper := strings.ToUpper(text)
	var marked []lingua.Language
	for _, m := range hpMarkers {
		if m.pattern.MatchString(upper) {
			marked = append(marked, m.languages...)
		}
	}
	return marked
}

func isoCode(lang lingua.Language) string {
	return strings.ToLower(lang.IsoCode639_1().String())
}

func containsLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
