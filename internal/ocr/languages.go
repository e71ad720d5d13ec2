package ocr

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguages are the print languages a scan is expected to be in.
var DefaultLanguages = []string{"en", "fr", "de", "es", "it"}

// ParseLanguages validates a comma separated list of language codes and returns
// them as canonical ISO 639-1 codes.
func ParseLanguages(list string) ([]string, error) {
	var codes []string
	seen := make(map[string]struct{})
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", raw, err)
		}
		base, _ := tag.Base()
		code := base.String()
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// TesseractLanguages converts ISO 639-1 codes to the ISO 639-3 (terminologic)
// codes used for tesseract traineddata names, e.g. "de" -> "deu".
func TesseractLanguages(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		base, err := language.ParseBase(code)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", code, err)
		}
		out = append(out, base.ISO3())
	}
	return out, nil
}
