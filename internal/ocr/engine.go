// Package ocr defines the text-recognition boundary used by card identification
// and provides the tesseract-backed engines behind it.
package ocr

import (
	"context"
	"strings"
)

// Engine turns an image into recognized text fragments, one per line.
//
// Languages are ISO 639-1 codes and act as a hint; an engine may return text in
// any language. A nil slice with a nil error means nothing was recognized.
//
// Implementations must be safe to share across concurrent requests. Engines
// backed by a non thread-safe client serialize calls internally.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, languages []string) ([]string, error)
}

// SplitLines splits text into lines and drops empty/whitespace lines.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
