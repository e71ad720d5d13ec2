// Package tesseract provides an in-process OCR engine backed by libtesseract.
package tesseract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/LooWze/LooWzeIA/internal/ocr"
)

// Engine wraps a single gosseract client. The client is expensive to create
// and not safe for concurrent use, so every call holds mu for its duration.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates the engine and its underlying tesseract client.
func New() *Engine {
	return &Engine{client: gosseract.NewClient()}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs OCR on one image.
func (e *Engine) Recognize(ctx context.Context, image []byte, languages []string) ([]string, error) {
	processed, err := ocr.PreprocessImage(image)
	if err != nil {
		return nil, err
	}
	tessLangs, err := ocr.TesseractLanguages(languages)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Waiting for the lock may have used up the request deadline.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(tessLangs) > 0 {
		if err := e.client.SetLanguage(tessLangs...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := e.client.SetImageFromBytes(processed); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.SplitLines(text), nil
}

// Close releases the tesseract client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
