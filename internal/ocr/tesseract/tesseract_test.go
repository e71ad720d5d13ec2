package tesseract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os/exec"
	"sync"
	"testing"
	"time"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract is not installed")
	}
	e := New()
	t.Cleanup(func() { e.Close() })
	return e
}

func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(10, 10, color.Gray{Y: 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestRecognizeWaitsForEngine(t *testing.T) {
	e := newTestEngine(t)
	img := blankPNG(t)

	e.mu.Lock()
	done := make(chan error, 1)
	go func() {
		_, err := e.Recognize(context.Background(), img, []string{"en"})
		done <- err
	}()

	select {
	case err := <-done:
		e.mu.Unlock()
		t.Fatalf("Expected Recognize to wait while the engine is busy, returned %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	e.mu.Unlock()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Recognize failed: %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("Recognize did not finish after the engine was released")
	}
}

func TestRecognizeChecksContextAfterWaiting(t *testing.T) {
	e := newTestEngine(t)
	img := blankPNG(t)
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	done := make(chan error, 1)
	go func() {
		_, err := e.Recognize(ctx, img, []string{"en"})
		done <- err
	}()
	cancel()
	e.mu.Unlock()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("Recognize did not return")
	}
}

func TestRecognizeConcurrent(t *testing.T) {
	e := newTestEngine(t)
	img := blankPNG(t)

	const callers = 4
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Recognize(context.Background(), img, []string{"en"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Recognize failed: %v", err)
		}
	}
}

func TestRecognizeRejectsInvalidImage(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.Recognize(context.Background(), []byte("not an image"), []string{"en"}); err == nil {
		t.Error("Expected error for invalid image data")
	}
	if _, err := e.Recognize(context.Background(), blankPNG(t), []string{"not a language"}); err == nil {
		t.Error("Expected error for an unknown language")
	}
}
