package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CLIEngine runs the tesseract binary once per image. Each call is a separate
// process, so the engine is safe for concurrent use without locking.
type CLIEngine struct {
	tesseractPath string
	pageSegMode   string
}

// NewCLIEngine creates an engine for the given tesseract binary. An empty path
// looks tesseract up in PATH.
func NewCLIEngine(tesseractPath string) *CLIEngine {
	if tesseractPath == "" {
		found, err := exec.LookPath("tesseract")
		if err != nil {
			found = "tesseract" // Will fail at runtime if not found
		}
		tesseractPath = found
	}

	return &CLIEngine{
		tesseractPath: tesseractPath,
		pageSegMode:   "3", // Fully automatic page segmentation
	}
}

func (e *CLIEngine) Name() string { return "tesseract-cli" }

// IsAvailable checks if the tesseract binary runs.
func (e *CLIEngine) IsAvailable() bool {
	cmd := exec.Command(e.tesseractPath, "--version")
	return cmd.Run() == nil
}

// Recognize preprocesses the image and pipes it through tesseract on stdin.
func (e *CLIEngine) Recognize(ctx context.Context, image []byte, languages []string) ([]string, error) {
	processed, err := PreprocessImage(image)
	if err != nil {
		return nil, err
	}

	tessLangs, err := TesseractLanguages(languages)
	if err != nil {
		return nil, err
	}

	args := []string{"stdin", "stdout", "--psm", e.pageSegMode, "--oem", "3"}
	if len(tessLangs) > 0 {
		args = append(args, "-l", strings.Join(tessLangs, "+"))
	}

	cmd := exec.CommandContext(ctx, e.tesseractPath, args...)
	cmd.Stdin = bytes.NewReader(processed)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract error: %w - %s", err, strings.TrimSpace(stderr.String()))
	}

	return SplitLines(stdout.String()), nil
}
