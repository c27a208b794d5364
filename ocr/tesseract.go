package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Compile-time check to ensure TesseractEngine implements Engine
var _ Engine = (*TesseractEngine)(nil)

// TesseractEngine is the default OCR engine, backed by a local Tesseract
// installation through gosseract. Each extraction uses a fresh client, so the
// engine is safe for concurrent use.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates a Tesseract engine for the given language code
// (e.g. "eng"). An empty language defaults to English.
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}
}

// ExtractText runs Tesseract over the image bytes. Tesseract itself is not
// cancellable mid-run; ctx is honored at the call boundaries.
func (t *TesseractEngine) ExtractText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("failed to set OCR language %q: %w", t.language, err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract extraction failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text, nil
}
