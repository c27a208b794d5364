// Package ocr defines the text-extraction collaborator used by the
// identification pipeline and provides a Tesseract-backed default engine.
package ocr

import "context"

// Engine extracts machine-readable text from an image. An empty string with
// a nil error means "nothing found" and is a normal, handled outcome;
// implementations must reserve errors for genuine engine faults.
type Engine interface {
	// ExtractText runs OCR over the raw image bytes and returns the raw
	// extracted text. The content-type of the image is not validated here;
	// unsupported formats surface as engine errors.
	ExtractText(ctx context.Context, image []byte) (string, error)
}
