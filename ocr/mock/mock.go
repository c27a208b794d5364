// Package mock provides a scriptable ocr.Engine for tests.
package mock

import (
	"context"
	"sync"

	"github.com/medassist/medassist-api/ocr"
)

// Compile-time check to ensure Engine implements ocr.Engine
var _ ocr.Engine = (*Engine)(nil)

// Engine returns a fixed text or error and records every call.
type Engine struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls int
}

// ExtractText returns the scripted text/error.
func (e *Engine) ExtractText(ctx context.Context, image []byte) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

// Calls reports how many times ExtractText was invoked.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
