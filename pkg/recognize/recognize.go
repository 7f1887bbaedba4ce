// Package recognize defines the text recognition capability used for image
// uploads and a Gemini-backed implementation of it.
package recognize

import (
	"context"
	"errors"
)

// DefaultLanguages are the hints for mixed traditional and simplified Chinese.
var DefaultLanguages = []string{"chi_tra", "chi_sim"}

// ErrEmptyResult is returned when the service answers with no text.
var ErrEmptyResult = errors.New("recognition returned no text")

// Recognizer turns image bytes into text. Implementations may fail; callers
// treat any error as a recoverable extraction failure.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte, mimeType string, hints []string) (string, error)
}

// Func adapts a function to the Recognizer interface.
type Func func(ctx context.Context, data []byte, mimeType string, hints []string) (string, error)

func (f Func) Recognize(ctx context.Context, data []byte, mimeType string, hints []string) (string, error) {
	return f(ctx, data, mimeType, hints)
}
