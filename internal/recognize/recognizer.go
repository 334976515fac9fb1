package recognize

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ironsheep/handwrite-mcp/internal/credential"
)

// Recognizer transcribes one line image.
type Recognizer interface {
	// Recognize returns the text in png, which may be empty.
	Recognize(ctx context.Context, png []byte) (string, error)
}

// Func adapts a plain function to Recognizer.
type Func func(ctx context.Context, png []byte) (string, error)

func (f Func) Recognize(ctx context.Context, png []byte) (string, error) {
	return f(ctx, png)
}

var (
	// ErrMissingCredential is credential.ErrMissing.
	ErrMissingCredential = credential.ErrMissing

	// ErrAPI is matched by every failed service call.
	ErrAPI = errors.New("recognition service error")

	// ErrNoTextDetected means the service answered without a transcription.
	ErrNoTextDetected = errors.New("no text detected")
)

// APIError is a non-2xx answer from the recognition service.
type APIError struct {
	StatusCode int
	Status     string

	// Message is the service's own error text, when it sent one.
	Message string
}

func (e *APIError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = e.Status
	}
	if e.Message != "" {
		return fmt.Sprintf("API request failed: %s - %s", text, e.Message)
	}
	return fmt.Sprintf("API request failed: %s", text)
}

// Is reports ErrAPI as a match.
func (e *APIError) Is(target error) bool { return target == ErrAPI }
