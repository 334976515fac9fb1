package recognize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Tesseract is a Recognizer backed by the local Tesseract engine. It keeps
// one gosseract client and serializes calls to it.
type Tesseract struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
}

// NewTesseract starts a Tesseract client for language (DefaultLanguage when
// empty). The caller must Close it.
func NewTesseract(language string) (*Tesseract, error) {
	if language == "" {
		language = DefaultLanguage
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	// Each line image holds a single line of text.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Tesseract{client: client, language: language}, nil
}

// Language returns the configured language code.
func (t *Tesseract) Language() string { return t.language }

// Recognize runs OCR on png. The context is checked before the engine
// starts; a running recognition cannot be interrupted.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return "", fmt.Errorf("tesseract client is closed")
	}
	if err := t.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoTextDetected
	}
	return text, nil
}

// Version returns the version of the linked Tesseract library.
func (t *Tesseract) Version() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return ""
	}
	return t.client.Version()
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}
