package recognize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ironsheep/handwrite-mcp/internal/credential"
	"github.com/ironsheep/handwrite-mcp/internal/logging"
)

const (
	// DefaultEndpoint is the hosted TrOCR handwriting model.
	DefaultEndpoint = "https://api-inference.huggingface.co/models/microsoft/trocr-large-handwritten"

	// DefaultTimeout bounds a single recognition request.
	DefaultTimeout = 60 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Inference API request body.
type hfRequest struct {
	Inputs  string    `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel  bool            `json:"wait_for_model"`
	UseCache      bool            `json:"use_cache"`
	Preprocessing hfPreprocessing `json:"preprocessing"`
}

type hfPreprocessing struct {
	Resize    bool   `json:"resize"`
	Normalize bool   `json:"normalize"`
	Threshold string `json:"threshold"`
	Pad       bool   `json:"pad"`
}

type hfGeneration struct {
	GeneratedText *string `json:"generated_text"`
}

// HuggingFace is a Recognizer backed by the Hugging Face Inference API.
type HuggingFace struct {
	Endpoint    string
	Credentials credential.Store
	Client      *http.Client
	Logger      *slog.Logger
}

// NewHuggingFace returns a client for endpoint (DefaultEndpoint when empty)
// with the given per-request timeout (DefaultTimeout when zero).
func NewHuggingFace(endpoint string, creds credential.Store, timeout time.Duration, logger *slog.Logger) *HuggingFace {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HuggingFace{
		Endpoint:    endpoint,
		Credentials: creds,
		Client:      &http.Client{Timeout: timeout},
		Logger:      logging.OrDiscard(logger),
	}
}

// Recognize sends png to the model and returns the generated text.
func (h *HuggingFace) Recognize(ctx context.Context, png []byte) (string, error) {
	if h.Credentials == nil {
		return "", ErrMissingCredential
	}
	key, ok := h.Credentials.Get()
	if !ok {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(hfRequest{
		Inputs: base64.StdEncoding.EncodeToString(png),
		Options: hfOptions{
			WaitForModel: true,
			UseCache:     false,
			Preprocessing: hfPreprocessing{
				Resize:    true,
				Normalize: true,
				Threshold: "otsu",
				Pad:       true,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	logger := logging.OrDiscard(h.Logger)
	logger.Debug("sending recognition request", "endpoint", h.Endpoint, "bytes", len(png), "key", credential.Redact(key))

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: request aborted: %w", ErrAPI, ctxErr)
		}
		return "", fmt.Errorf("%w: %w", ErrAPI, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrAPI, err)
	}
	logger.Debug("recognition response", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(data),
		}
	}

	return parseGeneration(data)
}

// parseGeneration accepts either [{"generated_text": ...}] or
// {"generated_text": ...}.
func parseGeneration(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", ErrNoTextDetected
	}

	if trimmed[0] == '[' {
		var list []hfGeneration
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoTextDetected, err)
		}
		if len(list) == 0 || list[0].GeneratedText == nil {
			return "", ErrNoTextDetected
		}
		return *list[0].GeneratedText, nil
	}

	var single hfGeneration
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoTextDetected, err)
	}
	if single.GeneratedText == nil || *single.GeneratedText == "" {
		return "", ErrNoTextDetected
	}
	return *single.GeneratedText, nil
}

// errorMessage extracts the "error" field of an error body, falling back to
// the raw text.
func errorMessage(data []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && len(body.Error) > 0 {
		var s string
		if json.Unmarshal(body.Error, &s) == nil {
			return s
		}
		return string(body.Error)
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// IsTimeout reports whether err came from a request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
