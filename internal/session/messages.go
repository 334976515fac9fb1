package session

import (
	"errors"

	"github.com/ironsheep/handwrite-mcp/internal/credential"
	"github.com/ironsheep/handwrite-mcp/internal/imaging"
	"github.com/ironsheep/handwrite-mcp/internal/notes"
	"github.com/ironsheep/handwrite-mcp/internal/recognize"
)

// UserMessage turns an error from any session call into the single line
// shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var invalid *imaging.InvalidImageError
	var extraction *imaging.ExtractionError
	var apiErr *recognize.APIError

	switch {
	case errors.As(err, &invalid):
		return invalid.Reason
	case errors.Is(err, credential.ErrEmptyCredential):
		return "API key cannot be empty"
	case errors.Is(err, credential.ErrMissing):
		return "Please set your HuggingFace API key first"
	case errors.Is(err, ErrNoImage):
		return "Please upload an image first"
	case errors.Is(err, notes.ErrNoLines):
		return "Select at least one line of text before processing"
	case errors.Is(err, ErrLineIndex):
		return "No selected area with that number"
	case errors.As(err, &extraction):
		return "Failed to extract the selected area: " + extraction.Reason
	case recognize.IsTimeout(err):
		return "OCR processing failed: the recognition service timed out"
	case errors.As(err, &apiErr):
		return "OCR processing failed: " + apiErr.Error()
	case errors.Is(err, recognize.ErrNoTextDetected):
		return "OCR processing failed: No text was detected in the image"
	case errors.Is(err, recognize.ErrAPI):
		return "OCR processing failed: could not reach the recognition service"
	default:
		return "OCR processing failed: " + err.Error()
	}
}
