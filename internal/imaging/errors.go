package imaging

import (
	"errors"
	"fmt"
)

// ErrInvalidImage is matched by every upload that fails type, size or
// decodability checks.
var ErrInvalidImage = errors.New("invalid image")

// ErrExtraction is matched by every failure to produce an ExtractedLine.
var ErrExtraction = errors.New("extraction failed")

// InvalidImageError describes why an upload was rejected.
type InvalidImageError struct {
	// Reason is the user-facing explanation, e.g. "File must be an image".
	Reason string

	// Err is the underlying decode or I/O error, if any.
	Err error
}

func (e *InvalidImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

// Is reports ErrInvalidImage as a match.
func (e *InvalidImageError) Is(target error) bool { return target == ErrInvalidImage }

// ExtractionError describes a region that could not be turned into a line
// image.
type ExtractionError struct {
	// RegionID identifies the rectangle being extracted. May be empty.
	RegionID string

	// Reason is a short description of the failing step.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *ExtractionError) Error() string {
	msg := "extraction failed"
	if e.RegionID != "" {
		msg += " for region " + e.RegionID
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is reports ErrExtraction as a match.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }
