package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironsheep/handwrite-mcp/internal/credential"
	"github.com/ironsheep/handwrite-mcp/internal/imaging"
	"github.com/ironsheep/handwrite-mcp/internal/logging"
	"github.com/ironsheep/handwrite-mcp/internal/recognize"
)

// DefaultTimeout bounds each recognition call.
const DefaultTimeout = 60 * time.Second

var (
	// ErrNoLines is returned when there is nothing to process.
	ErrNoLines = errors.New("no lines selected")

	// ErrMissingCredential is credential.ErrMissing.
	ErrMissingCredential = credential.ErrMissing
)

// LineError reports which line stopped a run.
type LineError struct {
	// Index is 1-based, in selection order.
	Index  int
	Region string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Index, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Pipeline recognizes lines and records the resulting notes.
type Pipeline struct {
	Recognizer recognize.Recognizer

	// Credentials, when set, must hold a key before any line is sent.
	Credentials credential.Store

	Collection *Collection

	// Timeout bounds each recognition call. Zero selects DefaultTimeout.
	Timeout time.Duration

	// Clock stamps new notes. Nil selects time.Now.
	Clock func() time.Time

	Logger *slog.Logger
}

// Process recognizes lines in order and adds the assembled note to the
// collection.
//
// A line with no detectable text contributes an empty line. Any other
// recognition error stops the run, wrapped in a *LineError, and no note
// is created.
func (p *Pipeline) Process(ctx context.Context, lines []*imaging.ExtractedLine) (*Note, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	if p.Recognizer == nil {
		return nil, fmt.Errorf("no recognizer configured")
	}
	if p.Credentials != nil {
		if _, ok := p.Credentials.Get(); !ok {
			return nil, ErrMissingCredential
		}
	}

	logger := logging.OrDiscard(p.Logger)
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	texts := make([]string, 0, len(lines))
	for i, line := range lines {
		var region string
		if line != nil {
			region = line.RegionID
		}
		if err := ctx.Err(); err != nil {
			return nil, &LineError{Index: i + 1, Region: region, Err: err}
		}

		text, err := p.recognize(ctx, line, timeout)
		switch {
		case err == nil:
		case errors.Is(err, recognize.ErrNoTextDetected):
			logger.Warn("no text detected", "line", i+1, "region", region)
			text = ""
		default:
			logger.Error("recognition failed", "line", i+1, "region", region, "error", err)
			return nil, &LineError{Index: i + 1, Region: region, Err: err}
		}
		logger.Debug("line recognized", "line", i+1, "chars", len(text))
		texts = append(texts, text)
	}

	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	if p.Collection == nil {
		p.Collection = NewCollection()
	}

	note := newNote(p.Collection.NextTitle(), texts, clock())
	p.Collection.Add(note)
	logger.Info("note created", "id", note.ID, "title", note.Title, "lines", len(texts))
	return note, nil
}

func (p *Pipeline) recognize(ctx context.Context, line *imaging.ExtractedLine, timeout time.Duration) (string, error) {
	if line == nil || len(line.PNG) == 0 {
		return "", &imaging.ExtractionError{Reason: "line has no image data"}
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Recognizer.Recognize(callCtx, line.PNG)
}
