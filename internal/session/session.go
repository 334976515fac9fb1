// Package session holds the state of one interactive selection session:
// the loaded image, its display geometry, the regions drawn on it, and the
// notes produced from them.
//
// All methods are safe for concurrent use; calls are serialized.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/ironsheep/handwrite-mcp/internal/geometry"
	"github.com/ironsheep/handwrite-mcp/internal/imaging"
	"github.com/ironsheep/handwrite-mcp/internal/logging"
	"github.com/ironsheep/handwrite-mcp/internal/notes"
	"github.com/ironsheep/handwrite-mcp/internal/selector"
)

// DefaultContainerWidth is the display width used when a load does not
// name one.
const DefaultContainerWidth = 800

var (
	// ErrNoImage is returned by selection and processing calls before an
	// image is loaded.
	ErrNoImage = errors.New("no image loaded")

	// ErrLineIndex is returned for a line preview index out of range.
	ErrLineIndex = errors.New("line index out of range")
)

// Options configures a Session.
type Options struct {
	// ContainerWidth is the default display width.
	ContainerWidth float64

	// MaxUploadBytes bounds uploads and loaded files. Zero selects
	// imaging.DefaultMaxUploadBytes.
	MaxUploadBytes int64

	Extract imaging.ExtractOptions
	Logger  *slog.Logger
}

// ImageInfo describes the loaded image.
type ImageInfo struct {
	Name          string  `json:"name"`
	Format        string  `json:"format"`
	SizeBytes     int64   `json:"size_bytes"`
	SourceWidth   int     `json:"source_width"`
	SourceHeight  int     `json:"source_height"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
	ScaleFactor   float64 `json:"scale_factor"`
}

// ProcessResult is the outcome of a successful processing run.
type ProcessResult struct {
	Note *notes.Note `json:"note"`

	// Skipped counts selected regions left out because their extraction
	// failed.
	Skipped int `json:"skipped"`
}

// Session is a single-user selection session.
type Session struct {
	mu       sync.Mutex
	opts     Options
	logger   *slog.Logger
	cache    *imaging.ImageCache
	pipeline *notes.Pipeline

	info     *ImageInfo
	source   image.Image
	display  geometry.DisplayImage
	selector *selector.Selector
}

// New returns an empty session that processes lines with pipeline.
func New(pipeline *notes.Pipeline, opts Options) *Session {
	if opts.ContainerWidth <= 0 {
		opts.ContainerWidth = DefaultContainerWidth
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = imaging.DefaultMaxUploadBytes
	}
	if opts.Extract == (imaging.ExtractOptions{}) {
		opts.Extract = imaging.DefaultExtractOptions()
	}
	if pipeline == nil {
		pipeline = &notes.Pipeline{}
	}
	if pipeline.Collection == nil {
		pipeline.Collection = notes.NewCollection()
	}
	logger := logging.OrDiscard(opts.Logger)
	return &Session{
		opts:     opts,
		logger:   logger,
		cache:    imaging.NewImageCache(opts.MaxUploadBytes),
		pipeline: pipeline,
	}
}

// LoadUpload validates and decodes an uploaded image and makes it current.
// Any previous selection is discarded.
func (s *Session) LoadUpload(u imaging.Upload, containerWidth float64) (*ImageInfo, error) {
	decoded, err := imaging.DecodeUpload(u, s.opts.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setImage(u.Name, decoded, containerWidth)
}

// LoadFile loads the image at path through the image cache and makes it
// current. reload drops any cached copy first.
func (s *Session) LoadFile(path string, containerWidth float64, reload bool) (*ImageInfo, error) {
	if reload {
		s.cache.Evict(path)
	}
	decoded, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setImage(filepath.Base(path), decoded, containerWidth)
}

func (s *Session) setImage(name string, decoded *imaging.DecodedImage, containerWidth float64) (*ImageInfo, error) {
	if containerWidth <= 0 {
		containerWidth = s.opts.ContainerWidth
	}
	b := decoded.Image.Bounds()
	display, err := geometry.FitWidth(b.Dx(), b.Dy(), containerWidth)
	if err != nil {
		return nil, &imaging.InvalidImageError{Reason: "Invalid image file", Err: err}
	}

	extractor := &imaging.LineExtractor{
		Source:  decoded.Image,
		Display: display,
		Options: s.opts.Extract,
	}

	s.source = decoded.Image
	s.display = display
	s.selector = selector.New(display, extractor, selector.WithLogger(s.logger))
	s.info = &ImageInfo{
		Name:          name,
		Format:        decoded.Format,
		SizeBytes:     decoded.Size,
		SourceWidth:   display.SourceWidth,
		SourceHeight:  display.SourceHeight,
		DisplayWidth:  display.DisplayWidth,
		DisplayHeight: display.DisplayHeight,
		ScaleFactor:   display.ScaleFactor(),
	}

	s.logger.Info("image loaded",
		"name", name,
		"format", decoded.Format,
		"source", fmt.Sprintf("%dx%d", display.SourceWidth, display.SourceHeight),
		"display", fmt.Sprintf("%.0fx%.0f", display.DisplayWidth, display.DisplayHeight))

	info := *s.info
	return &info, nil
}

// Info returns the loaded image description.
func (s *Session) Info() (*ImageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, ErrNoImage
	}
	info := *s.info
	return &info, nil
}

func (s *Session) withSelector(fn func(sel *selector.Selector)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selector == nil {
		return ErrNoImage
	}
	fn(s.selector)
	return nil
}

// PointerDown starts a drag. The bool reports whether the press was
// accepted.
func (s *Session) PointerDown(p geometry.Point) (bool, error) {
	var ok bool
	err := s.withSelector(func(sel *selector.Selector) { ok = sel.PointerDown(p) })
	return ok, err
}

// PointerMove stretches the current drag.
func (s *Session) PointerMove(p geometry.Point) (bool, error) {
	var ok bool
	err := s.withSelector(func(sel *selector.Selector) { ok = sel.PointerMove(p) })
	return ok, err
}

// PointerUp finishes the current drag. The error is the extraction
// failure of a committed region, if any.
func (s *Session) PointerUp(p geometry.Point) (selector.Commit, error) {
	var c selector.Commit
	if err := s.withSelector(func(sel *selector.Selector) { c = sel.PointerUp(p) }); err != nil {
		return c, err
	}
	return c, c.Err
}

// PointerLeave finishes the current drag where the pointer left the image.
func (s *Session) PointerLeave() (selector.Commit, error) {
	var c selector.Commit
	if err := s.withSelector(func(sel *selector.Selector) { c = sel.PointerLeave() }); err != nil {
		return c, err
	}
	return c, c.Err
}

// Draw performs a complete drag from one point to another.
func (s *Session) Draw(from, to geometry.Point) (selector.Commit, error) {
	var c selector.Commit
	err := s.withSelector(func(sel *selector.Selector) {
		if !sel.PointerDown(from) {
			return
		}
		sel.PointerMove(to)
		c = sel.PointerUp(to)
	})
	if err != nil {
		return c, err
	}
	return c, c.Err
}

// Regions returns the committed regions in selection order.
func (s *Session) Regions() ([]selector.Region, error) {
	var regions []selector.Region
	err := s.withSelector(func(sel *selector.Selector) { regions = sel.Regions() })
	return regions, err
}

// Lines returns the extracted lines in selection order.
func (s *Session) Lines() ([]*imaging.ExtractedLine, error) {
	var lines []*imaging.ExtractedLine
	err := s.withSelector(func(sel *selector.Selector) { lines = sel.Lines() })
	return lines, err
}

// Line returns the extracted line of the index-th region, counting from 1.
func (s *Session) Line(index int) (*imaging.ExtractedLine, error) {
	var (
		line   *imaging.ExtractedLine
		region selector.Region
		found  bool
	)
	err := s.withSelector(func(sel *selector.Selector) {
		regions := sel.Regions()
		if index >= 1 && index <= len(regions) {
			region, found = regions[index-1], true
			line = region.Line
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrLineIndex, index)
	}
	if line == nil {
		return nil, region.Err
	}
	return line, nil
}

// Clear removes every selected region.
func (s *Session) Clear() error {
	return s.withSelector(func(sel *selector.Selector) { sel.ClearAll() })
}

// Render draws the selection canvas.
func (s *Session) Render(opts selector.RenderOptions) (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selector == nil {
		return nil, ErrNoImage
	}
	var inProgress *geometry.Rect
	if r, ok := s.selector.InProgress(); ok {
		inProgress = &r
	}
	return selector.Render(s.source, s.display, s.selector.Regions(), inProgress, opts)
}

// Process recognizes the selected lines and records a note.
func (s *Session) Process(ctx context.Context) (*ProcessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selector == nil {
		return nil, ErrNoImage
	}

	lines := s.selector.Lines()
	skipped := s.selector.Failed()
	if skipped > 0 {
		s.logger.Warn("skipping regions with failed extraction", "count", skipped)
	}

	note, err := s.pipeline.Process(ctx, lines)
	if err != nil {
		return nil, err
	}
	return &ProcessResult{Note: note, Skipped: skipped}, nil
}

// Notes returns every note, most recent first.
func (s *Session) Notes() []*notes.Note {
	return s.pipeline.Collection.List()
}
