package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/handwrite-mcp/internal/geometry"
)

const (
	// DefaultPadding is the white border added around each extracted line.
	DefaultPadding = 10

	// DefaultMaxPixels bounds the size of a single line buffer.
	DefaultMaxPixels = 50_000_000
)

// ExtractOptions controls how a region is turned into a line image.
type ExtractOptions struct {
	// Padding is the white border, in output pixels, on every side.
	// Negative values select DefaultPadding; zero means no border.
	Padding int

	// Scale resamples the cropped region before padding. Zero selects 1.0.
	Scale float64

	// MaxPixels is the largest output buffer (width*height) that will be
	// allocated. Zero selects DefaultMaxPixels.
	MaxPixels int
}

// DefaultExtractOptions returns the standard extraction settings:
// 10px padding, no rescaling.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Padding: DefaultPadding, Scale: 1.0, MaxPixels: DefaultMaxPixels}
}

func (o ExtractOptions) withDefaults() ExtractOptions {
	if o.Padding < 0 {
		o.Padding = DefaultPadding
	}
	if o.Scale == 0 {
		o.Scale = 1.0
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	return o
}

// ExtractedLine is the enhanced, padded image of one selected region,
// ready to be sent for recognition.
type ExtractedLine struct {
	// RegionID is the ID of the rectangle this line was cut from.
	RegionID string `json:"region_id"`

	// Source is the region in source-image pixels, before clipping to the
	// image bounds.
	Source image.Rectangle `json:"-"`

	// Width and Height are the dimensions of Image, padding included.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Image is the grayscale, contrast-enhanced pixel buffer.
	Image *image.NRGBA `json:"-"`

	// PNG is Image encoded losslessly.
	PNG []byte `json:"-"`
}

// Extract crops the region r of src, pads it with white, and enhances its
// contrast.
//
// The steps are:
//  1. Map r from display-space to source pixels with geometry.ToSourceSpace.
//  2. Allocate a white buffer of the region size plus Padding on each side.
//  3. Draw the part of the region that lies inside src onto the buffer at
//     offset (Padding, Padding), compositing over the white background.
//     When Scale is not 1 the region is resampled with a Lanczos filter.
//  4. Apply EnhanceContrast.
//  5. Encode the result as PNG.
//
// Returns an *ExtractionError (matching ErrExtraction) if src is nil, the
// display geometry is invalid, the region maps to no source pixels, or the
// buffer would exceed MaxPixels.
func Extract(r geometry.Rect, src image.Image, d geometry.DisplayImage, opts ExtractOptions) (*ExtractedLine, error) {
	opts = opts.withDefaults()

	if src == nil {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "source image not loaded"}
	}
	if err := d.Validate(); err != nil {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "invalid display geometry", Err: err}
	}
	if opts.Scale < 0 || math.IsNaN(opts.Scale) || math.IsInf(opts.Scale, 0) {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "invalid scale"}
	}

	bounds := src.Bounds()
	region := geometry.ToSourceSpace(geometry.Normalize(r), d)
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "region maps to an empty source area"}
	}

	// Source-space coordinates are relative to the image origin.
	abs := region.Add(bounds.Min)
	visible := abs.Intersect(bounds)
	if visible.Empty() {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "region lies outside the image"}
	}

	contentW := scaled(region.Dx(), opts.Scale)
	contentH := scaled(region.Dy(), opts.Scale)
	outW := contentW + 2*opts.Padding
	outH := contentH + 2*opts.Padding
	if contentW <= 0 || contentH <= 0 {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "scaled region is empty"}
	}
	if int64(outW)*int64(outH) > int64(opts.MaxPixels) {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "output buffer too large"}
	}

	crop := imaging.Crop(src, visible)
	offX := visible.Min.X - abs.Min.X
	offY := visible.Min.Y - abs.Min.Y
	if opts.Scale != 1.0 {
		crop = imaging.Resize(crop, scaled(visible.Dx(), opts.Scale), scaled(visible.Dy(), opts.Scale), imaging.Lanczos)
		offX = int(math.Round(float64(offX) * opts.Scale))
		offY = int(math.Round(float64(offY) * opts.Scale))
	}

	canvas := imaging.New(outW, outH, color.White)
	out := imaging.Overlay(canvas, crop, image.Pt(opts.Padding+offX, opts.Padding+offY), 1.0)

	EnhanceContrast(out)

	data, err := EncodePNG(out)
	if err != nil {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "encoding failed", Err: err}
	}

	return &ExtractedLine{
		RegionID: r.ID,
		Source:   region,
		Width:    outW,
		Height:   outH,
		Image:    out,
		PNG:      data,
	}, nil
}

// scaled returns n*scale rounded to the nearest pixel, at least 1 for
// positive inputs.
func scaled(n int, scale float64) int {
	if scale == 1.0 {
		return n
	}
	v := int(math.Round(float64(n) * scale))
	if v < 1 && n > 0 && scale > 0 {
		v = 1
	}
	return v
}

// LineExtractor binds Extract to one loaded image so regions can be
// extracted as they are committed.
type LineExtractor struct {
	Source  image.Image
	Display geometry.DisplayImage
	Options ExtractOptions
}

// Extract extracts r from the bound image.
func (e *LineExtractor) Extract(r geometry.Rect) (*ExtractedLine, error) {
	if e == nil {
		return nil, &ExtractionError{RegionID: r.ID, Reason: "source image not loaded"}
	}
	return Extract(r, e.Source, e.Display, e.Options)
}
