package selector

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/handwrite-mcp/internal/geometry"
	himaging "github.com/ironsheep/handwrite-mcp/internal/imaging"
)

const (
	// DefaultBorderColor outlines selected regions.
	DefaultBorderColor = "#2563eb"

	// DefaultFailedColor outlines regions whose extraction failed.
	DefaultFailedColor = "#dc2626"

	// DefaultDimOpacity is the opacity of the image outside selections.
	DefaultDimOpacity = 0.3

	// DefaultBorderWidth is the stroke width of region borders in pixels.
	DefaultBorderWidth = 2
)

// RenderOptions controls how the canvas is drawn.
type RenderOptions struct {
	// DimOpacity is the opacity of the unselected image over Background.
	DimOpacity float64

	// Background shows through the dimmed image.
	Background color.Color

	BorderColor color.Color
	FailedColor color.Color
	BorderWidth int

	// ShowLabels numbers committed regions in commit order, starting at 1.
	ShowLabels bool

	// GridSpacing draws a coordinate grid when positive.
	GridSpacing int
	GridColor   color.Color
}

// DefaultRenderOptions returns the look of the selection canvas: image at
// 30% over white, selections at full brightness with a 2px blue border.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		DimOpacity:  DefaultDimOpacity,
		Background:  color.White,
		BorderColor: himaging.MustParseColor(DefaultBorderColor),
		FailedColor: himaging.MustParseColor(DefaultFailedColor),
		BorderWidth: DefaultBorderWidth,
		GridColor:   himaging.MustParseColor(himaging.DefaultGridColor),
	}
}

// Render draws src at display size with the given regions highlighted.
// inProgress, when non-nil, is drawn like a committed region and may have
// negative extents. Render does not modify its inputs.
func Render(src image.Image, d geometry.DisplayImage, regions []Region, inProgress *geometry.Rect, opts RenderOptions) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("no image loaded")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	defaults := DefaultRenderOptions()
	if opts.Background == nil {
		opts.Background = defaults.Background
	}
	if opts.BorderColor == nil {
		opts.BorderColor = defaults.BorderColor
	}
	if opts.FailedColor == nil {
		opts.FailedColor = defaults.FailedColor
	}
	if opts.GridColor == nil {
		opts.GridColor = defaults.GridColor
	}

	w := int(math.Round(d.DisplayWidth))
	h := int(math.Round(d.DisplayHeight))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("display size %dx%d is empty", w, h)
	}

	full := imaging.Resize(src, w, h, imaging.Lanczos)
	canvas := imaging.Overlay(imaging.New(w, h, opts.Background), full, image.Point{}, opts.DimOpacity)
	bounds := canvas.Bounds()

	highlight := func(r geometry.Rect, border color.Color) image.Rectangle {
		px := pixelRect(geometry.Normalize(r)).Intersect(bounds)
		if px.Empty() {
			return px
		}
		draw.Draw(canvas, px, full, px.Min, draw.Src)
		strokeRect(canvas, px, opts.BorderWidth, border)
		return px
	}

	for i, r := range regions {
		border := opts.BorderColor
		if r.Failed {
			border = opts.FailedColor
		}
		px := highlight(r.Rect, border)
		if opts.ShowLabels && !px.Empty() {
			himaging.DrawLabel(canvas, px.Min.X+3, px.Min.Y+3, strconv.Itoa(i+1), color.White, border)
		}
	}
	if inProgress != nil {
		highlight(*inProgress, opts.BorderColor)
	}

	if opts.GridSpacing > 0 {
		himaging.DrawGrid(canvas, opts.GridSpacing, opts.GridColor, false)
	}

	return canvas, nil
}

// pixelRect covers every display pixel the rectangle touches.
func pixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)),
		int(math.Ceil(r.Y+r.Height)),
	)
}

// strokeRect draws a border of the given width centered on the edges of r.
func strokeRect(img draw.Image, r image.Rectangle, width int, c color.Color) {
	if width <= 0 {
		return
	}
	in := width / 2
	out := width - in
	outer := image.Rect(r.Min.X-out, r.Min.Y-out, r.Max.X+out, r.Max.Y+out)
	inner := image.Rect(r.Min.X+in, r.Min.Y+in, r.Max.X-in, r.Max.Y-in)
	src := image.NewUniform(c)
	for _, band := range []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y), // top
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y), // bottom
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), // left
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y), // right
	} {
		draw.Draw(img, band.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
	}
}
