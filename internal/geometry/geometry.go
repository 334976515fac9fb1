package geometry

import (
	"fmt"
	"image"
	"math"
)

// SelectionThreshold is the minimum extent, in display pixels, a drag must
// exceed on both axes before it is committed as a region.
const SelectionThreshold = 5.0

// Point is a position in display-space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a rectangle in display-space.
//
// X and Y locate the drag origin. While a drag is in progress Width and Height
// are measured from that origin and may be negative; after Normalize they are
// non-negative and X, Y is the top-left corner.
type Rect struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize returns the rectangle covering the same area as r with a
// top-left origin and non-negative extents. Normalize(Normalize(r)) equals
// Normalize(r).
func Normalize(r Rect) Rect {
	n := r
	if r.Width < 0 {
		n.X = r.X + r.Width
		n.Width = -r.Width
	}
	if r.Height < 0 {
		n.Y = r.Y + r.Height
		n.Height = -r.Height
	}
	return n
}

// PassesThreshold reports whether both extents of r exceed
// SelectionThreshold in absolute value.
func PassesThreshold(r Rect) bool {
	return math.Abs(r.Width) > SelectionThreshold && math.Abs(r.Height) > SelectionThreshold
}

// Contains reports whether p lies inside the normalized form of r.
// The left and top edges are inclusive, the right and bottom exclusive.
func (r Rect) Contains(p Point) bool {
	n := Normalize(r)
	return p.X >= n.X && p.X < n.X+n.Width && p.Y >= n.Y && p.Y < n.Y+n.Height
}

// Area returns the covered area in square display pixels.
func (r Rect) Area() float64 {
	return math.Abs(r.Width * r.Height)
}

// DisplayImage describes an image as rendered: its original pixel
// dimensions and the dimensions it occupies on screen.
type DisplayImage struct {
	SourceWidth   int     `json:"source_width"`
	SourceHeight  int     `json:"source_height"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

// FitWidth scales an image of srcW x srcH pixels to fill containerWidth,
// deriving the display height from the same factor so the aspect ratio is
// preserved.
func FitWidth(srcW, srcH int, containerWidth float64) (DisplayImage, error) {
	if srcW <= 0 || srcH <= 0 {
		return DisplayImage{}, fmt.Errorf("invalid source dimensions %dx%d", srcW, srcH)
	}
	if containerWidth <= 0 || math.IsNaN(containerWidth) || math.IsInf(containerWidth, 0) {
		return DisplayImage{}, fmt.Errorf("invalid container width %v", containerWidth)
	}
	scale := containerWidth / float64(srcW)
	return DisplayImage{
		SourceWidth:   srcW,
		SourceHeight:  srcH,
		DisplayWidth:  containerWidth,
		DisplayHeight: float64(srcH) * scale,
	}, nil
}

// Validate checks that both the source and display dimensions are positive.
func (d DisplayImage) Validate() error {
	if d.SourceWidth <= 0 || d.SourceHeight <= 0 {
		return fmt.Errorf("invalid source dimensions %dx%d", d.SourceWidth, d.SourceHeight)
	}
	if d.DisplayWidth <= 0 || d.DisplayHeight <= 0 {
		return fmt.Errorf("invalid display dimensions %vx%v", d.DisplayWidth, d.DisplayHeight)
	}
	return nil
}

// ScaleFactor returns the number of source pixels per display pixel.
func (d DisplayImage) ScaleFactor() float64 {
	if d.DisplayWidth == 0 {
		return 0
	}
	return float64(d.SourceWidth) / d.DisplayWidth
}

// Contains reports whether p lies on the displayed image.
func (d DisplayImage) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < d.DisplayWidth && p.Y < d.DisplayHeight
}

// Clamp limits p to the displayed image bounds.
func (d DisplayImage) Clamp(p Point) Point {
	return Point{
		X: math.Max(0, math.Min(p.X, d.DisplayWidth)),
		Y: math.Max(0, math.Min(p.Y, d.DisplayHeight)),
	}
}

// ToSourceSpace maps a normalized display-space rectangle to source pixels.
// Origin and extents are each multiplied by the scale factor and rounded to
// the nearest pixel independently, so the result width is round(w*s) rather
// than a difference of rounded edges.
func ToSourceSpace(r Rect, d DisplayImage) image.Rectangle {
	s := d.ScaleFactor()
	x := int(math.Round(r.X * s))
	y := int(math.Round(r.Y * s))
	w := int(math.Round(r.Width * s))
	h := int(math.Round(r.Height * s))
	return image.Rect(x, y, x+w, y+h)
}

// FromSourceSpace maps a source-space rectangle back to display-space. It is
// the inverse of ToSourceSpace up to one display pixel of rounding error.
func FromSourceSpace(r image.Rectangle, d DisplayImage) Rect {
	s := d.ScaleFactor()
	if s == 0 {
		return Rect{}
	}
	return Rect{
		X:      float64(r.Min.X) / s,
		Y:      float64(r.Min.Y) / s,
		Width:  float64(r.Dx()) / s,
		Height: float64(r.Dy()) / s,
	}
}
