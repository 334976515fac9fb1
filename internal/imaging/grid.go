package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultGridColor is a semi-transparent red.
const DefaultGridColor = "#FF000080"

// DrawGrid overlays a coordinate grid on img in place. Lines are drawn every
// spacing pixels and alpha-blended over the existing content. When
// showCoordinates is set, each intersection is labelled "x,y".
func DrawGrid(img draw.Image, spacing int, gridColor color.Color, showCoordinates bool) {
	if spacing <= 0 {
		return
	}
	bounds := img.Bounds()
	src := image.NewUniform(gridColor)

	// Vertical lines
	for x := bounds.Min.X + spacing; x < bounds.Max.X; x += spacing {
		draw.Draw(img, image.Rect(x, bounds.Min.Y, x+1, bounds.Max.Y), src, image.Point{}, draw.Over)
	}

	// Horizontal lines
	for y := bounds.Min.Y + spacing; y < bounds.Max.Y; y += spacing {
		draw.Draw(img, image.Rect(bounds.Min.X, y, bounds.Max.X, y+1), src, image.Point{}, draw.Over)
	}

	if showCoordinates {
		fg := color.White
		bg := color.NRGBA{0, 0, 0, 180}
		for y := spacing; y < bounds.Dy(); y += spacing {
			for x := spacing; x < bounds.Dx(); x += spacing {
				DrawLabel(img, bounds.Min.X+x+2, bounds.Min.Y+y+2, fmt.Sprintf("%d,%d", x, y), fg, bg)
			}
		}
	}
}

// DrawLabel draws text with its top-left corner at (x, y) on a filled
// background box, using the 7x13 basic bitmap font. Parts falling outside
// img are clipped.
func DrawLabel(img draw.Image, x, y int, text string, fg, bg color.Color) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	box := image.Rect(x-1, y-1, x+width+1, y+height+1).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + metrics.Ascent},
	}
	d.DrawString(text)
}
