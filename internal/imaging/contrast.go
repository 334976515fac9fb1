package imaging

import (
	"image"
)

// EnhanceContrast converts img to grayscale and stretches contrast in place.
//
// For every pixel the luminance is the plain channel average
// avg = (R+G+B)/3, and the new gray level is
//
//	clamp(0, 255, (avg - 128) * 1.5 + 128)
//
// written to R, G and B. Alpha is left untouched. Values are
// non-premultiplied, so the result depends only on the input pixel.
func EnhanceContrast(img *image.NRGBA) {
	if img == nil {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.Pix[i : i+4 : i+4]
			v := ContrastValue(p[0], p[1], p[2])
			p[0], p[1], p[2] = v, v, v
			i += 4
		}
	}
}

// ContrastValue returns the enhanced gray level for one RGB triple.
//
// (avg-128)*1.5+128 with avg = sum/3 reduces to (sum-128)/2, so the value
// is evaluated exactly in integers. A result ending in .5 rounds half to
// even, the rounding a canvas byte buffer applies on store.
func ContrastValue(r, g, b uint8) uint8 {
	n := int(r) + int(g) + int(b) - 128
	if n <= 0 {
		return 0
	}
	if n >= 510 {
		return 255
	}
	v := n / 2
	if n%2 == 1 && v%2 == 1 {
		v++
	}
	return uint8(v)
}
