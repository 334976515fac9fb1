package selector

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/handwrite-mcp/internal/geometry"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

var renderDisplay = geometry.DisplayImage{
	SourceWidth: 100, SourceHeight: 60,
	DisplayWidth: 100, DisplayHeight: 60,
}

func TestRender_DimsAndHighlights(t *testing.T) {
	src := solidImage(100, 60, color.NRGBA{0, 0, 0, 255})
	regions := []Region{{Rect: geometry.Rect{ID: "a", X: 20, Y: 20, Width: 40, Height: 20}}}

	out, err := Render(src, renderDisplay, regions, nil, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Fatalf("size: got %dx%d, want 100x60", b.Dx(), b.Dy())
	}

	// Black at 30% over white: 255 * 0.7
	if c := out.NRGBAAt(5, 5); !near(c.R, 178, 1) || c.A != 255 {
		t.Errorf("dimmed pixel: got %v, want about 178", c)
	}
	// Inside the selection the image is at full strength
	if c := out.NRGBAAt(40, 30); !near(c.R, 0, 1) {
		t.Errorf("highlighted pixel: got %v, want black", c)
	}
	// Border straddles the left edge at x=20
	border := color.NRGBA{0x25, 0x63, 0xeb, 255}
	for _, x := range []int{19, 20} {
		if c := out.NRGBAAt(x, 30); c != border {
			t.Errorf("border at x=%d: got %v, want %v", x, c, border)
		}
	}
	if c := out.NRGBAAt(21, 30); c == border {
		t.Errorf("border should be 2px wide, found it at x=21")
	}
}

func TestRender_InProgressNegativeExtent(t *testing.T) {
	src := solidImage(100, 60, color.NRGBA{0, 0, 0, 255})
	drag := &geometry.Rect{X: 80, Y: 50, Width: -30, Height: -20}

	out, err := Render(src, renderDisplay, nil, drag, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c := out.NRGBAAt(65, 40); !near(c.R, 0, 1) {
		t.Errorf("in-progress area: got %v, want black", c)
	}
	if c := out.NRGBAAt(85, 40); near(c.R, 0, 1) {
		t.Errorf("outside in-progress area should be dimmed, got %v", c)
	}
}

func TestRender_FailedRegionColor(t *testing.T) {
	src := solidImage(100, 60, color.NRGBA{255, 255, 255, 255})
	regions := []Region{{Rect: geometry.Rect{X: 10, Y: 10, Width: 30, Height: 30}, Failed: true}}

	out, err := Render(src, renderDisplay, regions, nil, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c := out.NRGBAAt(10, 25); c != (color.NRGBA{0xdc, 0x26, 0x26, 255}) {
		t.Errorf("failed border: got %v", c)
	}
}

func TestRender_ScalesToDisplay(t *testing.T) {
	src := solidImage(400, 200, color.NRGBA{50, 100, 150, 255})
	d, err := geometry.FitWidth(400, 200, 100)
	if err != nil {
		t.Fatalf("FitWidth failed: %v", err)
	}

	out, err := Render(src, d, []Region{{Rect: geometry.Rect{X: 0, Y: 0, Width: 100, Height: 50}}}, nil, RenderOptions{BorderWidth: 0, DimOpacity: 0.3})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("size: got %dx%d, want 100x50", b.Dx(), b.Dy())
	}
	if c := out.NRGBAAt(50, 25); !near(c.R, 50, 2) || !near(c.G, 100, 2) || !near(c.B, 150, 2) {
		t.Errorf("resampled pixel: got %v, want about (50,100,150)", c)
	}
}

func TestRender_LabelsAndGrid(t *testing.T) {
	src := solidImage(100, 60, color.NRGBA{0, 0, 0, 255})
	regions := []Region{{Rect: geometry.Rect{X: 10, Y: 10, Width: 60, Height: 30}}}

	plain, err := Render(src, renderDisplay, regions, nil, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	opts := DefaultRenderOptions()
	opts.ShowLabels = true
	labelled, err := Render(src, renderDisplay, regions, nil, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c := labelled.NRGBAAt(12, 12); c != (color.NRGBA{0x25, 0x63, 0xeb, 255}) {
		t.Errorf("label box: got %v, want border color", c)
	}

	opts = DefaultRenderOptions()
	opts.GridSpacing = 25
	opts.GridColor = color.NRGBA{0, 255, 0, 255}
	gridded, err := Render(src, renderDisplay, regions, nil, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c := gridded.NRGBAAt(50, 5); c != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("grid line: got %v, want green", c)
	}
	if plain.NRGBAAt(50, 5) == gridded.NRGBAAt(50, 5) {
		t.Error("grid did not change the canvas")
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := Render(nil, renderDisplay, nil, nil, DefaultRenderOptions()); err == nil {
		t.Error("Render without an image should fail")
	}
	src := solidImage(10, 10, color.NRGBA{0, 0, 0, 255})
	if _, err := Render(src, geometry.DisplayImage{}, nil, nil, DefaultRenderOptions()); err == nil {
		t.Error("Render with an invalid display should fail")
	}
}
