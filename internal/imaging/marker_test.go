package imaging

import (
	"image/color"
	"testing"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
)

func TestMarkerColor(t *testing.T) {
	tests := []struct {
		name  string
		under color.Color
		want  string
	}{
		{"on white", color.White, "#593aa1"},
		{"on black", color.Black, "#593aa1"},
		{"on accent", color.RGBA{0x59, 0x3A, 0xA1, 255}, "#ffffff"},
		{"on near accent", color.RGBA{0x5C, 0x3C, 0xA0, 255}, "#ffffff"},
		{"transparent", color.Transparent, "#593aa1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkerColor(tt.under).Hex(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderMarker(t *testing.T) {
	img := solidImage(100, 100, color.White)
	at := coords.Pixel{X: 50, Y: 50}

	out := RenderMarker(img, at, 10)

	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Fatalf("dimensions: got %v", out.Bounds())
	}

	// Center dot and ring carry the marker colour.
	for _, pt := range []coords.Pixel{{X: 50, Y: 50}, {X: 60, Y: 50}, {X: 50, Y: 40}} {
		r, g, b := rgb8(out.At(pt.X, pt.Y))
		if r != 0x59 || g != 0x3A || b != 0xA1 {
			t.Errorf("marker at %+v: got (%d,%d,%d)", pt, r, g, b)
		}
	}

	// Between dot and ring the image is untouched.
	if r, g, b := rgb8(out.At(54, 50)); r != 255 || g != 255 || b != 255 {
		t.Errorf("inside ring: got (%d,%d,%d), want white", r, g, b)
	}

	// The source is not modified.
	if r, _, _ := rgb8(img.At(50, 50)); r != 255 {
		t.Error("RenderMarker modified its input")
	}
}

func TestRenderMarker_NearEdge(t *testing.T) {
	img := solidImage(20, 20, color.Black)

	// Must not panic when the ring leaves the image.
	out := RenderMarker(img, coords.Pixel{X: 0, Y: 19}, 8)
	if out.Bounds().Dx() != 20 {
		t.Errorf("dimensions: got %v", out.Bounds())
	}
}
