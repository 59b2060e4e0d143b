package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
)

var testTime = time.UnixMilli(1700000000000)

func TestRasterize_OutputSizing(t *testing.T) {
	// scaleX = scaleY = 2, device pixel ratio 2.
	src := solidImage(400, 200, color.RGBA{255, 0, 0, 255})
	layout := coords.Layout{NaturalWidth: 400, NaturalHeight: 200, ClientWidth: 200, ClientHeight: 100}
	sel := coords.Rect{X: 10, Y: 10, Width: 100, Height: 50}

	result, err := Rasterize(src, layout, sel, 2, testTime)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	if result.Width != 200 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 200x100", result.Width, result.Height)
	}
	if want := image.Rect(20, 20, 220, 120); result.Source != want {
		t.Errorf("source: got %v, want %v", result.Source, want)
	}

	out := decodeArtifact(t, result.Artifact)
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 100 {
		t.Errorf("encoded dimensions: got %dx%d, want 200x100", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestRasterize_ArtifactMetadata(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{0, 0, 255, 255})
	layout := coords.Layout{NaturalWidth: 100, NaturalHeight: 100, ClientWidth: 100, ClientHeight: 100}

	result, err := Rasterize(src, layout, coords.Rect{X: 0, Y: 0, Width: 50, Height: 50}, 1, testTime)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	if result.Artifact.MIMEType != "image/png" {
		t.Errorf("MIMEType: got %s, want image/png", result.Artifact.MIMEType)
	}
	if result.Artifact.Name != "cropped-1700000000000.png" {
		t.Errorf("Name: got %s", result.Artifact.Name)
	}
	if !strings.HasPrefix(string(result.Artifact.Data[:8]), "\x89PNG") {
		t.Error("payload is not a PNG")
	}
}

func TestRasterize_RatioOne(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{0, 255, 0, 255})
	layout := coords.Layout{NaturalWidth: 100, NaturalHeight: 100, ClientWidth: 100, ClientHeight: 100}

	result, err := Rasterize(src, layout, coords.Rect{X: 10, Y: 20, Width: 30, Height: 40}, 1, testTime)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if result.Width != 30 || result.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 30x40", result.Width, result.Height)
	}
	if want := image.Rect(10, 20, 40, 60); result.Source != want {
		t.Errorf("source: got %v, want %v", result.Source, want)
	}
}

func TestRasterize_DownscaledDisplay(t *testing.T) {
	// Natural is 4x the client; ratio 1 means the output is smaller than
	// the sampled source.
	src := solidImage(800, 800, color.RGBA{10, 20, 30, 255})
	layout := coords.Layout{NaturalWidth: 800, NaturalHeight: 800, ClientWidth: 200, ClientHeight: 200}

	result, err := Rasterize(src, layout, coords.Rect{X: 0, Y: 0, Width: 50, Height: 25}, 1, testTime)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if result.Width != 50 || result.Height != 25 {
		t.Errorf("dimensions: got %dx%d, want 50x25", result.Width, result.Height)
	}
	if want := image.Rect(0, 0, 200, 100); result.Source != want {
		t.Errorf("source: got %v, want %v", result.Source, want)
	}
}

func TestRasterize_VerifyContent(t *testing.T) {
	src := quadrantImage(200, 200)
	layout := coords.Layout{NaturalWidth: 200, NaturalHeight: 200, ClientWidth: 100, ClientHeight: 100}

	tests := []struct {
		name    string
		sel     coords.Rect
		r, g, b uint8
	}{
		{"top-left red", coords.Rect{X: 5, Y: 5, Width: 40, Height: 40}, 255, 0, 0},
		{"top-right green", coords.Rect{X: 55, Y: 5, Width: 40, Height: 40}, 0, 255, 0},
		{"bottom-left blue", coords.Rect{X: 5, Y: 55, Width: 40, Height: 40}, 0, 0, 255},
		{"bottom-right white", coords.Rect{X: 55, Y: 55, Width: 40, Height: 40}, 255, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Rasterize(src, layout, tt.sel, 2, testTime)
			if err != nil {
				t.Fatalf("Rasterize failed: %v", err)
			}
			out := decodeArtifact(t, result.Artifact)
			r, g, b := rgb8(out.At(result.Width/2, result.Height/2))
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("center color: got (%d,%d,%d), want (%d,%d,%d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestRasterize_ClipsToBitmap(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name   string
		layout coords.Layout
		sel    coords.Rect
		ratio  float64
		size   int // output width and height
		inside image.Point
		beyond []image.Point
	}{
		{
			name:   "same scale",
			layout: coords.Layout{NaturalWidth: 100, NaturalHeight: 100, ClientWidth: 100, ClientHeight: 100},
			sel:    coords.Rect{X: 80, Y: 80, Width: 40, Height: 40},
			ratio:  1,
			size:   40,
			inside: image.Pt(10, 10),
			beyond: []image.Point{{35, 35}, {35, 10}, {10, 35}},
		},
		{
			name:   "half-size display, ratio 2",
			layout: coords.Layout{NaturalWidth: 100, NaturalHeight: 100, ClientWidth: 50, ClientHeight: 50},
			sel:    coords.Rect{X: 40, Y: 40, Width: 40, Height: 40},
			ratio:  2,
			size:   80,
			// Only x,y in [40,50) of the display lies on the bitmap: 20 output pixels.
			inside: image.Pt(19, 19),
			beyond: []image.Point{{21, 21}, {70, 5}, {5, 70}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Rasterize(src, tt.layout, tt.sel, tt.ratio, testTime)
			if err != nil {
				t.Fatalf("Rasterize failed: %v", err)
			}
			if want := image.Rect(80, 80, 100, 100); result.Source != want {
				t.Errorf("source: got %v, want %v", result.Source, want)
			}
			if result.Width != tt.size || result.Height != tt.size {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.size, tt.size)
			}

			out := decodeArtifact(t, result.Artifact)
			if got := color.NRGBAModel.Convert(out.At(tt.inside.X, tt.inside.Y)).(color.NRGBA); got != (color.NRGBA{255, 0, 0, 255}) {
				t.Errorf("pixel %v on the bitmap: got %v, want opaque red", tt.inside, got)
			}
			for _, p := range tt.beyond {
				if _, _, _, a := out.At(p.X, p.Y).RGBA(); a != 0 {
					t.Errorf("pixel %v beyond the bitmap: alpha %d, want transparent", p, a)
				}
			}
		})
	}
}

func TestRasterize_EmptySelection(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{255, 0, 0, 255})
	layout := coords.Layout{NaturalWidth: 100, NaturalHeight: 100, ClientWidth: 100, ClientHeight: 100}

	tests := []struct {
		name  string
		sel   coords.Rect
		ratio float64
	}{
		{"zero width", coords.Rect{X: 10, Y: 10, Width: 0, Height: 10}, 1},
		{"zero height", coords.Rect{X: 10, Y: 10, Width: 10, Height: 0}, 1},
		{"zero value", coords.Rect{}, 1},
		{"negative", coords.Rect{X: 10, Y: 10, Width: -5, Height: 10}, 1},
		{"sub-pixel output", coords.Rect{X: 10, Y: 10, Width: 0.2, Height: 0.2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rasterize(src, layout, tt.sel, tt.ratio, testTime)
			if !errors.Is(err, ErrEmptySelection) {
				t.Errorf("got %v, want ErrEmptySelection", err)
			}
		})
	}
}

func TestRasterize_RasterUnavailable(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{255, 0, 0, 255})
	layout := coords.Layout{NaturalWidth: 100, NaturalHeight: 100, ClientWidth: 100, ClientHeight: 100}
	sel := coords.Rect{X: 10, Y: 10, Width: 10, Height: 10}

	tests := []struct {
		name  string
		src   image.Image
		sel   coords.Rect
		ratio float64
	}{
		{"nil source", nil, sel, 1},
		{"zero ratio", src, sel, 0},
		{"negative ratio", src, sel, -2},
		{"NaN ratio", src, sel, math.NaN()},
		{"outside bitmap", src, coords.Rect{X: 200, Y: 200, Width: 10, Height: 10}, 1},
		{"huge ratio", src, coords.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 1e12},
		{"infinite ratio", src, sel, math.Inf(1)},
		{"too many pixels", src, coords.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rasterize(tt.src, layout, tt.sel, tt.ratio, testTime)
			if !errors.Is(err, ErrRasterUnavailable) {
				t.Errorf("got %v, want ErrRasterUnavailable", err)
			}
		})
	}
}

func TestRasterize_NotReady(t *testing.T) {
	src := solidImage(100, 100, color.RGBA{255, 0, 0, 255})
	layout := coords.Layout{NaturalWidth: 100, NaturalHeight: 100}

	_, err := Rasterize(src, layout, coords.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 1, testTime)
	if !errors.Is(err, coords.ErrNotReady) {
		t.Errorf("got %v, want coords.ErrNotReady", err)
	}
}

func TestAspect_Ratio(t *testing.T) {
	tests := []struct {
		aspect  Aspect
		want    float64
		wantErr bool
	}{
		{AspectFree, 0, false},
		{"", 0, false},
		{AspectSquare, 1, false},
		{AspectWide, 16.0 / 9.0, false},
		{"4:3", 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.aspect), func(t *testing.T) {
			got, err := tt.aspect.Ratio()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConstrainAspect(t *testing.T) {
	sel := coords.Rect{X: 5, Y: 5, Width: 160, Height: 40}

	if got := ConstrainAspect(sel, 0); got != sel {
		t.Errorf("free: got %+v, want unchanged", got)
	}
	if got := ConstrainAspect(sel, 1); got.Height != 160 || got.Width != 160 {
		t.Errorf("square: got %+v", got)
	}
	if got := ConstrainAspect(sel, 16.0/9.0); math.Abs(got.Height-90) > 1e-9 {
		t.Errorf("16:9 height: got %v, want 90", got.Height)
	}
}

func TestClampSelection(t *testing.T) {
	const eps = 1e-9

	tests := []struct {
		name  string
		sel   coords.Rect
		ratio float64
		want  coords.Rect
	}{
		{"inside is unchanged", coords.Rect{X: 10, Y: 10, Width: 100, Height: 50}, 0, coords.Rect{X: 10, Y: 10, Width: 100, Height: 50}},
		{"past the far edges", coords.Rect{X: 900, Y: 300, Width: 200, Height: 200}, 0, coords.Rect{X: 900, Y: 300, Width: 100, Height: 100}},
		{"before the near edges", coords.Rect{X: -20, Y: -10, Width: 100, Height: 50}, 0, coords.Rect{X: 0, Y: 0, Width: 80, Height: 40}},
		{"full-width 16:9 on a wide element", coords.Rect{X: 0, Y: 0, Width: 1000, Height: 400}, 16.0 / 9.0, coords.Rect{X: 0, Y: 0, Width: 400 * 16.0 / 9.0, Height: 400}},
		{"square past the right edge", coords.Rect{X: 950, Y: 0, Width: 100, Height: 10}, 1, coords.Rect{X: 950, Y: 0, Width: 50, Height: 50}},
		{"square past the bottom edge", coords.Rect{X: 0, Y: 350, Width: 100, Height: 10}, 1, coords.Rect{X: 0, Y: 350, Width: 50, Height: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampSelection(tt.sel, 1000, 400, tt.ratio)
			if math.Abs(got.X-tt.want.X) > eps || math.Abs(got.Y-tt.want.Y) > eps ||
				math.Abs(got.Width-tt.want.Width) > eps || math.Abs(got.Height-tt.want.Height) > eps {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.X+got.Width > 1000+eps || got.Y+got.Height > 400+eps {
				t.Errorf("%+v extends past the element", got)
			}
		})
	}
}
