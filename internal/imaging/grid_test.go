package imaging

import (
	"image/color"
	"testing"
)

func TestGridOverlay(t *testing.T) {
	img := solidImage(100, 100, color.RGBA{128, 128, 128, 255})

	result, err := GridOverlay(img, GridOptions{Spacing: 25, Color: "#FF0000"})
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	if result.Bounds().Dx() != 100 || result.Bounds().Dy() != 100 {
		t.Errorf("dimensions: got %v, want 100x100", result.Bounds())
	}
}

func TestGridOverlay_GridLines(t *testing.T) {
	img := solidImage(100, 100, color.RGBA{0, 0, 0, 255})

	result, err := GridOverlay(img, GridOptions{Spacing: 25, Color: "#FF0000"})
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	for _, pt := range [][2]int{{25, 50}, {50, 10}, {75, 99}, {10, 25}, {60, 75}} {
		r, g, b := rgb8(result.At(pt[0], pt[1]))
		if r != 255 || g != 0 || b != 0 {
			t.Errorf("grid line at (%d,%d): got (%d,%d,%d), want (255,0,0)", pt[0], pt[1], r, g, b)
		}
	}

	r, g, b := rgb8(result.At(15, 15))
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("background at (15,15): got (%d,%d,%d), want (0,0,0)", r, g, b)
	}
}

func TestGridOverlay_Opacity(t *testing.T) {
	img := solidImage(50, 50, color.RGBA{0, 0, 0, 255})

	result, err := GridOverlay(img, GridOptions{Spacing: 10, Color: "#FFFFFF", Opacity: 0.5})
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	r, _, _ := rgb8(result.At(10, 5))
	if r < 120 || r > 135 {
		t.Errorf("half-opaque white over black: got r=%d, want ~128", r)
	}
}

func TestGridOverlay_WithCoordinates(t *testing.T) {
	img := solidImage(100, 100, color.RGBA{255, 255, 255, 255})

	result, err := GridOverlay(img, GridOptions{Spacing: 50, ShowCoordinates: true})
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	// The label background sits just inside the intersection.
	r, g, b := rgb8(result.At(51, 51))
	if r == 255 && g == 255 && b == 255 {
		t.Error("expected a label at (51,51)")
	}
}

func TestGridOverlay_InvalidOptions(t *testing.T) {
	img := solidImage(10, 10, color.White)

	tests := []struct {
		name string
		opts GridOptions
	}{
		{"zero spacing", GridOptions{Spacing: 0}},
		{"negative spacing", GridOptions{Spacing: -5}},
		{"bad color", GridOptions{Spacing: 5, Color: "not-a-color"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GridOverlay(img, tt.opts); err == nil {
				t.Error("GridOverlay should fail")
			}
		})
	}
}
