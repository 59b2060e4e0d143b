package imaging

import (
	"image/color"
	"testing"
)

func TestCompare_Identical(t *testing.T) {
	img := quadrantImage(40, 40)

	result := Compare(img, img)

	if result.ChangedPercent != 0 {
		t.Errorf("ChangedPercent: got %v, want 0", result.ChangedPercent)
	}
	if result.Resized {
		t.Error("same-size images must not be resized")
	}
	if r, g, b := rgb8(result.Diff.At(5, 5)); r != 0 || g != 0 || b != 0 {
		t.Errorf("diff of identical pixels: got (%d,%d,%d)", r, g, b)
	}
}

func TestCompare_HalfChanged(t *testing.T) {
	origin := solidImage(40, 40, color.RGBA{255, 0, 0, 255})
	current := solidImage(40, 40, color.RGBA{255, 0, 0, 255})
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			current.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}

	result := Compare(origin, current)

	if result.ChangedPercent < 49 || result.ChangedPercent > 51 {
		t.Errorf("ChangedPercent: got %v, want ~50", result.ChangedPercent)
	}
	if r, _, b := rgb8(result.Diff.At(5, 5)); r != 255 || b != 255 {
		t.Errorf("diff of red vs blue: got r=%d b=%d", r, b)
	}
}

func TestCompare_ResizesCurrent(t *testing.T) {
	origin := solidImage(80, 40, color.White)
	current := solidImage(20, 10, color.White)

	result := Compare(origin, current)

	if !result.Resized {
		t.Error("expected Resized")
	}
	if result.Diff.Bounds().Dx() != 80 || result.Diff.Bounds().Dy() != 40 {
		t.Errorf("diff size: got %v, want 80x40", result.Diff.Bounds())
	}
	if result.ChangedPercent != 0 {
		t.Errorf("ChangedPercent: got %v, want 0", result.ChangedPercent)
	}
}
