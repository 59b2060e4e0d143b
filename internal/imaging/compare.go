package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/transform"
)

// CompareResult is the difference between the origin and the current
// version.
type CompareResult struct {
	// Diff is the per-channel absolute difference, sized like the origin.
	Diff *image.RGBA

	// ChangedPercent is the share of pixels whose colour differs by more
	// than the noise threshold, 0-100.
	ChangedPercent float64

	// Resized is true when current had to be resampled to the origin size
	// (for example after a crop).
	Resized bool
}

// changeThreshold is the summed 8-bit RGB difference above which a pixel
// counts as changed. It absorbs re-encoding noise.
const changeThreshold = 24

// Compare diffs current against origin.
func Compare(origin, current image.Image) *CompareResult {
	ob := origin.Bounds()
	cb := current.Bounds()

	resized := false
	if cb.Dx() != ob.Dx() || cb.Dy() != ob.Dy() {
		current = transform.Resize(current, ob.Dx(), ob.Dy(), transform.Linear)
		resized = true
	}

	diff := blend.Difference(origin, current)

	changed := 0
	total := 0
	b := diff.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := diff.PixOffset(x, y)
			sum := int(diff.Pix[i]) + int(diff.Pix[i+1]) + int(diff.Pix[i+2])
			if sum > changeThreshold {
				changed++
			}
			total++
		}
	}

	pct := 0.0
	if total > 0 {
		pct = float64(changed) / float64(total) * 100
	}

	return &CompareResult{
		Diff:           diff,
		ChangedPercent: pct,
		Resized:        resized,
	}
}
