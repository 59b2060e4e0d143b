package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
)

var (
	markerAccent, _ = colorful.Hex("#593AA1")
	markerWhite     = colorful.Color{R: 1, G: 1, B: 1}
)

// minMarkerContrast is the Lab distance below which the accent is swapped
// for white.
const minMarkerContrast = 0.35

// MarkerColor picks the hotspot marker colour for a pixel: the accent,
// unless the pixel is too close to it in Lab space.
func MarkerColor(under color.Color) colorful.Color {
	c, ok := colorful.MakeColor(under)
	if !ok {
		// Fully transparent pixel.
		return markerAccent
	}
	if c.DistanceLab(markerAccent) < minMarkerContrast {
		return markerWhite
	}
	return markerAccent
}

// RenderMarker returns a copy of img with a ring of the given radius
// centred on the natural pixel at.
func RenderMarker(img image.Image, at coords.Pixel, radius int) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	if radius < 2 {
		radius = 2
	}
	thickness := math.Max(2, float64(radius)/4)

	var under color.Color = color.Transparent
	if image.Pt(at.X, at.Y).In(out.Bounds()) {
		under = out.At(at.X, at.Y)
	}
	ring := MarkerColor(under)

	for y := at.Y - radius; y <= at.Y+radius; y++ {
		for x := at.X - radius; x <= at.X+radius; x++ {
			if !image.Pt(x, y).In(out.Bounds()) {
				continue
			}
			d := math.Hypot(float64(x-at.X), float64(y-at.Y))
			switch {
			case d <= 1:
				out.Set(x, y, ring)
			case d >= float64(radius)-thickness && d <= float64(radius):
				out.Set(x, y, ring)
			}
		}
	}

	return out
}
