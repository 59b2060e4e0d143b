package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
)

var (
	// ErrEmptySelection is returned when there is no selection or it has
	// no area.
	ErrEmptySelection = errors.New("empty crop selection")

	// ErrRasterUnavailable is returned when there is no bitmap to draw
	// the selection from.
	ErrRasterUnavailable = errors.New("raster unavailable")
)

// CropResult is the outcome of rasterizing a crop selection.
type CropResult struct {
	Artifact *Artifact

	// Source is the natural-space rectangle that was sampled.
	Source image.Rectangle

	// Width and Height are the output pixel dimensions.
	Width  int
	Height int
}

// MaxOutputPixels bounds the pixel count of a rasterized crop.
const MaxOutputPixels = 64 << 20

// Rasterize renders the display-space selection sel of src into a new PNG
// artifact.
//
// Parameters:
//   - src: The decoded bitmap of the current artifact.
//   - layout: Natural and client sizes of the rendered element.
//   - sel: The selection in display space.
//   - ratio: The client's device pixel ratio (1 on standard displays).
//   - at: Timestamp used in the generated artifact name.
//
// # Algorithm
//
//  1. scaleX = naturalWidth/clientWidth, scaleY = naturalHeight/clientHeight
//  2. Source rectangle in natural space: (x*scaleX, y*scaleY, w*scaleX, h*scaleY)
//  3. Output canvas sized (w*ratio, h*ratio), fully transparent
//  4. The part of the source rectangle inside the bitmap is cropped,
//     resampled (Lanczos) by output/source and drawn at its offset
//  5. The output is encoded as PNG
//
// Parts of the selection beyond the bitmap stay transparent; nothing is
// stretched to fill them. A selection lying entirely outside the bitmap, or
// one whose output would exceed MaxOutputPixels, returns
// ErrRasterUnavailable.
func Rasterize(src image.Image, layout coords.Layout, sel coords.Rect, ratio float64, at time.Time) (*CropResult, error) {
	if sel.Empty() {
		return nil, ErrEmptySelection
	}
	if src == nil {
		return nil, ErrRasterUnavailable
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, fmt.Errorf("%w: invalid device pixel ratio %v", ErrRasterUnavailable, ratio)
	}

	// Checked in floating point so huge ratios cannot overflow int.
	fw, fh := sel.Width*ratio, sel.Height*ratio
	if fw*fh > MaxOutputPixels {
		return nil, fmt.Errorf("%w: output of %.0fx%.0f pixels is too large", ErrRasterUnavailable, fw, fh)
	}
	width, height := round(fw), round(fh)
	if width < 1 || height < 1 {
		return nil, ErrEmptySelection
	}

	nr, err := layout.RectToNatural(sel)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	source := image.Rect(
		round(nr.X), round(nr.Y),
		round(nr.X+nr.Width), round(nr.Y+nr.Height),
	).Add(bounds.Min).Intersect(bounds)
	if source.Empty() {
		return nil, fmt.Errorf("%w: selection outside the image", ErrRasterUnavailable)
	}

	// Where the visible source lands on the output canvas.
	kx, ky := float64(width)/nr.Width, float64(height)/nr.Height
	dst := image.Rect(
		round((float64(source.Min.X-bounds.Min.X)-nr.X)*kx),
		round((float64(source.Min.Y-bounds.Min.Y)-nr.Y)*ky),
		round((float64(source.Max.X-bounds.Min.X)-nr.X)*kx),
		round((float64(source.Max.Y-bounds.Min.Y)-nr.Y)*ky),
	).Intersect(image.Rect(0, 0, width, height))
	if dst.Empty() {
		return nil, fmt.Errorf("%w: selection outside the image", ErrRasterUnavailable)
	}

	var out image.Image = imaging.Crop(src, source)
	if out.Bounds().Dx() != dst.Dx() || out.Bounds().Dy() != dst.Dy() {
		out = imaging.Resize(out, dst.Dx(), dst.Dy(), imaging.Lanczos)
	}
	if dst != image.Rect(0, 0, width, height) {
		canvas := imaging.New(width, height, color.NRGBA{})
		out = imaging.Paste(canvas, out, dst.Min)
	}

	data, err := EncodePNG(out)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Artifact: NewArtifact(data, MIMETypePNG, GeneratedName("cropped", MIMETypePNG, at)),
		Source:   source,
		Width:    width,
		Height:   height,
	}, nil
}

// Aspect names a fixed crop aspect ratio.
type Aspect string

// Aspect presets offered for crop selections.
const (
	AspectFree   Aspect = "free"
	AspectSquare Aspect = "1:1"
	AspectWide   Aspect = "16:9"
)

// Ratio returns width/height for the preset, or 0 for a free selection.
func (a Aspect) Ratio() (float64, error) {
	switch a {
	case AspectFree, "":
		return 0, nil
	case AspectSquare:
		return 1, nil
	case AspectWide:
		return 16.0 / 9.0, nil
	default:
		return 0, fmt.Errorf("unknown aspect: %s", a)
	}
}

// ConstrainAspect keeps the selection's width and derives its height from
// ratio (width/height). A ratio of 0 returns sel unchanged.
func ConstrainAspect(sel coords.Rect, ratio float64) coords.Rect {
	if ratio <= 0 || sel.Width <= 0 {
		return sel
	}
	sel.Height = sel.Width / ratio
	return sel
}

// ClampSelection confines sel to the rendered element [0,w]x[0,h]. With a
// fixed ratio the height is first derived from the width and the rectangle
// is then shrunk from its far edges until it fits, keeping the ratio.
func ClampSelection(sel coords.Rect, w, h, ratio float64) coords.Rect {
	if sel.X < 0 {
		sel.Width += sel.X
		sel.X = 0
	}
	if sel.Y < 0 {
		sel.Height += sel.Y
		sel.Y = 0
	}
	sel.X = math.Min(sel.X, w)
	sel.Y = math.Min(sel.Y, h)
	sel = ConstrainAspect(sel, ratio)

	maxW, maxH := w-sel.X, h-sel.Y
	if sel.Width > maxW {
		sel.Width = maxW
		if ratio > 0 {
			sel.Height = sel.Width / ratio
		}
	}
	if sel.Height > maxH {
		sel.Height = maxH
		if ratio > 0 {
			sel.Width = sel.Height * ratio
		}
	}
	return sel
}

func round(v float64) int {
	return int(math.Round(v))
}
