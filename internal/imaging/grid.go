package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
)

// GridOptions controls GridOverlay.
type GridOptions struct {
	// Spacing is the distance between grid lines in natural pixels.
	Spacing int

	// ShowCoordinates labels each intersection with its "x,y" position.
	ShowCoordinates bool

	// Color is the line colour as "#RRGGBB". Empty means red.
	Color string

	// Opacity of the lines, 0-1. Zero means fully opaque.
	Opacity float64
}

// GridOverlay draws a natural-space coordinate grid over img so a client
// can read off positions for a point edit.
func GridOverlay(img image.Image, opts GridOptions) (*image.RGBA, error) {
	if opts.Spacing < 1 {
		return nil, fmt.Errorf("grid spacing must be positive, got %d", opts.Spacing)
	}

	lineColor, err := gridColor(opts.Color, opts.Opacity)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	line := image.NewUniform(lineColor)
	for x := opts.Spacing; x < width; x += opts.Spacing {
		draw.Draw(result, image.Rect(x, 0, x+1, height), line, image.Point{}, draw.Over)
	}
	for y := opts.Spacing; y < height; y += opts.Spacing {
		draw.Draw(result, image.Rect(0, y, width, y+1), line, image.Point{}, draw.Over)
	}

	if opts.ShowCoordinates {
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := color.RGBA{0, 0, 0, 180}

		for y := opts.Spacing; y < height; y += opts.Spacing {
			for x := opts.Spacing; x < width; x += opts.Spacing {
				drawLabel(result, x+2, y+2, fmt.Sprintf("%d,%d", x, y), labelColor, bgColor)
			}
		}
	}

	return result, nil
}

func gridColor(hex string, opacity float64) (color.RGBA, error) {
	if hex == "" {
		hex = "#FF0000"
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid grid color %q: %w", hex, err)
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	r, g, b := c.RGB255()
	a := uint8(opacity*255 + 0.5)
	// Premultiplied for color.RGBA.
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}, nil
}

// 3x5 pixel glyphs for digits and comma.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	const charWidth, labelHeight = 4, 7
	labelWidth := len(text) * charWidth

	bgRect := image.Rect(x-1, y-1, x+labelWidth, y+labelHeight).Intersect(img.Bounds())
	draw.Draw(img, bgRect, image.NewUniform(bg), image.Point{}, draw.Src)

	cx := x
	for _, ch := range text {
		for row, bits := range glyphs[ch] {
			for col, bit := range bits {
				if bit == '1' && image.Pt(cx+col, y+row).In(img.Bounds()) {
					img.SetRGBA(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
