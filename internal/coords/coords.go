// Package coords maps points and rectangles between display space and
// natural space.
//
// Display space is the coordinate system of the rendered bitmap as the
// client lays it out (its client width and height). Natural space is the
// pixel grid of the source bitmap. Both have their origin at the top-left
// corner, X increasing rightward and Y increasing downward.
//
// The two axes are scaled independently. A uniformly rendered bitmap has
// matching aspect ratios in both spaces, but nothing here relies on that.
//
// Display coordinates come straight from pointer events and are never
// back-computed from natural ones. ToDisplay only reports where a natural
// pixel, such as the hotspot, lands in a given rendering.
package coords

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotReady is returned when the rendered element has no client size yet.
// Callers treat it as "ignore the interaction".
var ErrNotReady = errors.New("element not laid out")

// Point is a position in display space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pixel is a position in natural space.
type Pixel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is a rectangle in display space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// NaturalRect is a rectangle in natural space before rounding.
type NaturalRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout holds the four sizes the mapping is defined over.
type Layout struct {
	NaturalWidth  int     `json:"natural_width"`
	NaturalHeight int     `json:"natural_height"`
	ClientWidth   float64 `json:"client_width"`
	ClientHeight  float64 `json:"client_height"`
}

// Scale returns the natural-per-display factors for each axis.
func (l Layout) Scale() (sx, sy float64, err error) {
	if l.ClientWidth <= 0 || l.ClientHeight <= 0 {
		return 0, 0, ErrNotReady
	}
	if l.NaturalWidth <= 0 || l.NaturalHeight <= 0 {
		return 0, 0, fmt.Errorf("invalid natural size %dx%d", l.NaturalWidth, l.NaturalHeight)
	}
	return float64(l.NaturalWidth) / l.ClientWidth, float64(l.NaturalHeight) / l.ClientHeight, nil
}

// ToNatural maps a display point to the nearest natural pixel.
func (l Layout) ToNatural(p Point) (Pixel, error) {
	sx, sy, err := l.Scale()
	if err != nil {
		return Pixel{}, err
	}
	return Pixel{
		X: int(math.Round(p.X * sx)),
		Y: int(math.Round(p.Y * sy)),
	}, nil
}

// ToDisplay maps a natural pixel back to display space.
func (l Layout) ToDisplay(p Pixel) (Point, error) {
	sx, sy, err := l.Scale()
	if err != nil {
		return Point{}, err
	}
	return Point{
		X: float64(p.X) / sx,
		Y: float64(p.Y) / sy,
	}, nil
}

// RectToNatural scales a display rectangle into natural space without rounding.
func (l Layout) RectToNatural(r Rect) (NaturalRect, error) {
	sx, sy, err := l.Scale()
	if err != nil {
		return NaturalRect{}, err
	}
	return NaturalRect{
		X:      r.X * sx,
		Y:      r.Y * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}, nil
}
