package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// solidImage returns an in-memory image filled with c.
func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// quadrantImage returns an image with red top-left, green top-right, blue
// bottom-left and white bottom-right quadrants.
func quadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// pngArtifact encodes img as a PNG artifact.
func pngArtifact(t *testing.T, img image.Image, name string) *Artifact {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return NewArtifact(buf.Bytes(), MIMETypePNG, name)
}

// decodeArtifact decodes an artifact or fails the test.
func decodeArtifact(t *testing.T, a *Artifact) image.Image {
	t.Helper()
	img, err := Decode(a)
	if err != nil {
		t.Fatalf("failed to decode artifact: %v", err)
	}
	return img
}

func rgb8(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
