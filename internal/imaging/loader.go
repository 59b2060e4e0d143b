package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"

	"github.com/docker/go-units"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// LoadArtifact reads an image file from disk as a new artifact.
//
// The MIME type is sniffed from the content, not the extension. Files larger
// than maxSize bytes are rejected; maxSize <= 0 disables the limit.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file exceeds maxSize
//   - Returns ErrNotImage if the content is not an image format
func LoadArtifact(path string, maxSize int64) (*Artifact, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if maxSize > 0 && stat.Size() > maxSize {
		return nil, fmt.Errorf("image is %s, limit is %s",
			units.HumanSize(float64(stat.Size())), units.HumanSize(float64(maxSize)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	m := mimetype.Detect(data)
	if !isImage(data) {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, filepath.Base(path), m.String())
	}
	return NewArtifact(data, m.String(), filepath.Base(path)), nil
}

// DecodeCache keeps decoded bitmaps of artifacts so repeated point and crop
// selections on the same version do not decode it again.
//
// Entries are keyed by artifact ID and stay until Evict or Clear. The cache
// is safe for concurrent use.
type DecodeCache struct {
	mu     sync.RWMutex
	images map[uuid.UUID]image.Image
}

// NewDecodeCache creates an empty cache.
func NewDecodeCache() *DecodeCache {
	return &DecodeCache{
		images: make(map[uuid.UUID]image.Image),
	}
}

// Decode returns the bitmap of a, decoding it on first use.
func (c *DecodeCache) Decode(a *Artifact) (image.Image, error) {
	if a == nil {
		return nil, ErrRasterUnavailable
	}

	c.mu.RLock()
	if img, ok := c.images[a.ID]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Decode(a)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[a.ID] = img
	c.mu.Unlock()

	return img, nil
}

// Evict drops the bitmap of one artifact.
func (c *DecodeCache) Evict(id uuid.UUID) {
	c.mu.Lock()
	delete(c.images, id)
	c.mu.Unlock()
}

// Clear drops every bitmap.
func (c *DecodeCache) Clear() {
	c.mu.Lock()
	c.images = make(map[uuid.UUID]image.Image)
	c.mu.Unlock()
}

// Len returns the number of cached bitmaps.
func (c *DecodeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Decode decodes an artifact without caching.
func Decode(a *Artifact) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", a.Name, err)
	}
	return img, nil
}

// ArtifactInfo describes an artifact for clients.
type ArtifactInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Width and Height are the natural pixel dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	MIMEType string `json:"mime_type"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded bitmap has an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	SizeBytes int    `json:"size_bytes"`
	Size      string `json:"size"`
}

// Describe reports metadata for a and its decoded bitmap.
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func Describe(a *Artifact, img image.Image) *ArtifactInfo {
	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ArtifactInfo{
		ID:         a.ID.String(),
		Name:       a.Name,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		MIMEType:   a.MIMEType,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  a.Size(),
		Size:       units.HumanSize(float64(a.Size())),
	}
}
