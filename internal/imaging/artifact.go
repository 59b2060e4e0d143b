package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MIMETypePNG is the format of every locally rendered artifact.
const MIMETypePNG = "image/png"

// ErrNotImage is returned when a payload is not a recognised image format.
var ErrNotImage = errors.New("payload is not an image")

// Artifact is one immutable image version.
//
// Identity is the ID; two artifacts with equal bytes are still distinct
// versions. Data must not be modified after construction.
type Artifact struct {
	ID        uuid.UUID
	Name      string
	MIMEType  string
	Data      []byte
	CreatedAt time.Time
}

// NewArtifact wraps an encoded payload. An empty mimeType is sniffed from
// the content.
func NewArtifact(data []byte, mimeType, name string) *Artifact {
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return &Artifact{
		ID:        uuid.New(),
		Name:      name,
		MIMEType:  mimeType,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

// Size returns the payload length in bytes.
func (a *Artifact) Size() int {
	return len(a.Data)
}

// Base64 returns the payload in standard base64.
func (a *Artifact) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURL returns the artifact as a data: URL.
func (a *Artifact) DataURL() string {
	return "data:" + a.MIMEType + ";base64," + a.Base64()
}

// ParseDataURL decodes a base64 data: URL into a new artifact.
func ParseDataURL(dataURL, name string) (*Artifact, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}
	meta, found := strings.CutPrefix(header, "data:")
	if !found {
		return nil, fmt.Errorf("invalid data URL: missing data: scheme")
	}
	mimeType, enc, _ := strings.Cut(meta, ";")
	if mimeType == "" {
		return nil, fmt.Errorf("could not parse MIME type from data URL")
	}
	if enc != "base64" {
		return nil, fmt.Errorf("unsupported data URL encoding %q", enc)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URL payload: %w", err)
	}
	if !isImage(data) {
		return nil, ErrNotImage
	}
	return NewArtifact(data, mimeType, name), nil
}

// GeneratedName builds the display name of an artifact produced by an
// operation, e.g. "filtered-1700000000000.png".
func GeneratedName(prefix, mimeType string, at time.Time) string {
	ext := ".png"
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		ext = m.Extension()
	}
	return fmt.Sprintf("%s-%d%s", prefix, at.UnixMilli(), ext)
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func isImage(data []byte) bool {
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}
