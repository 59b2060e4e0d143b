// Package imaging holds the image artifacts of an editing session and the
// local pixel operations performed on them.
//
// An Artifact is an immutable encoded image (bytes + MIME type + display
// name). Artifacts are produced by an upload, by crop rasterization, or by
// the generative edit service, and are never modified in place.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner:
//   - X increases rightward, Y increases downward
//   - For regions, Min is inclusive and Max is exclusive
//
// Conversions between the client's display space and the bitmap's natural
// space live in package coords; this package only ever samples in natural
// space.
//
// # Crop Rasterization
//
// Rasterize turns a display-space selection into a new PNG artifact. The
// source rectangle is scaled into natural space, and the output is sized by
// the selection times the device pixel ratio so the result matches the
// client's pixel density rather than its CSS size. Encoding is lossless.
//
// # Thread Safety
//
// Artifacts are read-only and safe to share. DecodeCache is safe for
// concurrent use. The rendering helpers are stateless.
//
// # Error Handling
//
// Local rendering failures are reported with ErrEmptySelection (no usable
// selection) and ErrRasterUnavailable (no bitmap to draw from). Both are
// recoverable: the caller reports them and leaves the history untouched.
package imaging
