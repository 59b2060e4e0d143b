// Package editor orchestrates one image-editing session.
//
// A Session owns the version history, the in-flight flag, the active mode
// and the mode-scoped transient state (the retouch hotspot and the crop
// selection). Every state change goes through a Session method; after each
// transition a read-only Snapshot is published to the registered observers.
//
// # Requests
//
// A Request is one of five kinds:
//   - KindPointEdit: localized edit around the hotspot, needs a prompt
//   - KindFilter: stylistic filter over the whole image, prompt or preset
//   - KindAdjustment: global photo adjustment, prompt or preset
//   - KindEnhancement: automatic portrait enhancement, no prompt
//   - KindCrop: rasterize the crop selection locally
//
// Each request runs Idle -> Validating -> Pending -> Succeeded|Failed; the
// slot is free again once it reaches a terminal phase. Only one request may be pending; a second submission gets
// ErrBusy immediately. There is no queue and no cancel.
//
// # History Mutation
//
// The history changes if and only if a request succeeds. A failed request
// leaves the sequence and the cursor exactly as they were, records the
// error as the session's dismissible LastError, and (for point edits) drops
// the hotspot, since the click was made against an image that may no
// longer be on screen.
//
// # Edit Service Contract
//
// Generative kinds go through a Service. Its Response is classified by
// Classify in strict order: block reason, inline image, abnormal finish
// reason, and finally "no image". A response without an image part is
// never a success.
package editor
