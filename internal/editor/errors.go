package editor

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Validation errors. All of them wrap ErrValidation and are raised before
// the edit service is contacted.
var (
	ErrValidation = errors.New("invalid request")

	ErrNoImage        = fmt.Errorf("%w: no image to edit", ErrValidation)
	ErrEmptyPrompt    = fmt.Errorf("%w: describe the edit first", ErrValidation)
	ErrNoHotspot      = fmt.Errorf("%w: select a point on the image first", ErrValidation)
	ErrEmptySelection = fmt.Errorf("%w: %w", ErrValidation, imaging.ErrEmptySelection)
	ErrUnknownPreset  = fmt.Errorf("%w: unknown preset", ErrValidation)
	ErrUnknownKind    = fmt.Errorf("%w: unknown request kind", ErrValidation)
	ErrWrongMode      = fmt.Errorf("%w: not available in the current mode", ErrValidation)
	ErrPointOutside   = fmt.Errorf("%w: point is outside the image", ErrValidation)
	ErrPixelRatio     = fmt.Errorf("%w: device pixel ratio out of range", ErrValidation)
)

var (
	// ErrBusy is returned when a request is submitted while another is
	// pending.
	ErrBusy = errors.New("another request is in progress")

	// ErrSuperseded is returned when a new upload replaced the history
	// while the request was pending; its result is dropped.
	ErrSuperseded = errors.New("result discarded: the image was replaced")

	// ErrNoService is wrapped in a TransportError when the session has no
	// edit service, for example without an API key.
	ErrNoService = errors.New("no edit service configured")
)

// BlockedError means the edit service refused the whole request.
type BlockedError struct {
	Reason  string
	Message string
}

func (e *BlockedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request blocked: %s", e.Reason)
	}
	return fmt.Sprintf("request blocked: %s: %s", e.Reason, e.Message)
}

// IncompleteError means the service stopped before producing an image.
type IncompleteError struct {
	Reason string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("image generation stopped unexpectedly: %s", e.Reason)
}

// EmptyError means the service answered without an image and without a
// blocking or abnormal signal. Text carries any reply the model gave
// instead.
type EmptyError struct {
	Text string
}

func (e *EmptyError) Error() string {
	if e.Text == "" {
		return "the model returned no image"
	}
	return fmt.Sprintf("the model returned no image, it replied: %q", e.Text)
}

// TransportError means the call itself failed to complete.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("edit service call failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies an error for clients.
type ErrorKind string

// Error kinds.
const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindValidation        ErrorKind = "validation"
	ErrorKindBlocked           ErrorKind = "blocked"
	ErrorKindIncomplete        ErrorKind = "incomplete"
	ErrorKindEmpty             ErrorKind = "empty"
	ErrorKindTransport         ErrorKind = "transport"
	ErrorKindRasterUnavailable ErrorKind = "raster_unavailable"
	ErrorKindNotReady          ErrorKind = "not_ready"
	ErrorKindBusy              ErrorKind = "busy"
	ErrorKindSuperseded        ErrorKind = "superseded"
	ErrorKindInternal          ErrorKind = "internal"
)

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	var (
		blocked    *BlockedError
		incomplete *IncompleteError
		empty      *EmptyError
		transport  *TransportError
	)

	switch {
	case err == nil:
		return ErrorKindNone
	case errors.As(err, &blocked):
		return ErrorKindBlocked
	case errors.As(err, &incomplete):
		return ErrorKindIncomplete
	case errors.As(err, &empty):
		return ErrorKindEmpty
	case errors.As(err, &transport):
		return ErrorKindTransport
	case errors.Is(err, ErrValidation), errors.Is(err, imaging.ErrEmptySelection):
		return ErrorKindValidation
	case errors.Is(err, imaging.ErrRasterUnavailable):
		return ErrorKindRasterUnavailable
	case errors.Is(err, coords.ErrNotReady):
		return ErrorKindNotReady
	case errors.Is(err, ErrBusy):
		return ErrorKindBusy
	case errors.Is(err, ErrSuperseded):
		return ErrorKindSuperseded
	default:
		return ErrorKindInternal
	}
}
