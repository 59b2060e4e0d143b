package editor

import (
	"fmt"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Mode is the active editing tool. The hotspot exists only in ModeRetouch
// and the crop selection only in ModeCrop.
type Mode string

// Modes.
const (
	ModeRetouch Mode = "retouch"
	ModeAdjust  Mode = "adjust"
	ModeFilter  Mode = "filter"
	ModeCrop    Mode = "crop"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeRetouch, ModeAdjust, ModeFilter, ModeCrop:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrValidation, s)
	}
}

// Kind is the kind of an edit request.
type Kind string

// Request kinds.
const (
	KindPointEdit   Kind = "point_edit"
	KindFilter      Kind = "filter"
	KindAdjustment  Kind = "adjustment"
	KindEnhancement Kind = "enhancement"
	KindCrop        Kind = "crop"
)

// namePrefix is used for the generated artifact name.
func (k Kind) namePrefix() string {
	switch k {
	case KindPointEdit:
		return "edited"
	case KindFilter:
		return "filtered"
	case KindAdjustment:
		return "adjusted"
	case KindEnhancement:
		return "enhanced"
	case KindCrop:
		return "cropped"
	default:
		return "image"
	}
}

// Phase is the lifecycle state of the session's request slot. After a
// request completes the phase stays Succeeded or Failed until the next
// request, upload or clear.
type Phase string

// Phases.
const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhasePending    Phase = "pending"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Request is one edit submitted to a Session.
type Request struct {
	Kind Kind

	// Prompt is the free-text instruction. For filters and adjustments
	// it may be left empty when Preset is set.
	Prompt string

	// Preset names a ready-made prompt for filters and adjustments.
	Preset string
}

// Hotspot is the retouch target chosen by a click.
type Hotspot struct {
	// Display is the click in the rendered element's coordinates.
	Display coords.Point `json:"display"`

	// Natural is the same point in the image's pixel grid.
	Natural coords.Pixel `json:"natural"`
}

// Selection is the crop rectangle in display space together with the
// layout it was drawn against.
type Selection struct {
	Rect       coords.Rect    `json:"rect"`
	Layout     coords.Layout  `json:"layout"`
	PixelRatio float64        `json:"pixel_ratio"`
	Aspect     imaging.Aspect `json:"aspect"`
}

// Snapshot is a read-only view of a Session after a transition.
type Snapshot struct {
	// Seq increases with every published transition.
	Seq uint64

	Mode    Mode
	Phase   Phase
	Busy    bool
	Pending Kind

	Length   int
	Cursor   int
	CanUndo  bool
	CanRedo  bool
	Current  *imaging.Artifact
	Origin   *imaging.Artifact
	Versions []*imaging.Artifact

	Hotspot   *Hotspot
	Selection *Selection

	// LastError is the most recent failure, until dismissed or replaced.
	LastError error
}

// HasImage reports whether the history has a current version.
func (s Snapshot) HasImage() bool {
	return s.Current != nil
}

// ErrorKind returns the classification of LastError.
func (s Snapshot) ErrorKind() ErrorKind {
	return KindOf(s.LastError)
}
