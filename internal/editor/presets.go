package editor

import "fmt"

// Preset is a named, ready-made prompt.
type Preset struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

var filterPresets = []Preset{
	{
		Name:   "synthwave",
		Label:  "Synthwave",
		Prompt: "Apply a vibrant 80s synthwave aesthetic with neon magenta and cyan glows, and subtle scan lines.",
	},
	{
		Name:   "anime",
		Label:  "Anime",
		Prompt: "Give the image a vibrant Japanese anime style, with bold outlines, cel-shading, and saturated colors.",
	},
	{
		Name:   "lomo",
		Label:  "Lomo",
		Prompt: "Apply a Lomography-style cross-processing film effect with high-contrast, oversaturated colors, and dark vignetting.",
	},
	{
		Name:   "glitch",
		Label:  "Glitch",
		Prompt: "Transform the image into a futuristic holographic projection with digital glitch effects and chromatic aberration.",
	},
}

var adjustmentPresets = []Preset{
	{
		Name:   "blur-background",
		Label:  "Blur Background",
		Prompt: "Apply a realistic depth-of-field effect, making the background blurry while keeping the main subject in sharp focus.",
	},
	{
		Name:   "enhance-details",
		Label:  "Enhance Details",
		Prompt: "Slightly enhance the sharpness and details of the image without making it look unnatural.",
	},
	{
		Name:   "warmer-lighting",
		Label:  "Warmer Lighting",
		Prompt: "Adjust the color temperature to give the image warmer, golden-hour style lighting.",
	},
	{
		Name:   "studio-light",
		Label:  "Studio Light",
		Prompt: "Add dramatic, professional studio lighting to the main subject.",
	},
}

// Presets returns the presets for kind. Only filters and adjustments have
// presets.
func Presets(kind Kind) []Preset {
	var src []Preset
	switch kind {
	case KindFilter:
		src = filterPresets
	case KindAdjustment:
		src = adjustmentPresets
	default:
		return nil
	}
	out := make([]Preset, len(src))
	copy(out, src)
	return out
}

// LookupPreset resolves a preset name for kind.
func LookupPreset(kind Kind, name string) (Preset, error) {
	for _, p := range Presets(kind) {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q for %s", ErrUnknownPreset, name, kind)
}
