package engine

import (
	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/pipeline"
)

const (
	// titlePrefix starts every per-frame window title.
	titlePrefix = "ColorChecker "

	// correctionSuffix is appended while a correction LUT is applied.
	correctionSuffix = " : with color correction LUT"

	// passthroughIndex is the emulation index that leaves colors untouched.
	passthroughIndex = 3

	minScale = 0.01
	maxScale = 1.0
)

// titleTags labels the emulated deficiency in the title bar, indexed by LutIndex.
var titleTags = [...]string{"[P]", "[D]", "[T]"}

// RenderMode is the user-selected emulation and correction state.
type RenderMode struct {
	// LutIndex selects the emulation: 0 protanopia, 1 deuteranopia, 2 tritanopia, 3 passthrough.
	LutIndex int

	// CorrectionEnabled applies the daltonization LUT of the selected deficiency.
	CorrectionEnabled bool
}

// WithKey returns the mode after a hotkey press. F1..F4 select index 0..3, F5 toggles correction,
// anything else leaves the mode unchanged.
//
// Parameters:
//   - key: the GLFW key code
//
// Returns:
//   - RenderMode: the updated mode
func (m RenderMode) WithKey(key uint32) RenderMode {
	switch key {
	case common.KeyF1, common.KeyF2, common.KeyF3, common.KeyF4:
		m.LutIndex = int(key - common.KeyF1)
	case common.KeyF5:
		m.CorrectionEnabled = !m.CorrectionEnabled
	}
	return m
}

// Luts returns the simulation and correction LUT slots for the mode.
//
// Returns:
//   - int: the simulation LUT slot
//   - int: the correction LUT slot
func (m RenderMode) Luts() (simulation, correction int) {
	return pipeline.SelectLuts(m.LutIndex, m.CorrectionEnabled)
}

// Title returns the window title describing the mode.
//
// Returns:
//   - string: e.g. "ColorChecker [D] : with color correction LUT"
func (m RenderMode) Title() string {
	if m.LutIndex < 0 || m.LutIndex >= len(titleTags) {
		return titlePrefix
	}
	title := titlePrefix + titleTags[m.LutIndex]
	if m.CorrectionEnabled {
		title += correctionSuffix
	}
	return title
}

// normalized clamps an out-of-range index to passthrough.
func (m RenderMode) normalized() RenderMode {
	if m.LutIndex < 0 || m.LutIndex > passthroughIndex {
		m.LutIndex = passthroughIndex
	}
	return m
}

// Scale returns the per-axis fraction of the start-sized frame that holds live content once the
// client area shrinks, keeping the image at its original pixel size. Without a baseline the whole
// frame is shown.
//
// Parameters:
//   - client: the current client size
//   - original: the target window size recorded when it was picked
//
// Returns:
//   - [2]float32: x and y scale, each clamped to [0.01, 1]
func Scale(client, original common.Size) [2]float32 {
	if original.Empty() {
		return [2]float32{maxScale, maxScale}
	}
	return [2]float32{
		common.Clamp(float32(client.Width)/float32(original.Width), minScale, maxScale),
		common.Clamp(float32(client.Height)/float32(original.Height), minScale, maxScale),
	}
}
