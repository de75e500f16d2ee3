package picker

import (
	"context"

	"github.com/Carmen-Shannon/colorchecker/engine/capture"
)

// presetPicker answers the first ChooseTarget with a fixed selection and defers to a fallback
// afterwards, so a window passed on the command line is captured without prompting and a closed
// target still returns to interactive selection.
type presetPicker struct {
	preset   Selection
	used     bool
	fallback Picker
}

var _ Picker = &presetPicker{}

// NewPresetPicker creates a picker that first returns preset, then delegates to fallback.
// A nil fallback makes later calls return ErrCancelled.
//
// Parameters:
//   - preset: the selection returned by the first call
//   - fallback: the picker used after the preset is consumed
//
// Returns:
//   - Picker: the preset picker
func NewPresetPicker(preset Selection, fallback Picker) Picker {
	return &presetPicker{preset: preset, fallback: fallback}
}

func (p *presetPicker) ChooseTarget(ctx context.Context) (Selection, error) {
	if err := ctx.Err(); err != nil {
		return Selection{}, err
	}
	if !p.used && p.preset.Target.Handle != 0 {
		p.used = true
		return p.preset, nil
	}
	if p.fallback == nil {
		return Selection{}, ErrCancelled
	}
	return p.fallback.ChooseTarget(ctx)
}

// PresetFromHandle builds a preset selection. An out-of-range LUT index falls back to 0.
func PresetFromHandle(handle uint64, lutIndex int, correction bool) Selection {
	if lutIndex < 0 || lutIndex >= len(LutNames) {
		lutIndex = 0
	}
	return Selection{
		Target:          capture.Target{Handle: capture.WindowHandle(handle)},
		LutIndex:        lutIndex,
		ApplyCorrection: correction,
	}
}
