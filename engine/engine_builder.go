package engine

import (
	"github.com/Carmen-Shannon/colorchecker/engine/capture"
	"github.com/Carmen-Shannon/colorchecker/engine/picker"
	"github.com/Carmen-Shannon/colorchecker/engine/profiler"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/lut"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/presentation"
	"github.com/Carmen-Shannon/colorchecker/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler ticked once per drawn frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the host window the engine renders into and reads input from.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithGPU sets the device used for frame uploads and pipeline compilation.
//
// Parameters:
//   - gpu: usually the renderer.Renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGPU(gpu GPU) EngineBuilderOption {
	return func(e *engine) {
		e.gpu = gpu
	}
}

// WithCapture sets the capture session and the backend answering bounds queries for its target.
//
// Parameters:
//   - session: the frame capture session
//   - bounds: the window bounds source, usually the session's capture.Backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCapture(session capture.FrameCaptureSession, bounds Bounds) EngineBuilderOption {
	return func(e *engine) {
		e.session = session
		e.bounds = bounds
	}
}

// WithPicker sets the target picker consulted whenever the engine is idle.
//
// Parameters:
//   - p: the picker
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPicker(p picker.Picker) EngineBuilderOption {
	return func(e *engine) {
		e.picker = p
	}
}

// WithTransform sets the color transform the frame is drawn through.
//
// Parameters:
//   - t: the transform, usually a pipeline.ColorTransformPipeline
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTransform(t Transform) EngineBuilderOption {
	return func(e *engine) {
		e.transform = t
	}
}

// WithSurface sets the presentation surface the transform renders into.
//
// Parameters:
//   - s: the presentation surface
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSurface(s presentation.PresentationSurface) EngineBuilderOption {
	return func(e *engine) {
		e.surface = s
	}
}

// WithLuts sets the seven LUT textures indexed by the pipeline.Lut* constants.
//
// Parameters:
//   - luts: the LUT set in slot order
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLuts(luts [lut.SetSize]pipeline.TextureBinding) EngineBuilderOption {
	return func(e *engine) {
		e.luts = luts
	}
}

// WithRenderMode sets the mode used until the picker returns its first selection.
//
// Parameters:
//   - mode: the initial render mode
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderMode(mode RenderMode) EngineBuilderOption {
	return func(e *engine) {
		e.mode = mode.normalized()
	}
}
