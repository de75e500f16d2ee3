package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/capture"
	"github.com/Carmen-Shannon/colorchecker/engine/picker"
	"github.com/Carmen-Shannon/colorchecker/engine/profiler"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/lut"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/presentation"
	"github.com/Carmen-Shannon/colorchecker/engine/window"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
)

// errMissingComponent is returned by Run when a required collaborator was not configured.
var errMissingComponent = errors.New("engine is missing a required component")

// GPU creates the textures and samplers the render loop needs. renderer.Renderer satisfies it.
type GPU interface {
	pipeline.GPU
	capture.TextureFactory
}

// Bounds reports target window rectangles. capture.Backend satisfies it.
type Bounds interface {
	WindowBounds(handle capture.WindowHandle) (common.Rect, error)
	FrameBounds(handle capture.WindowHandle) (common.Rect, error)
}

// Transform draws one captured frame through the LUT pair. pipeline.ColorTransformPipeline satisfies it.
type Transform interface {
	Bind(gpu pipeline.GPU) error
	Draw(params pipeline.DrawParams) error
}

// engine implements the Engine interface.
// Drives picking, capture polling, drawing and presentation from the window's message loop.
type engine struct {
	mu sync.Mutex

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	err         error

	window    window.Window
	gpu       GPU
	session   capture.FrameCaptureSession
	bounds    Bounds
	picker    picker.Picker
	transform Transform
	surface   presentation.PresentationSurface
	luts      [lut.SetSize]pipeline.TextureBinding

	profiler         *profiler.Profiler
	profilingEnabled bool

	mode RenderMode

	// originalSize is the target window size recorded when it was picked.
	originalSize common.Size
	// frameBounds is the last frame rectangle the host window was synced to.
	frameBounds common.Rect
	// frame is the last captured frame, kept until a newer one replaces it.
	frame renderer.Texture

	// pendingKeys and resizePending are written by window callbacks and consumed once per iteration.
	pendingKeys   []uint32
	resizePending bool
}

// Engine is the capture orchestrator.
// It owns the render mode and the per-iteration frame lifecycle of the viewer.
type Engine interface {
	// Window returns the host window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Mode returns the current render mode.
	//
	// Returns:
	//   - RenderMode: the emulation index and correction flag
	Mode() RenderMode

	// Run installs the window callbacks and drives the message loop until the window closes,
	// the picker is cancelled, ctx is done or a fatal render error occurs. The capture session
	// and the last frame are released before it returns.
	//
	// Parameters:
	//   - ctx: cancels the loop and any blocking picker prompt
	//
	// Returns:
	//   - error: the fatal error that ended the loop, nil on a normal exit
	Run(ctx context.Context) error

	// Quit asks the loop to stop after the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options supplying the window, GPU, capture, picker and draw components
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
		mode:        RenderMode{LutIndex: 0},
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Mode() RenderMode {
	return e.mode
}

func (e *engine) Run(ctx context.Context) error {
	if err := e.validate(); err != nil {
		return err
	}

	e.window.SetKeyDownCallback(e.onKeyDown)
	e.window.SetResizeCallback(e.onResize)
	e.window.SetUpdateCallback(func() {
		e.handleUpdate(ctx)
	})

	e.window.ProcessMessages()

	e.window.SetUpdateCallback(nil)
	e.shutdown()

	e.mu.Lock()
	err := e.err
	e.mu.Unlock()
	if errors.Is(err, picker.ErrCancelled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Quit signals the loop to stop. Safe to call multiple times.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// fail records the first fatal error and signals quit.
func (e *engine) fail(err error) {
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
	e.signalQuit()
}

func (e *engine) validate() error {
	var missing []string
	if e.window == nil {
		missing = append(missing, "window")
	}
	if e.gpu == nil {
		missing = append(missing, "gpu")
	}
	if e.session == nil {
		missing = append(missing, "capture session")
	}
	if e.bounds == nil {
		missing = append(missing, "bounds")
	}
	if e.picker == nil {
		missing = append(missing, "picker")
	}
	if e.transform == nil {
		missing = append(missing, "transform")
	}
	if e.surface == nil {
		missing = append(missing, "presentation surface")
	}
	for i, l := range e.luts {
		if l == nil {
			missing = append(missing, fmt.Sprintf("lut %d", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", errMissingComponent, missing)
	}
	return nil
}

// handleUpdate runs one loop iteration from the window's update callback.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleUpdate(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithComponent("engine").Error().Interface("panic", r).Msg("render loop recovered from panic")
			e.fail(fmt.Errorf("render loop panic: %v", r))
			e.window.RequestClose()
		}
	}()

	select {
	case <-e.quitChannel:
		e.window.RequestClose()
		return
	case <-ctx.Done():
		e.fail(ctx.Err())
		e.window.RequestClose()
		return
	default:
	}

	if err := e.step(ctx); err != nil {
		e.fail(err)
		e.window.RequestClose()
	}
}

// step performs one iteration: pick a target when idle, sync the host window to the target,
// apply queued input, then draw the newest frame through the selected LUT pair.
func (e *engine) step(ctx context.Context) error {
	log := logger.WithComponent("engine")

	if !e.session.IsCapturing() {
		e.releaseFrame()
		if err := e.selectTarget(ctx); err != nil {
			return err
		}
		if !e.session.IsCapturing() {
			return nil
		}
	}

	e.syncFrameBounds(e.session.Target())
	e.applyPendingInput()

	e.mu.Lock()
	resize := e.resizePending
	e.resizePending = false
	e.mu.Unlock()
	if resize {
		if err := e.surface.Resize(e.window.Width(), e.window.Height()); err != nil {
			log.Debug().Err(err).Msg("surface resize skipped")
		}
	}

	scale := Scale(common.Size{Width: e.window.Width(), Height: e.window.Height()}, e.originalSize)

	if frame, ok := e.session.TryGetNextFrame(e.gpu); ok {
		e.releaseFrame()
		e.frame = frame
	}

	target, err := e.surface.RenderTargetView()
	if err != nil {
		log.Debug().Err(err).Msg("no render target this iteration")
		return nil
	}

	if err := e.transform.Bind(e.gpu); err != nil {
		return fmt.Errorf("binding color transform: %w", err)
	}

	simulation, correction := e.mode.Luts()
	params := pipeline.DrawParams{
		Target:     target.View(),
		Simulation: e.luts[simulation],
		Correction: e.luts[correction],
		Scale:      scale,
	}
	if e.frame != nil {
		params.Frame = e.frame
	}
	if err := e.transform.Draw(params); err != nil {
		log.Warn().Err(err).Msg("draw failed")
	}
	if err := e.surface.Present(); err != nil {
		log.Warn().Err(err).Msg("present failed")
	}

	e.window.SetTitle(e.mode.Title())

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(e.session.FramesCaptured())
	}
	return nil
}

// selectTarget blocks on the picker, applies the chosen mode and starts capturing.
// A failed start leaves the session idle so the next iteration prompts again.
func (e *engine) selectTarget(ctx context.Context) error {
	log := logger.WithComponent("engine")

	sel, err := e.picker.ChooseTarget(ctx)
	if err != nil {
		return err
	}
	e.mode = RenderMode{LutIndex: sel.LutIndex, CorrectionEnabled: sel.ApplyCorrection}.normalized()
	e.frameBounds = common.Rect{}

	if !e.session.Start(sel.Target) {
		log.Warn().Uint64("window", uint64(sel.Target.Handle)).Msg("capture did not start, prompting again")
		return nil
	}

	e.originalSize = sel.Target.Size
	if rect, err := e.bounds.WindowBounds(sel.Target.Handle); err == nil && !rect.Size().Empty() {
		e.originalSize = rect.Size()
	}
	log.Info().
		Uint64("window", uint64(sel.Target.Handle)).
		Int("lut", e.mode.LutIndex).
		Bool("correction", e.mode.CorrectionEnabled).
		Int("width", e.originalSize.Width).
		Int("height", e.originalSize.Height).
		Msg("target selected")
	return nil
}

// syncFrameBounds resizes the host window to the target's visible frame when it changes and
// locks it against user resizing. Query failures skip the sync for this iteration.
func (e *engine) syncFrameBounds(target capture.Target) {
	rect, err := e.bounds.FrameBounds(target.Handle)
	if err != nil {
		logger.WithComponent("engine").Debug().Err(err).Msg("frame bounds unavailable")
		return
	}
	if rect == e.frameBounds {
		return
	}
	e.frameBounds = rect

	size := rect.Size()
	if size.Empty() {
		return
	}
	e.window.SetClientSize(size.Width, size.Height)
	e.window.SetResizable(false)

	e.mu.Lock()
	e.resizePending = true
	e.mu.Unlock()
}

// applyPendingInput folds queued hotkeys into the render mode.
func (e *engine) applyPendingInput() {
	e.mu.Lock()
	keys := e.pendingKeys
	e.pendingKeys = nil
	e.mu.Unlock()

	for _, k := range keys {
		e.mode = e.mode.WithKey(k)
	}
}

func (e *engine) onKeyDown(keyCode uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingKeys = append(e.pendingKeys, keyCode)
}

func (e *engine) onResize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resizePending = true
}

func (e *engine) releaseFrame() {
	if e.frame != nil {
		e.frame.Release()
		e.frame = nil
	}
}

// shutdown stops capturing and releases everything the loop owns.
func (e *engine) shutdown() {
	e.session.Stop()
	e.releaseFrame()
	e.surface.Release()
	logger.WithComponent("engine").Info().Msg("capture loop stopped")
}
