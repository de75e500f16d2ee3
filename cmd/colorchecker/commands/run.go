package commands

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/Carmen-Shannon/colorchecker/engine"
	"github.com/Carmen-Shannon/colorchecker/engine/assets"
	"github.com/Carmen-Shannon/colorchecker/engine/capture"
	"github.com/Carmen-Shannon/colorchecker/engine/picker"
	"github.com/Carmen-Shannon/colorchecker/engine/profiler"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/lut"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/presentation"
	"github.com/Carmen-Shannon/colorchecker/engine/window"
	"github.com/Carmen-Shannon/colorchecker/internal/config"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var windowID string

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&windowID, "window", "", "window id to capture without prompting (decimal or 0x hex, see 'colorchecker list')")
	flags.Int("lut", 0, "emulation for --window: 0 protanopia, 1 deuteranopia, 2 tritanopia, 3 passthrough")
	flags.Bool("correct", false, "apply the correction LUT for --window")
	flags.String("lut-dir", "", "directory with luts.yaml and LUT images (generated in memory when empty)")
	flags.Int("fps", 0, "capture rate in frames per second (default 60)")
	flags.Bool("profile", false, "log frame rate and memory statistics every second")

	_ = viper.BindPFlag("default_lut", flags.Lookup("lut"))
	_ = viper.BindPFlag("default_correction", flags.Lookup("correct"))
	_ = viper.BindPFlag("lut_dir", flags.Lookup("lut-dir"))
	_ = viper.BindPFlag("capture_fps", flags.Lookup("fps"))
	_ = viper.BindPFlag("profiling", flags.Lookup("profile"))
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("cmd")

	workers := runtime.NumCPU()
	images, err := assets.Set(cfg.LutDir, cfg.LutSize, workers)
	if err != nil {
		return fmt.Errorf("failed to prepare LUT images: %w", err)
	}

	backend, err := capture.NewBackend()
	if err != nil {
		return fmt.Errorf("failed to open capture backend: %w", err)
	}
	defer backend.Close()

	enum, err := picker.NewEnumerator()
	if err != nil {
		return fmt.Errorf("failed to open window enumerator: %w", err)
	}
	defer enum.Close()

	selector, err := newPicker(cfg, enum)
	if err != nil {
		return err
	}

	capture.EnableDPIAwareness()
	win, err := window.NewWindow(
		window.WithTitle(cfg.WindowTitle),
		window.WithWidth(cfg.WindowWidth),
		window.WithHeight(cfg.WindowHeight),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode := renderer.PresentModeVSync
	if !cfg.VSync() {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(cfg.ForceSoftwareRenderer),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Release()

	cubes, err := lut.NewBuilder(r, lut.WithMaxWorkers(workers)).BuildSet(assets.LutNames, images)
	if err != nil {
		return fmt.Errorf("failed to upload LUTs: %w", err)
	}
	defer lut.ReleaseSet(cubes)

	var bindings [lut.SetSize]pipeline.TextureBinding
	for i, c := range cubes {
		bindings[i] = c
	}

	transform := pipeline.NewColorTransformPipeline(pipeline.WithSource(assets.ShaderSource))
	defer transform.Release()
	if err := transform.Bind(r); err != nil {
		return fmt.Errorf("failed to compile color transform: %w", err)
	}

	surface := presentation.NewPresentationSurface(r, win.Width(), win.Height())
	session := capture.NewFrameCaptureSession(backend, capture.WithFPS(cfg.CaptureFPS))

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithGPU(r),
		engine.WithCapture(session, backend),
		engine.WithPicker(selector),
		engine.WithTransform(transform),
		engine.WithSurface(surface),
		engine.WithLuts(bindings),
		engine.WithRenderMode(engine.RenderMode{LutIndex: cfg.DefaultLut, CorrectionEnabled: cfg.DefaultCorrection}),
		engine.WithProfiling(cfg.Profiling),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithInterval(cfg.ProfileInterval))),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("lut_size", int(cubes[0].Size())).Bool("vsync", cfg.VSync()).Msg("viewer ready")
	return eng.Run(ctx)
}

// newPicker returns the terminal picker, answered once by --window when it is set.
func newPicker(cfg *config.Config, enum picker.Enumerator) (picker.Picker, error) {
	prompt := picker.NewPromptPicker(enum, os.Stdin, os.Stdout, picker.WithDenylist(cfg.Denylist))
	if windowID == "" {
		return prompt, nil
	}
	handle, err := strconv.ParseUint(windowID, 0, 64)
	if err != nil || handle == 0 {
		return nil, fmt.Errorf("invalid --window %q", windowID)
	}
	return picker.NewPresetPicker(picker.PresetFromHandle(handle, cfg.DefaultLut, cfg.DefaultCorrection), prompt), nil
}
