package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/shader"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotBound is returned by Draw when Bind has not compiled a program yet.
var ErrNotBound = errors.New("color transform pipeline is not bound")

// GPU is the slice of the renderer the pipeline compiles and draws with.
type GPU interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	SurfaceFormat() wgpu.TextureFormat
	CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error)
	CreateTexture2D(label string, staging common.TextureStagingData) (renderer.Texture, error)
}

// TextureBinding is anything that can be bound as a sampled texture.
type TextureBinding interface {
	View() *wgpu.TextureView
}

// DrawParams carries the per-draw inputs of the color transform.
type DrawParams struct {
	// Target is the render-target view the quad is drawn into.
	Target *wgpu.TextureView

	// Frame is the captured frame. Nil binds a black placeholder.
	Frame TextureBinding

	// Simulation and Correction are the selected LUT cubes.
	Simulation TextureBinding
	Correction TextureBinding

	// Scale is the per-axis fraction of the frame to sample, in [0.01, 1].
	Scale [2]float32
}

// program is a compiled color transform ready to record draws.
type program interface {
	draw(params DrawParams, clear wgpu.Color) error
	release()
}

// compileFunc turns a reflected shader into a program on the given GPU.
type compileFunc func(gpu GPU, s shader.Shader, writeMask wgpu.ColorWriteMask) (program, error)

// colorTransformPipeline is the implementation of the ColorTransformPipeline interface.
type colorTransformPipeline struct {
	pipelineKey string
	source      string

	// boundSource is the source text the current program was compiled from.
	boundSource string
	program     program
	compile     compileFunc

	clearColor wgpu.Color
	writeMask  wgpu.ColorWriteMask
}

// ColorTransformPipeline draws a captured frame through a correction LUT and a simulation LUT
// onto a full-viewport quad.
//
// The pipeline compiles lazily: Bind compiles the current source on first use and again only
// when the source text changes.
type ColorTransformPipeline interface {
	// PipelineKey returns the key used to label the pipeline's GPU objects.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Source returns the WGSL source that the next Bind compiles.
	//
	// Returns:
	//   - string: the annotated WGSL source
	Source() string

	// SetSource replaces the WGSL source. The change takes effect on the next Bind.
	//
	// Parameters:
	//   - src: the annotated WGSL source
	SetSource(src string)

	// Bind compiles the current source when nothing is compiled yet or the source changed.
	//
	// Parameters:
	//   - gpu: the GPU to compile on
	//
	// Returns:
	//   - error: an error if the shader fails reflection or compilation
	Bind(gpu GPU) error

	// Draw clears the target to the clear color and draws the transformed frame.
	//
	// Parameters:
	//   - params: target, textures and scale for this draw
	//
	// Returns:
	//   - error: ErrNotBound before a successful Bind, or a GPU error
	Draw(params DrawParams) error

	// Release frees the compiled program.
	Release()
}

var _ ColorTransformPipeline = &colorTransformPipeline{}

// NewColorTransformPipeline creates a pipeline. Nothing touches the GPU until Bind.
//
// Parameters:
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - ColorTransformPipeline: the pipeline
func NewColorTransformPipeline(opts ...PipelineBuilderOption) ColorTransformPipeline {
	p := &colorTransformPipeline{
		pipelineKey: "Color Transform",
		compile:     compileProgram,
		clearColor:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		writeMask:   wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *colorTransformPipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *colorTransformPipeline) Source() string {
	return p.source
}

func (p *colorTransformPipeline) SetSource(src string) {
	p.source = src
}

func (p *colorTransformPipeline) Bind(gpu GPU) error {
	if p.program != nil && p.boundSource == p.source {
		return nil
	}

	s, err := shader.NewShader(p.pipelineKey, p.source)
	if err != nil {
		return err
	}
	prog, err := p.compile(gpu, s, p.writeMask)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", p.pipelineKey, err)
	}

	if p.program != nil {
		p.program.release()
	}
	p.program = prog
	p.boundSource = p.source
	logger.WithComponent("pipeline").Debug().Str("pipeline", p.pipelineKey).Msg("compiled color transform")
	return nil
}

func (p *colorTransformPipeline) Draw(params DrawParams) error {
	if p.program == nil {
		return ErrNotBound
	}
	if params.Target == nil {
		return errors.New("color transform: nil render target")
	}
	if params.Simulation == nil || params.Correction == nil {
		return errors.New("color transform: simulation and correction LUTs are required")
	}
	return p.program.draw(params, p.clearColor)
}

func (p *colorTransformPipeline) Release() {
	if p.program != nil {
		p.program.release()
		p.program = nil
	}
	p.boundSource = ""
}

// scaleUniform packs the scale into the vec4 uniform layout (sx, sy, 1, 1).
func scaleUniform(scale [2]float32) []byte {
	return common.SliceToBytes([]float32{scale[0], scale[1], 1, 1})
}
