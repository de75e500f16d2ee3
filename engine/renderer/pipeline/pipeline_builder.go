package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option used to configure a ColorTransformPipeline during construction.
type PipelineBuilderOption func(*colorTransformPipeline)

// WithSource sets the initial WGSL source.
//
// Parameters:
//   - src: the annotated WGSL source
//
// Returns:
//   - PipelineBuilderOption: a function that sets the shader source
func WithSource(src string) PipelineBuilderOption {
	return func(p *colorTransformPipeline) {
		p.source = src
	}
}

// WithPipelineKey sets the key used as label for the shader module and GPU objects.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - PipelineBuilderOption: a function that sets the pipeline key
func WithPipelineKey(key string) PipelineBuilderOption {
	return func(p *colorTransformPipeline) {
		p.pipelineKey = key
	}
}

// WithClearColor sets the color the render target is cleared to before the quad is drawn.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - PipelineBuilderOption: a function that sets the clear color
func WithClearColor(c wgpu.Color) PipelineBuilderOption {
	return func(p *colorTransformPipeline) {
		p.clearColor = c
	}
}

// WithWriteMask sets the color write mask of the output target.
//
// Parameters:
//   - mask: the write mask
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *colorTransformPipeline) {
		p.writeMask = mask
	}
}

// withCompiler replaces the GPU compile step. Tests use it to run without a device.
func withCompiler(c compileFunc) PipelineBuilderOption {
	return func(p *colorTransformPipeline) {
		p.compile = c
	}
}
