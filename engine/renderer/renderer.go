package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer is the GPU context shared by the capture, LUT and presentation paths.
//
// It owns the WebGPU device, queue and window surface, creates the textures and samplers the
// color transform binds, and acts as the swap chain behind the presentation surface.
type Renderer interface {
	// Device returns the logical GPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the device queue used for uploads and submissions.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// SurfaceFormat returns the texture format the window surface was configured with.
	//
	// Returns:
	//   - wgpu.TextureFormat: the swap chain format
	SurfaceFormat() wgpu.TextureFormat

	// Configure (re)configures the window surface for a new size, keeping format and present mode.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the size is invalid or the surface has no usable format
	Configure(width, height int) error

	// AcquireBackBuffer acquires the current swap chain texture.
	// The returned Texture must be released after Present.
	//
	// Returns:
	//   - Texture: the back buffer for this frame
	//   - error: an error if the surface texture could not be acquired
	AcquireBackBuffer() (Texture, error)

	// Present flips the acquired back buffer onto the window.
	//
	// Returns:
	//   - error: an error if presentation failed
	Present() error

	// SetPresentMode sets the surface present mode. Takes effect on the next Configure.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// CreateFrameTexture creates a sampled 2D BGRA8Unorm texture holding one captured frame.
	//
	// Parameters:
	//   - width: frame width in pixels
	//   - height: frame height in pixels
	//   - bgra: tightly packed BGRA pixels, width*height*4 bytes
	//
	// Returns:
	//   - Texture: the uploaded texture, owned by the caller
	//   - error: an error if creation fails
	CreateFrameTexture(width, height int, bgra []byte) (Texture, error)

	// CreateTexture3D creates a sampled 3D texture from staging data.
	//
	// Parameters:
	//   - label: debug label
	//   - staging: texel memory, dimensions and format
	//
	// Returns:
	//   - Texture: the uploaded texture, owned by the caller
	//   - error: an error if creation fails
	CreateTexture3D(label string, staging common.TextureStagingData) (Texture, error)

	// CreateTexture2D creates a sampled 2D texture from staging data.
	//
	// Parameters:
	//   - label: debug label
	//   - staging: texel memory, dimensions and format
	//
	// Returns:
	//   - Texture: the uploaded texture, owned by the caller
	//   - error: an error if creation fails
	CreateTexture2D(label string, staging common.TextureStagingData) (Texture, error)

	// CreateSampler creates a sampler. Zero fields fall back to clamp-to-edge addressing and linear filtering.
	//
	// Parameters:
	//   - label: debug label
	//   - staging: the sampler configuration
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler, owned by the caller
	//   - error: an error if creation fails
	CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error)

	// Release destroys the device, surface and instance.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the given window and configures its surface to the
// window's current framebuffer size.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the initialized renderer
//   - error: an error if no adapter or device could be obtained
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	if err := r.backend.ConfigureSurface(window.Width(), window.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("configuring surface: %w", err)
	}
	return r, nil
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Configure(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) AcquireBackBuffer() (Texture, error) {
	return r.backend.AcquireBackBuffer()
}

func (r *renderer) Present() error {
	return r.backend.Present()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) CreateFrameTexture(width, height int, bgra []byte) (Texture, error) {
	return r.backend.CreateTexture("Capture Frame", wgpu.TextureDimension2D, common.TextureStagingData{
		Pixels: bgra,
		Width:  uint32(width),
		Height: uint32(height),
		Depth:  1,
		Format: wgpu.TextureFormatBGRA8Unorm,
	})
}

func (r *renderer) CreateTexture3D(label string, staging common.TextureStagingData) (Texture, error) {
	return r.backend.CreateTexture(label, wgpu.TextureDimension3D, staging)
}

func (r *renderer) CreateTexture2D(label string, staging common.TextureStagingData) (Texture, error) {
	staging.Depth = 1
	return r.backend.CreateTexture(label, wgpu.TextureDimension2D, staging)
}

func (r *renderer) CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error) {
	return r.backend.CreateSampler(label, staging)
}

func (r *renderer) Release() {
	r.backend.Release()
}
