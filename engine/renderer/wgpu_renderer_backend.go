package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	configured    bool

	// frameSurface is the swap chain texture acquired for the current frame, nil between frames.
	frameSurface *wgpu.Texture
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	SurfaceFormat() wgpu.TextureFormat
	ConfigureSurface(width, height int) error
	SetPresentMode(mode PresentMode)
	AcquireBackBuffer() (Texture, error)
	Present() error
	CreateTexture(label string, dimension wgpu.TextureDimension, staging common.TextureStagingData) (Texture, error)
	CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error)
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// errFrameInFlight is returned when a back buffer is requested before the previous one was presented.
var errFrameInFlight = errors.New("previous frame surface not yet presented")

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface descriptor")
	}

	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	w.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "ColorChecker Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

// pickSurfaceFormat prefers a linear 8-bit format so captured pixels pass through
// without an extra sRGB encode, falling back to the adapter's first choice.
func pickSurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	if len(formats) == 0 {
		return wgpu.TextureFormatUndefined, errors.New("surface reports no supported formats")
	}
	for _, want := range []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8Unorm} {
		if slices.Contains(formats, want) {
			return want, nil
		}
	}
	return formats[0], nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	format, err := pickSurfaceFormat(capabilities.Formats)
	if err != nil {
		return err
	}
	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}
	b.surfaceFormat = format

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   alphaMode,
	})
	b.configured = true
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) AcquireBackBuffer() (Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured {
		return nil, errors.New("surface is not configured")
	}
	// Holding an unpresented surface texture and asking for another one makes
	// wgpu-native fail with "Surface image is already acquired".
	if b.frameSurface != nil {
		return nil, errFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}

	b.frameSurface = surfaceTexture
	return &backBuffer{
		gpuTexture: gpuTexture{
			texture: surfaceTexture,
			view:    view,
			extent: wgpu.Extent3D{
				Width:              surfaceTexture.GetWidth(),
				Height:             surfaceTexture.GetHeight(),
				DepthOrArrayLayers: 1,
			},
		},
		backend: b,
	}, nil
}

func (b *wgpuRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return nil
	}
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(label string, dimension wgpu.TextureDimension, staging common.TextureStagingData) (Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	depth := max(staging.Depth, 1)
	want := int(staging.BytesPerRow()) * int(staging.Height) * int(depth)
	if staging.Width == 0 || staging.Height == 0 || len(staging.Pixels) < want {
		return nil, fmt.Errorf("texture %q: %d bytes staged for %dx%dx%d", label, len(staging.Pixels), staging.Width, staging.Height, depth)
	}

	extent := wgpu.Extent3D{
		Width:              staging.Width,
		Height:             staging.Height,
		DepthOrArrayLayers: depth,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     dimension,
		Size:          extent,
		Format:        staging.Format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels[:want],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.BytesPerRow(),
			RowsPerImage: staging.Height,
		},
		&extent,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &gpuTexture{texture: tex, view: view, extent: extent}, nil
}

func (b *wgpuRendererBackendImpl) CreateSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(staging.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(staging.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(staging.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(staging.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   common.Coalesce(staging.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(staging.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
	})
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// backBuffer is the swap chain texture for one frame. Releasing it hands the
// surface slot back to the backend so the next frame can be acquired.
type backBuffer struct {
	gpuTexture
	backend *wgpuRendererBackendImpl
}

func (t *backBuffer) Release() {
	t.backend.mu.Lock()
	if t.backend.frameSurface == t.texture {
		t.backend.frameSurface = nil
	}
	t.backend.mu.Unlock()
	t.gpuTexture.Release()
}
