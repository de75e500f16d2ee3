package presentation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
)

// BufferCount is the number of swap chain buffers. WebGPU surfaces manage their own images,
// the value is kept so Resize can report it unchanged.
const BufferCount = 2

// ErrInvalidSize is returned by Resize for non-positive dimensions.
var ErrInvalidSize = errors.New("presentation surface size must be positive")

// SwapChain is the window surface the presentation surface flips.
type SwapChain interface {
	Configure(width, height int) error
	AcquireBackBuffer() (renderer.Texture, error)
	Present() error
}

// presentationSurface is the implementation of the PresentationSurface interface.
type presentationSurface struct {
	mu sync.Mutex

	swapChain SwapChain
	width     int
	height    int

	// target is the cached render-target view, nil until first use after a resize or present.
	target renderer.Texture
}

// PresentationSurface is the window swap chain the color transform renders into.
//
// The render-target view is cached between accesses and dropped on Resize and Present,
// so a view is never used across a resize or after its image was presented.
type PresentationSurface interface {
	// Present flips the current back buffer onto the window and drops the cached view.
	//
	// Returns:
	//   - error: an error if presentation failed
	Present() error

	// Resize drops the cached view and reconfigures the swap chain, keeping buffer count and format.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: ErrInvalidSize for non-positive sizes, or the swap chain error
	Resize(width, height int) error

	// RenderTargetView returns the cached render target, acquiring it from the back buffer if absent.
	//
	// Returns:
	//   - renderer.Texture: the render target for this frame, owned by the surface
	//   - error: an error if the back buffer could not be acquired
	RenderTargetView() (renderer.Texture, error)

	// Size returns the size the swap chain is configured for.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// BufferCount returns the swap chain buffer count.
	//
	// Returns:
	//   - int: the buffer count
	BufferCount() int

	// Release drops the cached view.
	Release()
}

var _ PresentationSurface = &presentationSurface{}

// NewPresentationSurface wraps a swap chain already configured for width x height.
//
// Parameters:
//   - swapChain: the configured swap chain
//   - width: the configured width in pixels
//   - height: the configured height in pixels
//
// Returns:
//   - PresentationSurface: the surface
func NewPresentationSurface(swapChain SwapChain, width, height int) PresentationSurface {
	return &presentationSurface{
		swapChain: swapChain,
		width:     width,
		height:    height,
	}
}

func (s *presentationSurface) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.swapChain.Present()
	s.dropTarget()
	return err
}

func (s *presentationSurface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropTarget()
	if err := s.swapChain.Configure(width, height); err != nil {
		return fmt.Errorf("resizing swap chain to %dx%d: %w", width, height, err)
	}
	s.width, s.height = width, height
	logger.WithComponent("presentation").Debug().Int("width", width).Int("height", height).Msg("swap chain resized")
	return nil
}

func (s *presentationSurface) RenderTargetView() (renderer.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target != nil {
		return s.target, nil
	}
	target, err := s.swapChain.AcquireBackBuffer()
	if err != nil {
		return nil, err
	}
	s.target = target
	return target, nil
}

func (s *presentationSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *presentationSurface) BufferCount() int {
	return BufferCount
}

func (s *presentationSurface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropTarget()
}

func (s *presentationSurface) dropTarget() {
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}
}
