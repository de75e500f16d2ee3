// Package capture streams frames of one OS window into GPU textures.
//
// A platform Backend opens a Source for a window; a FrameCaptureSession runs a producer goroutine
// that grabs frames from the Source into a two-frame pool, and the render loop polls the newest
// frame without blocking.
package capture

import (
	"errors"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
)

var (
	// ErrTargetClosed is returned by a Source once its window is gone.
	ErrTargetClosed = errors.New("capture target closed")

	// ErrUnsupported is returned by platforms without a capture backend.
	ErrUnsupported = errors.New("window capture is not supported on this platform")
)

// WindowHandle is an opaque OS window identifier: an HWND on Windows, an X11 window id on Linux.
type WindowHandle uintptr

// Target is the window a session captures.
type Target struct {
	Handle WindowHandle
	// Size is the client size last seen when the target was picked.
	Size common.Size
}

// Valid reports whether the target names a window.
func (t Target) Valid() bool {
	return t.Handle != 0
}

// Frame is one captured image, tightly packed BGRA, top row first.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
}

// resize makes the pixel buffer fit width x height, reusing the allocation when possible.
func (f *Frame) resize(width, height int) {
	n := width * height * 4
	if cap(f.Pixels) < n {
		f.Pixels = make([]byte, n)
	}
	f.Pixels = f.Pixels[:n]
	f.Width, f.Height = width, height
}

// fit copies src into the top-left corner of f without changing f's size. Pixels outside src are cleared.
func (f *Frame) fit(src *Frame) {
	if src.Width == f.Width && src.Height == f.Height {
		copy(f.Pixels, src.Pixels)
		return
	}
	clear(f.Pixels)
	rowBytes := min(f.Width, src.Width) * 4
	for y := range min(f.Height, src.Height) {
		dst := f.Pixels[y*f.Width*4:]
		copy(dst[:rowBytes], src.Pixels[y*src.Width*4:])
	}
}

// Source produces frames of one window.
type Source interface {
	// Size returns the current capture size.
	Size() (common.Size, error)

	// Grab fills f with the window's current contents, resizing f to the window's current size.
	// It returns ErrTargetClosed once the window is gone.
	Grab(f *Frame) error

	// Close releases the OS resources held by the source.
	Close() error
}

// Backend is the platform window-capture implementation.
type Backend interface {
	// Open starts capturing a window.
	Open(handle WindowHandle) (Source, error)

	// WindowBounds returns the outer window rectangle in screen coordinates.
	WindowBounds(handle WindowHandle) (common.Rect, error)

	// FrameBounds returns the visible frame rectangle, excluding invisible resize borders where the
	// platform draws them.
	FrameBounds(handle WindowHandle) (common.Rect, error)

	// Close releases the backend's connection to the windowing system.
	Close() error
}

// TextureFactory uploads a captured frame into a new GPU texture owned by the caller.
type TextureFactory interface {
	CreateFrameTexture(width, height int, bgra []byte) (renderer.Texture, error)
}

// forceOpaque sets the alpha byte of every BGRA texel to 255. GDI and X11 leave it undefined.
func forceOpaque(bgra []byte) {
	for i := 3; i < len(bgra); i += 4 {
		bgra[i] = 0xFF
	}
}
