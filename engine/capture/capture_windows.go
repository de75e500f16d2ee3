//go:build windows

package capture

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/colorchecker/common"
	"golang.org/x/sys/windows"
)

var (
	modUser32 = windows.NewLazySystemDLL("user32.dll")
	modGdi32  = windows.NewLazySystemDLL("gdi32.dll")
	modDwmapi = windows.NewLazySystemDLL("dwmapi.dll")

	procIsWindow           = modUser32.NewProc("IsWindow")
	procGetWindowRect      = modUser32.NewProc("GetWindowRect")
	procGetDC              = modUser32.NewProc("GetDC")
	procReleaseDC          = modUser32.NewProc("ReleaseDC")
	procPrintWindow        = modUser32.NewProc("PrintWindow")
	procSetProcessDPIAware = modUser32.NewProc("SetProcessDPIAware")

	procCreateCompatibleDC     = modGdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBitmap = modGdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject           = modGdi32.NewProc("SelectObject")
	procDeleteDC               = modGdi32.NewProc("DeleteDC")
	procDeleteObject           = modGdi32.NewProc("DeleteObject")
	procGetDIBits              = modGdi32.NewProc("GetDIBits")

	procDwmGetWindowAttribute = modDwmapi.NewProc("DwmGetWindowAttribute")
)

const (
	pwRenderFullContent      = 0x00000002
	dwmwaExtendedFrameBounds = 9
	biRGB                    = 0
	dibRGBColors             = 0
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	BmiHeader bitmapInfoHeader
	BmiColors [1]uint32
}

// EnableDPIAwareness opts the process out of DPI virtualization so window rectangles and
// captured pixels agree. It must run before any window is created.
func EnableDPIAwareness() {
	if procSetProcessDPIAware.Find() == nil {
		procSetProcessDPIAware.Call()
	}
}

type windowsBackend struct{}

// NewBackend returns the GDI capture backend.
//
// Returns:
//   - Backend: the platform backend
//   - error: always nil on Windows
func NewBackend() (Backend, error) {
	return &windowsBackend{}, nil
}

func isWindow(hwnd uintptr) bool {
	r, _, _ := procIsWindow.Call(hwnd)
	return r != 0
}

func (b *windowsBackend) WindowBounds(handle WindowHandle) (common.Rect, error) {
	var r windows.Rect
	ok, _, err := procGetWindowRect.Call(uintptr(handle), uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return common.Rect{}, fmt.Errorf("GetWindowRect: %w", err)
	}
	return toRect(r), nil
}

func (b *windowsBackend) FrameBounds(handle WindowHandle) (common.Rect, error) {
	var r windows.Rect
	hr, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(handle),
		dwmwaExtendedFrameBounds,
		uintptr(unsafe.Pointer(&r)),
		unsafe.Sizeof(r),
	)
	if hr != 0 {
		return common.Rect{}, fmt.Errorf("DwmGetWindowAttribute: HRESULT 0x%08X", uint32(hr))
	}
	return toRect(r), nil
}

func (b *windowsBackend) Open(handle WindowHandle) (Source, error) {
	if handle == 0 || !isWindow(uintptr(handle)) {
		return nil, fmt.Errorf("window 0x%X: %w", uintptr(handle), ErrTargetClosed)
	}
	return &windowsSource{backend: b, hwnd: uintptr(handle)}, nil
}

func (b *windowsBackend) Close() error {
	return nil
}

func toRect(r windows.Rect) common.Rect {
	return common.Rect{Left: int(r.Left), Top: int(r.Top), Right: int(r.Right), Bottom: int(r.Bottom)}
}

// windowsSource renders a window with PrintWindow into a memory bitmap and reads it back top-down.
// GDI handles are kept between grabs and recreated when the window size changes.
type windowsSource struct {
	mu      sync.Mutex
	backend *windowsBackend
	hwnd    uintptr

	memDC     uintptr
	hBitmap   uintptr
	oldBitmap uintptr
	width     int
	height    int
	bi        bitmapInfo
}

func (s *windowsSource) Size() (common.Size, error) {
	r, err := s.backend.WindowBounds(WindowHandle(s.hwnd))
	if err != nil {
		return common.Size{}, err
	}
	return r.Size(), nil
}

func (s *windowsSource) ensureHandles(width, height int) error {
	if s.memDC != 0 && s.width == width && s.height == height {
		return nil
	}
	s.releaseHandles()

	screenDC, _, _ := procGetDC.Call(0)
	if screenDC == 0 {
		return errors.New("GetDC failed")
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, _ := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return errors.New("CreateCompatibleDC failed")
	}
	hBitmap, _, _ := procCreateCompatibleBitmap.Call(screenDC, uintptr(width), uintptr(height))
	if hBitmap == 0 {
		procDeleteDC.Call(memDC)
		return errors.New("CreateCompatibleBitmap failed")
	}
	oldBitmap, _, _ := procSelectObject.Call(memDC, hBitmap)

	s.memDC = memDC
	s.hBitmap = hBitmap
	s.oldBitmap = oldBitmap
	s.width = width
	s.height = height
	s.bi = bitmapInfo{
		BmiHeader: bitmapInfoHeader{
			BiSize:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // negative = top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: biRGB,
		},
	}
	return nil
}

func (s *windowsSource) releaseHandles() {
	if s.memDC == 0 {
		return
	}
	if s.oldBitmap != 0 {
		procSelectObject.Call(s.memDC, s.oldBitmap)
	}
	procDeleteObject.Call(s.hBitmap)
	procDeleteDC.Call(s.memDC)
	s.memDC, s.hBitmap, s.oldBitmap = 0, 0, 0
}

func (s *windowsSource) Grab(f *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isWindow(s.hwnd) {
		return ErrTargetClosed
	}
	size, err := s.Size()
	if err != nil {
		return err
	}
	if size.Empty() {
		return fmt.Errorf("window 0x%X is minimized or empty", s.hwnd)
	}
	if err := s.ensureHandles(size.Width, size.Height); err != nil {
		return err
	}

	ok, _, _ := procPrintWindow.Call(s.hwnd, s.memDC, pwRenderFullContent)
	if ok == 0 {
		return errors.New("PrintWindow failed")
	}

	f.resize(size.Width, size.Height)
	lines, _, _ := procGetDIBits.Call(
		s.memDC,
		s.hBitmap,
		0,
		uintptr(size.Height),
		uintptr(unsafe.Pointer(&f.Pixels[0])),
		uintptr(unsafe.Pointer(&s.bi)),
		dibRGBColors,
	)
	if lines == 0 {
		return errors.New("GetDIBits failed")
	}
	forceOpaque(f.Pixels)
	return nil
}

func (s *windowsSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseHandles()
	return nil
}
