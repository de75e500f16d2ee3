//go:build windows

package picker

import (
	"unsafe"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/capture"
	"golang.org/x/sys/windows"
)

var (
	modUser32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = modUser32.NewProc("EnumWindows")
	procIsWindowVisible          = modUser32.NewProc("IsWindowVisible")
	procGetWindowTextLengthW     = modUser32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW           = modUser32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessId = modUser32.NewProc("GetWindowThreadProcessId")
	procGetClientRect            = modUser32.NewProc("GetClientRect")
	procGetWindow                = modUser32.NewProc("GetWindow")
)

// gwOwner selects the owner window in GetWindow.
const gwOwner = 4

type win32Enumerator struct{}

// NewEnumerator returns the EnumWindows based enumerator.
func NewEnumerator() (Enumerator, error) {
	return &win32Enumerator{}, nil
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func (e *win32Enumerator) Windows() ([]WindowInfo, error) {
	var result []WindowInfo
	cb := windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		// Owned windows are dialogs and tool windows of another top-level window.
		if owner, _, _ := procGetWindow.Call(hwnd, gwOwner); owner != 0 {
			return 1
		}
		visible, _, _ := procIsWindowVisible.Call(hwnd)

		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

		var r windows.Rect
		procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))

		result = append(result, WindowInfo{
			Handle:  capture.WindowHandle(hwnd),
			Title:   windowText(hwnd),
			PID:     int32(pid),
			Visible: visible != 0,
			Size:    common.Size{Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)},
		})
		return 1
	})

	ok, _, err := procEnumWindows.Call(cb, 0)
	if ok == 0 {
		return nil, err
	}
	for i := range result {
		if result[i].Visible && result[i].Title != "" {
			result[i].Process = processName(result[i].PID)
		}
	}
	return result, nil
}

func (e *win32Enumerator) Close() error {
	return nil
}
