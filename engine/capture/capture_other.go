//go:build !windows && !linux

package capture

// EnableDPIAwareness is a no-op where no capture backend exists.
func EnableDPIAwareness() {}

// NewBackend reports that this platform cannot capture windows.
func NewBackend() (Backend, error) {
	return nil, ErrUnsupported
}
