//go:build !windows && !linux

package picker

import "github.com/Carmen-Shannon/colorchecker/engine/capture"

// NewEnumerator reports that this platform cannot enumerate windows.
func NewEnumerator() (Enumerator, error) {
	return nil, capture.ErrUnsupported
}
