package capture

import "time"

// SessionBuilderOption is a functional option used to configure a FrameCaptureSession during construction.
type SessionBuilderOption func(*frameCaptureSession)

// WithFPS sets the producer's grab rate. Non-positive values keep the default of 60.
//
// Parameters:
//   - fps: frames grabbed per second
//
// Returns:
//   - SessionBuilderOption: a function that sets the grab interval
func WithFPS(fps int) SessionBuilderOption {
	return func(s *frameCaptureSession) {
		if fps > 0 {
			s.interval = time.Second / time.Duration(fps)
		}
	}
}
