package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyEsc = 256 // Escape key (GLFW)

	KeyF1 = 290 // F1 key (GLFW)
	KeyF2 = 291 // F2 key (GLFW)
	KeyF3 = 292 // F3 key (GLFW)
	KeyF4 = 293 // F4 key (GLFW)
	KeyF5 = 294 // F5 key (GLFW)
)
