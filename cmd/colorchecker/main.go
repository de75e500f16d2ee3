package main

import (
	"runtime"

	"github.com/Carmen-Shannon/colorchecker/cmd/colorchecker/commands"
)

// GLFW and the window surface must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	commands.Execute()
}
