package picker

import (
	"path/filepath"

	"github.com/shirou/gopsutil/v3/process"
)

// processName resolves the executable name of pid, normalized. Returns "" when the process is
// gone or not accessible.
func processName(pid int32) string {
	if pid <= 0 {
		return ""
	}
	p, err := process.NewProcess(pid)
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil || name == "" {
		exe, exeErr := p.Exe()
		if exeErr != nil {
			return ""
		}
		name = filepath.Base(exe)
	}
	return NormalizeProcessName(name)
}
