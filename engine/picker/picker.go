// Package picker lists capturable top-level windows and lets the user choose the capture target,
// the deficiency to emulate and whether the correction LUT applies.
package picker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/capture"
)

// ErrCancelled is returned when the user quits the picker.
var ErrCancelled = errors.New("target selection cancelled")

// DefaultDenylist holds process names whose windows are never offered: shell surfaces, store
// hosts and this program itself.
var DefaultDenylist = []string{
	"applicationframehost",
	"shellexperiencehost",
	"systemsettings",
	"winstore.app",
	"searchui",
	"pulse",
	"colorchecker",
	"custominfo",
}

// LutNames labels the emulation types in index order.
var LutNames = []string{"Protanopia", "Deuteranopia", "Tritanopia", "Passthrough"}

// WindowInfo describes one top-level window.
type WindowInfo struct {
	Handle  capture.WindowHandle `json:"handle"`
	Title   string               `json:"title"`
	Process string               `json:"process"`
	PID     int32                `json:"pid"`
	Visible bool                 `json:"visible"`
	Size    common.Size          `json:"size"`
}

// Label renders the entry as "<process> / <title>".
func (w WindowInfo) Label() string {
	return w.Process + " / " + w.Title
}

// Selection is the result of one picker round.
type Selection struct {
	Target          capture.Target
	LutIndex        int
	ApplyCorrection bool
}

// Picker chooses the capture target.
type Picker interface {
	// ChooseTarget blocks until the user picks a window.
	//
	// Parameters:
	//   - ctx: cancels the prompt
	//
	// Returns:
	//   - Selection: the chosen target, LUT index and correction flag
	//   - error: ErrCancelled when the user quits, ctx.Err() when ctx is done
	ChooseTarget(ctx context.Context) (Selection, error)
}

// Enumerator lists the top-level windows of the desktop session.
type Enumerator interface {
	Windows() ([]WindowInfo, error)
	Close() error
}

// Denylist normalizes names for Capturable, falling back to DefaultDenylist when names is empty.
//
// Parameters:
//   - names: configured process names, with or without ".exe"
//
// Returns:
//   - []string: the normalized denylist
func Denylist(names []string) []string {
	if len(names) == 0 {
		return DefaultDenylist
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, NormalizeProcessName(n))
	}
	return out
}

// NormalizeProcessName lower-cases name and strips a trailing ".exe".
func NormalizeProcessName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}

// Capturable keeps the windows that are visible, titled and not owned by a denylisted process.
//
// Parameters:
//   - windows: the enumerated windows
//   - denylist: normalized process names to skip
//
// Returns:
//   - []WindowInfo: the capturable windows in enumeration order
func Capturable(windows []WindowInfo, denylist []string) []WindowInfo {
	out := make([]WindowInfo, 0, len(windows))
	for _, w := range windows {
		if !w.Visible || strings.TrimSpace(w.Title) == "" || w.Handle == 0 {
			continue
		}
		if slices.Contains(denylist, NormalizeProcessName(w.Process)) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// ListCapturable enumerates and filters in one step.
//
// Parameters:
//   - enum: the window enumerator
//   - denylist: normalized process names to skip
//
// Returns:
//   - []WindowInfo: the capturable windows
//   - error: an error if enumeration failed
func ListCapturable(enum Enumerator, denylist []string) ([]WindowInfo, error) {
	windows, err := enum.Windows()
	if err != nil {
		return nil, fmt.Errorf("enumerating windows: %w", err)
	}
	return Capturable(windows, denylist), nil
}
