package picker

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/colorchecker/common"
)

type fakeEnumerator struct {
	calls   int
	windows [][]WindowInfo
	err     error
}

func (e *fakeEnumerator) Windows() ([]WindowInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	i := min(e.calls, len(e.windows)-1)
	e.calls++
	return e.windows[i], nil
}

func (e *fakeEnumerator) Close() error { return nil }

func desktop() []WindowInfo {
	return []WindowInfo{
		{Handle: 1, Title: "Untitled - Paint", Process: "mspaint.exe", Visible: true, Size: common.Size{Width: 800, Height: 600}},
		{Handle: 2, Title: "Settings", Process: "SystemSettings.exe", Visible: true},
		{Handle: 3, Title: "", Process: "explorer", Visible: true},
		{Handle: 4, Title: "hidden", Process: "notepad", Visible: false},
		{Handle: 5, Title: "Color Checker", Process: "colorchecker", Visible: true},
		{Handle: 6, Title: "GIMP", Process: "gimp", Visible: true},
	}
}

func TestCapturableAppliesDenylist(t *testing.T) {
	got := Capturable(desktop(), DefaultDenylist)
	if len(got) != 2 {
		t.Fatalf("got %d windows, want 2: %+v", len(got), got)
	}
	if got[0].Handle != 1 || got[1].Handle != 6 {
		t.Fatalf("unexpected windows %+v", got)
	}
	if got[0].Label() != "mspaint.exe / Untitled - Paint" {
		t.Fatalf("label = %q", got[0].Label())
	}
}

func TestNormalizeProcessName(t *testing.T) {
	tests := map[string]string{
		"ApplicationFrameHost.exe": "applicationframehost",
		"  Pulse ":                 "pulse",
		"winstore.app":             "winstore.app",
		"gimp-2.10":                "gimp-2.10",
	}
	for in, want := range tests {
		if got := NormalizeProcessName(in); got != want {
			t.Errorf("NormalizeProcessName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDenylist(t *testing.T) {
	if got := Denylist(nil); len(got) != len(DefaultDenylist) {
		t.Fatalf("empty denylist = %v, want the default", got)
	}
	got := Denylist([]string{"GIMP.exe", " Slack "})
	if len(got) != 2 || got[0] != "gimp" || got[1] != "slack" {
		t.Fatalf("Denylist = %v", got)
	}
}

func TestPromptPickerCustomDenylist(t *testing.T) {
	enum := &fakeEnumerator{windows: [][]WindowInfo{desktop()}}
	var out strings.Builder
	p := NewPromptPicker(enum, strings.NewReader("1\n\n\n"), &out, WithDenylist([]string{"Gimp.exe"}))
	sel, err := p.ChooseTarget(context.Background())
	if err != nil {
		t.Fatalf("ChooseTarget: %v", err)
	}
	if sel.Target.Handle != 1 {
		t.Fatalf("target = %+v", sel.Target)
	}
	if strings.Contains(out.String(), "gimp / GIMP") {
		t.Fatalf("denylisted window listed:\n%s", out.String())
	}
	// The custom list replaces the default one.
	if !strings.Contains(out.String(), "SystemSettings.exe / Settings") {
		t.Fatalf("window hidden by the default denylist only is missing:\n%s", out.String())
	}
}

func TestListCapturableWrapsError(t *testing.T) {
	boom := errors.New("no display")
	_, err := ListCapturable(&fakeEnumerator{err: boom}, DefaultDenylist)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func choose(t *testing.T, enum Enumerator, input string) (Selection, string, error) {
	t.Helper()
	var out strings.Builder
	p := NewPromptPicker(enum, strings.NewReader(input), &out)
	sel, err := p.ChooseTarget(context.Background())
	return sel, out.String(), err
}

func TestPromptPickerDefaults(t *testing.T) {
	enum := &fakeEnumerator{windows: [][]WindowInfo{desktop()}}
	sel, out, err := choose(t, enum, "1\n\n\n")
	if err != nil {
		t.Fatalf("ChooseTarget: %v", err)
	}
	if sel.Target.Handle != 1 || sel.Target.Size.Width != 800 {
		t.Fatalf("target = %+v", sel.Target)
	}
	if sel.LutIndex != 0 || sel.ApplyCorrection {
		t.Fatalf("defaults = %d/%v, want 0/false", sel.LutIndex, sel.ApplyCorrection)
	}
	for _, want := range []string{"1) mspaint.exe / Untitled - Paint", "2) gimp / GIMP", "1 : Protanopia", "4 : Passthrough"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "SystemSettings") {
		t.Fatalf("denylisted window listed:\n%s", out)
	}
}

func TestPromptPickerReloadAndChoices(t *testing.T) {
	second := append(desktop(), WindowInfo{Handle: 9, Title: "Blender", Process: "blender", Visible: true})
	enum := &fakeEnumerator{windows: [][]WindowInfo{desktop(), second}}

	sel, out, err := choose(t, enum, "7\nr\n3\nx\n2\nmaybe\ny\n")
	if err != nil {
		t.Fatalf("ChooseTarget: %v", err)
	}
	if enum.calls != 2 {
		t.Fatalf("enumerated %d times, want 2", enum.calls)
	}
	if sel.Target.Handle != 9 || sel.LutIndex != 1 || !sel.ApplyCorrection {
		t.Fatalf("selection = %+v", sel)
	}
	if strings.Count(out, "invalid choice") != 3 {
		t.Fatalf("expected 3 invalid choices:\n%s", out)
	}
}

func TestPromptPickerQuit(t *testing.T) {
	enum := &fakeEnumerator{windows: [][]WindowInfo{desktop()}}
	if _, _, err := choose(t, enum, "q\n"); !errors.Is(err, ErrCancelled) {
		t.Fatalf("quit = %v, want ErrCancelled", err)
	}
	if _, _, err := choose(t, enum, ""); !errors.Is(err, ErrCancelled) {
		t.Fatalf("EOF = %v, want ErrCancelled", err)
	}
}

func TestPromptPickerContextCancel(t *testing.T) {
	enum := &fakeEnumerator{windows: [][]WindowInfo{desktop()}}
	r, w := io.Pipe()
	defer w.Close()

	p := NewPromptPicker(enum, r, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.ChooseTarget(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ChooseTarget = %v, want deadline exceeded", err)
	}
}

type stubPicker struct {
	calls int
}

func (s *stubPicker) ChooseTarget(context.Context) (Selection, error) {
	s.calls++
	return Selection{LutIndex: 2}, nil
}

func TestPresetPicker(t *testing.T) {
	fallback := &stubPicker{}
	p := NewPresetPicker(PresetFromHandle(0x2a, 9, true), fallback)

	first, err := p.ChooseTarget(context.Background())
	if err != nil {
		t.Fatalf("first ChooseTarget: %v", err)
	}
	if first.Target.Handle != 0x2a || first.LutIndex != 0 || !first.ApplyCorrection {
		t.Fatalf("preset = %+v", first)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback consulted for preset")
	}

	second, _ := p.ChooseTarget(context.Background())
	if fallback.calls != 1 || second.LutIndex != 2 {
		t.Fatalf("second call did not reach fallback")
	}

	if _, err := NewPresetPicker(PresetFromHandle(1, 0, false), nil).ChooseTarget(context.Background()); err != nil {
		t.Fatalf("preset without fallback: %v", err)
	}
	noFallback := NewPresetPicker(Selection{}, nil)
	if _, err := noFallback.ChooseTarget(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("empty preset without fallback = %v, want ErrCancelled", err)
	}
}
