package presentation

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeTarget struct {
	width, height uint32
	released      bool
}

func (t *fakeTarget) View() *wgpu.TextureView { return nil }
func (t *fakeTarget) Width() uint32           { return t.width }
func (t *fakeTarget) Height() uint32          { return t.height }
func (t *fakeTarget) Depth() uint32           { return 1 }
func (t *fakeTarget) Release()                { t.released = true }

type fakeSwapChain struct {
	width, height int
	acquired      []*fakeTarget
	presents      int
	configureErr  error
}

func (f *fakeSwapChain) Configure(width, height int) error {
	if f.configureErr != nil {
		return f.configureErr
	}
	f.width, f.height = width, height
	return nil
}

func (f *fakeSwapChain) AcquireBackBuffer() (renderer.Texture, error) {
	t := &fakeTarget{width: uint32(f.width), height: uint32(f.height)}
	f.acquired = append(f.acquired, t)
	return t, nil
}

func (f *fakeSwapChain) Present() error {
	f.presents++
	return nil
}

func TestRenderTargetViewIsCached(t *testing.T) {
	sc := &fakeSwapChain{width: 800, height: 600}
	s := NewPresentationSurface(sc, 800, 600)

	a, err := s.RenderTargetView()
	if err != nil {
		t.Fatalf("RenderTargetView: %v", err)
	}
	b, _ := s.RenderTargetView()
	if a != b || len(sc.acquired) != 1 {
		t.Fatalf("view not cached: acquired %d", len(sc.acquired))
	}
}

func TestResizeRecreatesView(t *testing.T) {
	sc := &fakeSwapChain{width: 800, height: 600}
	s := NewPresentationSurface(sc, 800, 600)

	old, _ := s.RenderTargetView()
	if err := s.Resize(1024, 512); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !old.(*fakeTarget).released {
		t.Fatalf("old view not released on resize")
	}

	v, err := s.RenderTargetView()
	if err != nil {
		t.Fatalf("RenderTargetView: %v", err)
	}
	if v == old {
		t.Fatalf("view reused across resize")
	}
	if v.Width() != 1024 || v.Height() != 512 {
		t.Fatalf("view is %dx%d, want 1024x512", v.Width(), v.Height())
	}
	if w, h := s.Size(); w != 1024 || h != 512 {
		t.Fatalf("Size = %dx%d", w, h)
	}
	if s.BufferCount() != 2 {
		t.Fatalf("BufferCount = %d", s.BufferCount())
	}
}

func TestResizeRejectsInvalidSize(t *testing.T) {
	sc := &fakeSwapChain{width: 800, height: 600}
	s := NewPresentationSurface(sc, 800, 600)
	v, _ := s.RenderTargetView()

	for _, size := range [][2]int{{0, 600}, {800, 0}, {-1, -1}} {
		if err := s.Resize(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("Resize(%d, %d) = %v, want ErrInvalidSize", size[0], size[1], err)
		}
	}
	if v.(*fakeTarget).released {
		t.Fatalf("invalid resize touched the cached view")
	}
	if w, h := s.Size(); w != 800 || h != 600 {
		t.Fatalf("invalid resize changed size to %dx%d", w, h)
	}
}

func TestResizeKeepsSizeOnConfigureError(t *testing.T) {
	sc := &fakeSwapChain{width: 800, height: 600, configureErr: errors.New("lost")}
	s := NewPresentationSurface(sc, 800, 600)
	if err := s.Resize(640, 480); err == nil {
		t.Fatalf("expected configure error")
	}
	if w, h := s.Size(); w != 800 || h != 600 {
		t.Fatalf("size changed to %dx%d after failed configure", w, h)
	}
}

func TestPresentDropsView(t *testing.T) {
	sc := &fakeSwapChain{width: 800, height: 600}
	s := NewPresentationSurface(sc, 800, 600)

	v, _ := s.RenderTargetView()
	if err := s.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if sc.presents != 1 || !v.(*fakeTarget).released {
		t.Fatalf("present did not flip and drop the view")
	}
	next, _ := s.RenderTargetView()
	if next == v || len(sc.acquired) != 2 {
		t.Fatalf("next frame reused the presented view")
	}
}
