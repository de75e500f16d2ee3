package capture

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeSource struct {
	size    common.Size
	sizeErr error

	mu sync.Mutex
	// live, when set, is the window size after Start.
	live   common.Size
	grabs  int
	closed bool
	gone   atomic.Bool
}

func (s *fakeSource) Size() (common.Size, error) {
	return s.size, s.sizeErr
}

func (s *fakeSource) Grab(f *Frame) error {
	if s.gone.Load() {
		return ErrTargetClosed
	}
	s.mu.Lock()
	s.grabs++
	n := s.grabs
	size := s.live
	if size.Empty() {
		size = s.size
	}
	s.mu.Unlock()

	f.resize(size.Width, size.Height)
	for i := range f.Pixels {
		f.Pixels[i] = byte(n%255 + 1)
	}
	return nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) resizeTo(size common.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = size
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeBackend struct {
	sources map[WindowHandle]*fakeSource
	opened  int
}

func (b *fakeBackend) Open(handle WindowHandle) (Source, error) {
	src, ok := b.sources[handle]
	if !ok {
		return nil, errors.New("no such window")
	}
	b.opened++
	return src, nil
}

func (b *fakeBackend) WindowBounds(handle WindowHandle) (common.Rect, error) {
	src, ok := b.sources[handle]
	if !ok {
		return common.Rect{}, ErrTargetClosed
	}
	return common.Rect{Right: src.size.Width, Bottom: src.size.Height}, nil
}

func (b *fakeBackend) FrameBounds(handle WindowHandle) (common.Rect, error) {
	return b.WindowBounds(handle)
}

func (b *fakeBackend) Close() error { return nil }

type fakeTexture struct {
	width, height int
	first         byte
	pixels        []byte
}

func (t *fakeTexture) View() *wgpu.TextureView { return nil }
func (t *fakeTexture) Width() uint32           { return uint32(t.width) }
func (t *fakeTexture) Height() uint32          { return uint32(t.height) }
func (t *fakeTexture) Depth() uint32           { return 1 }
func (t *fakeTexture) Release()                {}

type fakeFactory struct {
	uploads int
	err     error
}

func (f *fakeFactory) CreateFrameTexture(width, height int, bgra []byte) (renderer.Texture, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads++
	if len(bgra) != width*height*4 {
		return nil, errors.New("pixel buffer does not match frame size")
	}
	return &fakeTexture{width: width, height: height, first: bgra[0], pixels: append([]byte(nil), bgra...)}, nil
}

func newTestBackend() (*fakeBackend, *fakeSource) {
	src := &fakeSource{size: common.Size{Width: 8, Height: 4}}
	return &fakeBackend{sources: map[WindowHandle]*fakeSource{42: src}}, src
}

// waitFrame polls until a frame arrives or the deadline passes.
func waitFrame(t *testing.T, s FrameCaptureSession, f TextureFactory) renderer.Texture {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tex, ok := s.TryGetNextFrame(f); ok {
			return tex
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no frame within deadline")
	return nil
}

func TestStartWithResolvableTarget(t *testing.T) {
	backend, src := newTestBackend()
	s := NewFrameCaptureSession(backend, WithFPS(500))
	defer s.Stop()

	if !s.Start(Target{Handle: 42}) {
		t.Fatalf("Start returned false")
	}
	if !s.IsCapturing() {
		t.Fatalf("IsCapturing false after Start")
	}
	if s.Target().Handle != 42 {
		t.Fatalf("Target = %+v", s.Target())
	}

	tex := waitFrame(t, s, &fakeFactory{})
	if tex.Width() != 8 || tex.Height() != 4 {
		t.Fatalf("frame is %dx%d, want 8x4", tex.Width(), tex.Height())
	}
	if s.FramesCaptured() == 0 {
		t.Fatalf("FramesCaptured not counted")
	}

	s.Stop()
	if !src.isClosed() {
		t.Fatalf("source not closed on Stop")
	}
}

func TestStartUnresolvableTargetStaysIdle(t *testing.T) {
	backend, _ := newTestBackend()
	backend.sources[7] = &fakeSource{}
	backend.sources[8] = &fakeSource{sizeErr: errors.New("minimized")}

	s := NewFrameCaptureSession(backend)
	for _, h := range []WindowHandle{0, 99, 7, 8} {
		if s.Start(Target{Handle: h}) {
			t.Fatalf("Start(%d) returned true", h)
		}
		if s.IsCapturing() {
			t.Fatalf("IsCapturing true after failed Start(%d)", h)
		}
		if _, ok := s.TryGetNextFrame(&fakeFactory{}); ok {
			t.Fatalf("TryGetNextFrame returned a frame while idle")
		}
	}
	if !backend.sources[7].isClosed() || !backend.sources[8].isClosed() {
		t.Fatalf("sources without a size were not closed")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	backend, _ := newTestBackend()
	s := NewFrameCaptureSession(backend, WithFPS(500))
	s.Stop()

	s.Start(Target{Handle: 42})
	s.Stop()
	s.Stop()
	if s.IsCapturing() {
		t.Fatalf("IsCapturing true after Stop")
	}
	if _, ok := s.TryGetNextFrame(&fakeFactory{}); ok {
		t.Fatalf("frame returned after Stop")
	}
	if s.Target().Valid() {
		t.Fatalf("target kept after Stop")
	}
}

func TestTargetCloseStopsSession(t *testing.T) {
	backend, src := newTestBackend()
	s := NewFrameCaptureSession(backend, WithFPS(500))
	s.Start(Target{Handle: 42})

	src.gone.Store(true)
	deadline := time.Now().Add(2 * time.Second)
	for s.IsCapturing() {
		if time.Now().After(deadline) {
			t.Fatalf("session still capturing after target closed")
		}
		time.Sleep(time.Millisecond)
	}
	if !src.isClosed() {
		t.Fatalf("source not closed after target closed")
	}
}

func TestTryGetNextFrameUploadFailure(t *testing.T) {
	backend, _ := newTestBackend()
	s := NewFrameCaptureSession(backend, WithFPS(500))
	defer s.Stop()
	s.Start(Target{Handle: 42})

	failing := &fakeFactory{err: errors.New("device lost")}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.TryGetNextFrame(failing); ok {
			t.Fatalf("failed upload reported a frame")
		}
		time.Sleep(time.Millisecond)
	}
	// The pool still cycles after failed uploads.
	waitFrame(t, s, &fakeFactory{})
}

func TestFramePoolDropsOldest(t *testing.T) {
	p := newFramePool(PoolDepth, 1, 1)

	a := p.acquire()
	a.Pixels[0] = 1
	p.publish(a)
	b := p.acquire()
	b.Pixels[0] = 2
	p.publish(b)

	// No free frame left: the producer recycles the oldest ready one.
	c := p.acquire()
	if c != a {
		t.Fatalf("acquire did not recycle the oldest ready frame")
	}
	c.Pixels[0] = 3
	p.publish(c)

	f := p.latest()
	if f == nil || f.Pixels[0] != 3 {
		t.Fatalf("latest did not return the newest frame")
	}
	if p.latest() != nil {
		t.Fatalf("older frame still queued after latest")
	}
	if p.acquire() == nil {
		t.Fatalf("older frame was not recycled to the free list")
	}
	if p.acquire() != nil {
		t.Fatalf("pool handed out a frame the consumer holds")
	}
	p.recycle(f)
	p.drain()
}

func TestResizedTargetKeepsStartSize(t *testing.T) {
	backend, src := newTestBackend()
	s := NewFrameCaptureSession(backend, WithFPS(500))
	defer s.Stop()
	s.Start(Target{Handle: 42})
	waitFrame(t, s, &fakeFactory{})

	// 8x4 at Start, then shrunk to 4x2: the live content sits in the top-left corner.
	src.resizeTo(common.Size{Width: 4, Height: 2})
	deadline := time.Now().Add(2 * time.Second)
	for {
		tex := waitFrame(t, s, &fakeFactory{}).(*fakeTexture)
		if tex.width != 8 || tex.height != 4 {
			t.Fatalf("frame is %dx%d after shrink, want 8x4", tex.width, tex.height)
		}
		if tex.pixels[len(tex.pixels)-1] == 0 {
			if tex.pixels[0] == 0 || tex.pixels[3*4] == 0 || tex.pixels[8*4] == 0 {
				t.Fatalf("live region not copied: %v", tex.pixels[:16])
			}
			if tex.pixels[4*4] != 0 || tex.pixels[2*8*4] != 0 {
				t.Fatalf("pixels outside the live region not cleared")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no frame captured after the shrink")
		}
	}

	src.resizeTo(common.Size{Width: 16, Height: 8})
	tex := waitFrame(t, s, &fakeFactory{}).(*fakeTexture)
	if tex.width != 8 || tex.height != 4 {
		t.Fatalf("frame is %dx%d after growth, want 8x4", tex.width, tex.height)
	}
}

func TestFrameFit(t *testing.T) {
	src := &Frame{}
	src.resize(2, 1)
	for i := range src.Pixels {
		src.Pixels[i] = 9
	}

	f := &Frame{}
	f.resize(3, 2)
	for i := range f.Pixels {
		f.Pixels[i] = 1
	}
	f.fit(src)
	if f.Width != 3 || f.Height != 2 {
		t.Fatalf("fit resized the frame to %dx%d", f.Width, f.Height)
	}
	for i, b := range f.Pixels {
		want := byte(0)
		if i < 2*4 {
			want = 9
		}
		if b != want {
			t.Fatalf("byte %d = %d, want %d", i, b, want)
		}
	}

	big := &Frame{}
	big.resize(4, 4)
	for i := range big.Pixels {
		big.Pixels[i] = byte(i / 4)
	}
	f.fit(big)
	// Row 1 of the cropped frame starts at texel 4 of the source.
	if f.Pixels[3*4] != 4 || f.Pixels[2*4] != 2 {
		t.Fatalf("crop copied the wrong texels: %v", f.Pixels)
	}
}
