package capture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
)

// frameCaptureSession is the implementation of the FrameCaptureSession interface.
type frameCaptureSession struct {
	mu sync.Mutex

	backend  Backend
	interval time.Duration

	target    Target
	source    Source
	pool      *framePool
	capturing bool

	// closed is set by the producer when the source reports ErrTargetClosed.
	closed atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}

	framesCaptured atomic.Uint64
}

// FrameCaptureSession captures one window at a time. States: Idle and Capturing.
//
// Start, IsCapturing, TryGetNextFrame and Stop are called from the render goroutine; frames are
// produced on a goroutine owned by the session.
type FrameCaptureSession interface {
	// Start begins capturing target, stopping any previous capture first.
	// The session stays Idle when the handle is zero, the window cannot be opened or it reports no size.
	//
	// Parameters:
	//   - target: the window to capture
	//
	// Returns:
	//   - bool: true if the session is now Capturing
	Start(target Target) bool

	// IsCapturing reports whether the session is Capturing. A session whose window closed stops
	// itself here and reports false.
	//
	// Returns:
	//   - bool: true while capturing
	IsCapturing() bool

	// TryGetNextFrame uploads the newest captured frame into a new texture without blocking.
	// Frames always have the target's size at Start: a shrunk window fills the top-left corner and
	// the rest is cleared, a grown window is cropped. The frame buffer goes back to the pool before returning.
	//
	// Parameters:
	//   - factory: creates the BGRA8 texture the frame is copied into
	//
	// Returns:
	//   - renderer.Texture: the uploaded frame, owned by the caller
	//   - bool: false when no new frame is queued or the upload failed
	TryGetNextFrame(factory TextureFactory) (renderer.Texture, bool)

	// Stop stops the producer, closes the source and discards queued frames. Safe to call repeatedly.
	Stop()

	// Target returns the window being captured, or the zero Target when Idle.
	//
	// Returns:
	//   - Target: the current target
	Target() Target

	// FramesCaptured returns the number of frames grabbed since the session was created.
	//
	// Returns:
	//   - uint64: the frame count
	FramesCaptured() uint64
}

var _ FrameCaptureSession = &frameCaptureSession{}

// NewFrameCaptureSession creates an Idle session on the given backend.
//
// Parameters:
//   - backend: the platform capture backend
//   - opts: a variadic list of SessionBuilderOption functions
//
// Returns:
//   - FrameCaptureSession: the session
func NewFrameCaptureSession(backend Backend, opts ...SessionBuilderOption) FrameCaptureSession {
	s := &frameCaptureSession{
		backend:  backend,
		interval: time.Second / 60,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *frameCaptureSession) Start(target Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.WithComponent("capture")
	s.stopLocked()

	if !target.Valid() {
		log.Debug().Msg("start ignored: no target")
		return false
	}
	src, err := s.backend.Open(target.Handle)
	if err != nil {
		log.Warn().Err(err).Uint64("window", uint64(target.Handle)).Msg("could not open capture target")
		return false
	}
	size, err := src.Size()
	if err != nil || size.Empty() {
		log.Warn().Err(err).Uint64("window", uint64(target.Handle)).Msg("capture target has no size")
		_ = src.Close()
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.target = target
	s.source = src
	s.pool = newFramePool(PoolDepth, size.Width, size.Height)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.closed.Store(false)
	s.capturing = true

	go s.produce(ctx, src, s.pool, s.done)

	log.Info().
		Uint64("window", uint64(target.Handle)).
		Int("width", size.Width).
		Int("height", size.Height).
		Msg("capture started")
	return true
}

// produce grabs frames at the session interval until cancelled or the target closes.
func (s *frameCaptureSession) produce(ctx context.Context, src Source, pool *framePool, done chan struct{}) {
	defer close(done)

	log := logger.WithComponent("capture")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Pool frames keep the size the target had at Start; each grab lands in scratch first.
	scratch := &Frame{}
	for {
		if f := pool.acquire(); f != nil {
			err := src.Grab(scratch)
			if err == nil {
				f.fit(scratch)
			}
			switch {
			case errors.Is(err, ErrTargetClosed):
				pool.recycle(f)
				s.closed.Store(true)
				log.Info().Msg("capture target closed")
				return
			case err != nil:
				pool.recycle(f)
				log.Debug().Err(err).Msg("frame grab failed")
			default:
				s.framesCaptured.Add(1)
				pool.publish(f)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *frameCaptureSession) IsCapturing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capturing && s.closed.Load() {
		s.stopLocked()
	}
	return s.capturing
}

func (s *frameCaptureSession) TryGetNextFrame(factory TextureFactory) (renderer.Texture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capturing {
		return nil, false
	}
	f := s.pool.latest()
	if f == nil {
		return nil, false
	}
	defer s.pool.recycle(f)

	tex, err := factory.CreateFrameTexture(f.Width, f.Height, f.Pixels)
	if err != nil {
		logger.WithComponent("capture").Warn().Err(err).Msg("frame upload failed")
		return nil, false
	}
	return tex, true
}

func (s *frameCaptureSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *frameCaptureSession) stopLocked() {
	if !s.capturing {
		return
	}
	s.cancel()
	<-s.done

	if err := s.source.Close(); err != nil {
		logger.WithComponent("capture").Debug().Err(err).Msg("closing capture source")
	}
	s.pool.drain()

	s.source = nil
	s.pool = nil
	s.cancel = nil
	s.done = nil
	s.target = Target{}
	s.capturing = false
	logger.WithComponent("capture").Info().Msg("capture stopped")
}

func (s *frameCaptureSession) Target() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *frameCaptureSession) FramesCaptured() uint64 {
	return s.framesCaptured.Load()
}
