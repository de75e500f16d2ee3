//go:build linux

package capture

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
)

// EnableDPIAwareness is a no-op on X11, where window geometry is reported in device pixels.
func EnableDPIAwareness() {}

// x11Backend captures windows through the X server, using the Composite extension when present
// so obscured windows still render.
type x11Backend struct {
	mu               sync.Mutex
	conn             *xgb.Conn
	root             xproto.Window
	compositeEnabled bool
}

// NewBackend connects to the X server named by $DISPLAY.
//
// Returns:
//   - Backend: the platform backend
//   - error: an error if the X server is unreachable
func NewBackend() (Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	b := &x11Backend{
		conn: conn,
		root: xproto.Setup(conn).DefaultScreen(conn).Root,
	}
	if err := composite.Init(conn); err != nil {
		logger.WithComponent("capture").Warn().Err(err).Msg("Composite extension not available, obscured windows may capture blank")
	} else {
		b.compositeEnabled = true
	}
	return b, nil
}

func (b *x11Backend) geometry(win xproto.Window) (*xproto.GetGeometryReply, error) {
	geom, err := xproto.GetGeometry(b.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, fmt.Errorf("window 0x%X: %w", uint32(win), ErrTargetClosed)
	}
	return geom, nil
}

func (b *x11Backend) WindowBounds(handle WindowHandle) (common.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	win := xproto.Window(handle)
	geom, err := b.geometry(win)
	if err != nil {
		return common.Rect{}, err
	}
	origin, err := xproto.TranslateCoordinates(b.conn, win, b.root, 0, 0).Reply()
	if err != nil {
		return common.Rect{}, fmt.Errorf("translating window origin: %w", err)
	}
	left, top := int(origin.DstX), int(origin.DstY)
	return common.Rect{
		Left:   left,
		Top:    top,
		Right:  left + int(geom.Width),
		Bottom: top + int(geom.Height),
	}, nil
}

// FrameBounds equals WindowBounds on X11: decorations live in the window manager's parent window.
func (b *x11Backend) FrameBounds(handle WindowHandle) (common.Rect, error) {
	return b.WindowBounds(handle)
}

func (b *x11Backend) Open(handle WindowHandle) (Source, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	win := xproto.Window(handle)
	if _, err := b.geometry(win); err != nil {
		return nil, err
	}
	s := &x11Source{backend: b, win: win}
	if b.compositeEnabled {
		if err := composite.RedirectWindowChecked(b.conn, win, composite.RedirectAutomatic).Check(); err != nil {
			logger.WithComponent("capture").Debug().Err(err).Msg("composite redirect failed, capturing directly")
		} else {
			s.redirected = true
		}
	}
	return s, nil
}

func (b *x11Backend) Close() error {
	b.conn.Close()
	return nil
}

type x11Source struct {
	backend    *x11Backend
	win        xproto.Window
	redirected bool
}

func (s *x11Source) Size() (common.Size, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	geom, err := s.backend.geometry(s.win)
	if err != nil {
		return common.Size{}, err
	}
	return common.Size{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

// drawable names the window's offscreen pixmap when redirected. The pixmap is re-named per grab
// because the server allocates a new one whenever the window is resized.
func (s *x11Source) drawable() (xproto.Drawable, func()) {
	conn := s.backend.conn
	if !s.redirected {
		return xproto.Drawable(s.win), func() {}
	}
	pixmap, err := xproto.NewPixmapId(conn)
	if err != nil {
		return xproto.Drawable(s.win), func() {}
	}
	if err := composite.NameWindowPixmapChecked(conn, s.win, pixmap).Check(); err != nil {
		return xproto.Drawable(s.win), func() {}
	}
	return xproto.Drawable(pixmap), func() { xproto.FreePixmap(conn, pixmap) }
}

func (s *x11Source) Grab(f *Frame) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	geom, err := s.backend.geometry(s.win)
	if err != nil {
		return err
	}
	drawable, free := s.drawable()
	defer free()

	reply, err := xproto.GetImage(
		s.backend.conn,
		xproto.ImageFormatZPixmap,
		drawable,
		0, 0,
		geom.Width, geom.Height,
		0xffffffff,
	).Reply()
	if err != nil {
		return fmt.Errorf("failed to get image: %w", err)
	}

	width, height := int(geom.Width), int(geom.Height)
	if len(reply.Data) < width*height*4 {
		return fmt.Errorf("short image: %d bytes for %dx%d", len(reply.Data), width, height)
	}
	f.resize(width, height)
	copy(f.Pixels, reply.Data)
	forceOpaque(f.Pixels)
	return nil
}

func (s *x11Source) Close() error {
	if !s.redirected {
		return nil
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	composite.UnredirectWindow(s.backend.conn, s.win, composite.RedirectAutomatic)
	return nil
}
