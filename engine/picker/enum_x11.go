//go:build linux

package picker

import (
	"encoding/binary"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/capture"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
)

// x11Enumerator reads the EWMH client list of the window manager.
type x11Enumerator struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewEnumerator connects to the X server named by $DISPLAY.
func NewEnumerator() (Enumerator, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	return &x11Enumerator{
		conn: conn,
		root: xproto.Setup(conn).DefaultScreen(conn).Root,
	}, nil
}

func (e *x11Enumerator) atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(e.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

func (e *x11Enumerator) property(win xproto.Window, name string, typ xproto.Atom) ([]byte, error) {
	atom, err := e.atom(name)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(e.conn, false, win, atom, typ, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, err
	}
	if reply.ValueLen == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}
	return reply.Value, nil
}

func (e *x11Enumerator) Windows() ([]WindowInfo, error) {
	log := logger.WithComponent("picker")

	value, err := e.property(e.root, "_NET_CLIENT_LIST", xproto.GetPropertyTypeAny)
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST: %w", err)
	}

	windows := make([]WindowInfo, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		win := xproto.Window(binary.LittleEndian.Uint32(value[i:]))
		info, err := e.windowInfo(win)
		if err != nil {
			log.Debug().Uint32("window", uint32(win)).Err(err).Msg("skipping window")
			continue
		}
		windows = append(windows, info)
	}
	return windows, nil
}

func (e *x11Enumerator) windowInfo(win xproto.Window) (WindowInfo, error) {
	attrs, err := xproto.GetWindowAttributes(e.conn, win).Reply()
	if err != nil {
		return WindowInfo{}, err
	}
	geom, err := xproto.GetGeometry(e.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return WindowInfo{}, err
	}

	info := WindowInfo{
		Handle:  capture.WindowHandle(win),
		Visible: attrs.MapState == xproto.MapStateViewable,
		Size:    common.Size{Width: int(geom.Width), Height: int(geom.Height)},
	}
	if title, err := e.property(win, "_NET_WM_NAME", xproto.GetPropertyTypeAny); err == nil {
		info.Title = string(title)
	} else if title, err := e.property(win, "WM_NAME", xproto.GetPropertyTypeAny); err == nil {
		info.Title = string(title)
	}
	if pid, err := e.property(win, "_NET_WM_PID", xproto.AtomCardinal); err == nil && len(pid) >= 4 {
		info.PID = int32(binary.LittleEndian.Uint32(pid))
		info.Process = processName(info.PID)
	}
	return info, nil
}

func (e *x11Enumerator) Close() error {
	e.conn.Close()
	return nil
}
