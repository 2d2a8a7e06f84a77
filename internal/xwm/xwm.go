// Package xwm connects wm.WM to an X server. The WM is owned by the Loop's
// goroutine; everything else reaches it through Loop.Do.
package xwm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/ItsNotGoodName/x-tilewm/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/k0kubun/pp"
	"github.com/thejerf/suture/v4"
)

var ErrAnotherWM = errors.New("another window manager is running")

type Config struct {
	BarHeight int
	Border    int
	Colors    Colors
	WM        wm.Options
}

type command struct {
	fn   func(w *wm.WM) error
	errC chan error
}

type Loop struct {
	Events *bus.Hub[wm.Event]

	config Config
	cmdC   chan command
}

func NewLoop(config Config) *Loop {
	events := config.WM.Events
	if events == nil {
		events = bus.NewHub[wm.Event]()
		config.WM.Events = events
	}

	return &Loop{
		Events: events,
		config: config,
		cmdC:   make(chan command),
	}
}

func (l *Loop) String() string {
	return "xwm.Loop"
}

// Do runs fn on the loop's goroutine and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(w *wm.WM) error) error {
	cmd := command{fn: fn, errC: make(chan error, 1)}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case l.cmdC <- cmd:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-cmd.errC:
		return err
	}
}

func (l *Loop) Serve(ctx context.Context) error {
	// X11 connection
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	// X11 setup
	screen := xproto.Setup(conn).DefaultScreen(conn)

	cursor, err := xcursor.Create(conn, xcursor.LeftPtr)
	if err != nil {
		return err
	}

	if err := xproto.ChangeWindowAttributesChecked(conn, screen.Root,
		xproto.CwEventMask|xproto.CwCursor, // 1, 2
		[]uint32{
			xproto.EventMaskSubstructureRedirect |
				xproto.EventMaskSubstructureNotify |
				xproto.EventMaskStructureNotify, // 1
			uint32(cursor), // 2
		}).Check(); err != nil {
		var accessErr xproto.AccessError
		if errors.As(err, &accessErr) {
			// Restarting will not help.
			return errors.Join(ErrAnotherWM, suture.ErrTerminateSupervisorTree)
		}
		return err
	}

	display := NewDisplay(conn, screen.Root, l.config.BarHeight, l.config.Border, l.config.Colors)
	w := wm.New(display, geom.Rect{W: int(screen.WidthInPixels), H: int(screen.HeightInPixels)}, l.config.WM)

	h := handler{conn: conn, root: screen.Root, display: display, wm: w}
	if err := h.scan(); err != nil {
		return fmt.Errorf("failed to scan windows: %w", err)
	}

	eventC := make(chan any)
	go ReceiveEvents(ctx, conn, eventC)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-l.cmdC:
			cmd.errC <- cmd.fn(w)
		case ev, ok := <-eventC:
			if !ok {
				return errors.New("x connection closed")
			}

			h.handle(ctx, ev)
		}
	}
}

// ReceiveEvents pumps X events and errors into eventC until the connection
// closes.
func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- any) {
	defer close(eventC)
	slog := slog.With("func", "xwm.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error")
			return
		}

		var msg any = ev
		if err != nil {
			msg = err
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- msg:
		}
	}
}

type handler struct {
	conn    *xgb.Conn
	root    xproto.Window
	display *Display
	wm      *wm.WM
}

// scan manages the windows that were mapped before we started.
func (h handler) scan() error {
	tree, err := xproto.QueryTree(h.conn, h.root).Reply()
	if err != nil {
		return err
	}

	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(h.conn, win).Reply()
		if err != nil || attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		h.manage(win)
	}

	return nil
}

func (h handler) handle(ctx context.Context, ev any) {
	switch ev := ev.(type) {
	case xgb.Error:
		slog.Debug("X error", "error", ev)
	case xproto.MapRequestEvent:
		attrs, err := xproto.GetWindowAttributes(h.conn, ev.Window).Reply()
		if err == nil && attrs.OverrideRedirect {
			xproto.MapWindow(h.conn, ev.Window)
			return
		}
		h.manage(ev.Window)
		xproto.MapWindow(h.conn, ev.Window)
	case xproto.UnmapNotifyEvent:
		h.unmanage(ev.Window)
	case xproto.DestroyNotifyEvent:
		h.unmanage(ev.Window)
	case xproto.ConfigureRequestEvent:
		h.configureRequest(ev)
	case xproto.ConfigureNotifyEvent:
		if ev.Window == h.root {
			h.wm.SetScreen(geom.Rect{W: int(ev.Width), H: int(ev.Height)})
		}
	case xproto.MapNotifyEvent, xproto.CreateNotifyEvent:
	default:
		if slog.Default().Enabled(ctx, slog.LevelDebug) {
			slog.Debug("Unhandled event", "event", pp.Sprint(ev))
		}
	}
}

func (h handler) manage(win xproto.Window) {
	if _, ok := h.wm.Client(wm.Window(win)); ok {
		return
	}

	r := geom.Rect{W: 1, H: 1}
	if g, err := xproto.GetGeometry(h.conn, xproto.Drawable(win)).Reply(); err == nil {
		r = geom.FromX(xproto.Rectangle{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height})
	}

	var transientFor wm.Window
	prop, err := xproto.GetProperty(h.conn, false, win, xproto.AtomWmTransientFor,
		xproto.GetPropertyTypeAny, 0, 1).Reply()
	if err == nil && len(prop.Value) == 4 {
		transientFor = wm.Window(xgb.Get32(prop.Value))
	}

	xproto.ChangeWindowAttributes(h.conn, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange})

	h.wm.Manage(wm.Window(win), r, transientFor)
}

func (h handler) unmanage(win xproto.Window) {
	if h.wm.Unmanage(wm.Window(win)) {
		h.display.forget(wm.Window(win))
	}
}

func (h handler) configureRequest(ev xproto.ConfigureRequestEvent) {
	if c, ok := h.wm.Client(wm.Window(ev.Window)); ok {
		// Managed windows keep their place. Tell them where that is.
		r := c.Rect
		if len(c.Frames) > 0 {
			if f, ok := h.wm.Frame(c.Frames[c.Sel]); ok {
				r = h.display.clientRect(f.Rect)
			}
		}
		xr := geom.ToX(r)
		cne := xproto.ConfigureNotifyEvent{
			Event:  ev.Window,
			Window: ev.Window,
			X:      xr.X,
			Y:      xr.Y,
			Width:  xr.Width,
			Height: xr.Height,
		}
		xproto.SendEvent(h.conn, false, ev.Window, xproto.EventMaskStructureNotify, string(cne.Bytes()))
		return
	}

	mask, values := uint16(0), []uint32(nil)
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(ev.X))
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(ev.Y))
	}
	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(ev.Width))
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(ev.Height))
	}
	if ev.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(ev.BorderWidth))
	}
	if ev.ValueMask&xproto.ConfigWindowSibling != 0 {
		mask |= xproto.ConfigWindowSibling
		values = append(values, uint32(ev.Sibling))
	}
	if ev.ValueMask&xproto.ConfigWindowStackMode != 0 {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, uint32(ev.StackMode))
	}
	xproto.ConfigureWindow(h.conn, ev.Window, mask, values)
}
