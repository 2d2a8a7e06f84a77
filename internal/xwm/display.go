package xwm

import (
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Display drives client windows on behalf of wm.WM. A frame is the client
// window, its border and the bar drawn above it.
type Display struct {
	conn      *xgb.Conn
	root      xproto.Window
	barHeight int
	border    int
	colors    Colors

	applied map[wm.Window]geom.Rect
	focused wm.Window
}

type Colors struct {
	Focus  uint32
	Normal uint32
}

func NewDisplay(conn *xgb.Conn, root xproto.Window, barHeight, border int, colors Colors) *Display {
	return &Display{
		conn:      conn,
		root:      root,
		barHeight: barHeight,
		border:    border,
		colors:    colors,
		applied:   make(map[wm.Window]geom.Rect),
	}
}

// clientRect is the window geometry inside a frame.
func (d *Display) clientRect(r geom.Rect) geom.Rect {
	return geom.Rect{
		X: r.X,
		Y: r.Y + d.barHeight,
		W: max(r.W-2*d.border, 1),
		H: max(r.H-d.barHeight-d.border, 1),
	}
}

func (d *Display) ResizeClient(c *wm.Client, r geom.Rect, force bool) geom.Rect {
	if old, ok := d.applied[c.Win]; ok && old == r && !force {
		return r
	}
	d.applied[c.Win] = r

	cr := geom.ToX(d.clientRect(r))
	err := xproto.ConfigureWindowChecked(d.conn, xproto.Window(c.Win),
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowBorderWidth,
		[]uint32{
			uint32(cr.X),
			uint32(cr.Y),
			uint32(cr.Width),
			uint32(cr.Height),
			uint32(d.border),
		}).Check()
	if err != nil {
		slog.Debug("Failed to configure window", "window", c.Win, "error", err)
	}

	return r
}

func (d *Display) FocusClient(c *wm.Client) {
	if old := d.focused; old != c.Win {
		d.focused = c.Win
		d.drawBorder(old)
	}

	err := xproto.SetInputFocusChecked(d.conn, xproto.InputFocusPointerRoot, xproto.Window(c.Win), xproto.TimeCurrentTime).Check()
	if err != nil {
		slog.Debug("Failed to focus window", "window", c.Win, "error", err)
	}
	d.drawBorder(c.Win)
}

func (d *Display) DrawClient(c *wm.Client) {
	d.drawBorder(c.Win)
}

func (d *Display) drawBorder(win wm.Window) {
	if win == 0 {
		return
	}

	color := d.colors.Normal
	if win == d.focused {
		color = d.colors.Focus
	}
	xproto.ChangeWindowAttributes(d.conn, xproto.Window(win), xproto.CwBorderPixel, []uint32{color})
}

func (d *Display) BarHeight() int {
	return d.barHeight
}

// forget drops what is known about a window that went away.
func (d *Display) forget(win wm.Window) {
	delete(d.applied, win)
	if d.focused == win {
		d.focused = 0
	}
}
