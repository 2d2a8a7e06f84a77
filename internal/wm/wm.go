// Package wm is the tiling core: tags hold areas, areas hold frames and
// every frame binds one client to one area.
//
// Everything here is owned by a single goroutine. Callers outside of it go
// through xwm.Loop.Do.
package wm

import (
	"fmt"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// Display is what the core needs from the windowing system.
type Display interface {
	// ResizeClient moves and resizes the client so its frame covers r and
	// returns the rectangle that was actually applied. Force reapplies the
	// geometry even when it did not change.
	ResizeClient(c *Client, r geom.Rect, force bool) geom.Rect
	FocusClient(c *Client)
	DrawClient(c *Client)
	BarHeight() int
}

type Options struct {
	Border int
	Mode   Mode
	// Tags are created up front. The first one is viewed.
	Tags []string
	// Events is shared when set, so subscribers can outlive one WM.
	Events *bus.Hub[Event]
}

type (
	Window  uint32
	FrameID uint64
	AreaID  uint64
)

func (w Window) String() string {
	return fmt.Sprintf("%#x", uint32(w))
}

type idGen struct {
	last uint64
}

func (g *idGen) next() uint64 {
	g.last++
	return g.last
}

type Event struct {
	Name string
	Args []string
}

func (e Event) String() string {
	if len(e.Args) == 0 {
		return e.Name
	}
	return e.Name + " " + strings.Join(e.Args, " ")
}

type WM struct {
	Events *bus.Hub[Event]

	display Display
	screen  geom.Rect
	opts    Options

	areaIDs  idGen
	frameIDs idGen

	frames  map[FrameID]*Frame
	areas   map[AreaID]*Area
	clients map[Window]*Client
	tags    map[string]*Tag
	order   []string
	sel     string
}

func New(display Display, screen geom.Rect, opts Options) *WM {
	if len(opts.Tags) == 0 {
		opts.Tags = []string{"1"}
	}
	if opts.Events == nil {
		opts.Events = bus.NewHub[Event]()
	}

	wm := &WM{
		Events:  opts.Events,
		display: display,
		screen:  screen,
		opts:    opts,
		frames:  make(map[FrameID]*Frame),
		areas:   make(map[AreaID]*Area),
		clients: make(map[Window]*Client),
		tags:    make(map[string]*Tag),
	}
	for _, name := range opts.Tags {
		wm.NewTag(name)
	}
	wm.View(opts.Tags[0])

	return wm
}

func (wm *WM) publish(name string, args ...string) {
	wm.Events.Publish(Event{Name: name, Args: args})
}

// barRect is the status bar strip along the bottom of the screen.
func (wm *WM) barRect() geom.Rect {
	bh := wm.display.BarHeight()
	return geom.Rect{
		X: wm.screen.X,
		Y: wm.screen.Y + wm.screen.H - bh,
		W: wm.screen.W,
		H: bh,
	}
}

func (wm *WM) Screen() geom.Rect {
	return wm.screen
}

// SetScreen re-tiles every tag for a new screen size.
func (wm *WM) SetScreen(r geom.Rect) {
	if r == wm.screen {
		return
	}
	wm.screen = r
	for _, name := range wm.order {
		wm.ArrangeTag(wm.tags[name], true)
	}
}

func (wm *WM) Client(win Window) (*Client, bool) {
	c, ok := wm.clients[win]
	return c, ok
}

func (wm *WM) Area(id AreaID) (*Area, bool) {
	a, ok := wm.areas[id]
	return a, ok
}

func (wm *WM) Frame(id FrameID) (*Frame, bool) {
	f, ok := wm.frames[id]
	return f, ok
}

func (wm *WM) Tag(name string) (*Tag, bool) {
	t, ok := wm.tags[name]
	return t, ok
}

// SelectedTag returns the tag being viewed.
func (wm *WM) SelectedTag() *Tag {
	return wm.tags[wm.sel]
}

// SelectedArea returns the selected area of the viewed tag.
func (wm *WM) SelectedArea() *Area {
	t := wm.SelectedTag()
	return wm.areas[t.Areas[t.Sel]]
}

// Selected returns the client owning the selected frame of the selected
// area, or nil when that area is empty.
func (wm *WM) Selected() *Client {
	a := wm.SelectedArea()
	if len(a.Frames) == 0 {
		return nil
	}
	return wm.clients[wm.frames[a.Frames[a.Sel]].Client]
}

func (wm *WM) visible(a *Area) bool {
	return a.Tag == wm.sel
}

func (wm *WM) resizeFrame(f *Frame, r geom.Rect, force bool) {
	if !wm.visible(wm.areas[f.Area]) {
		f.Rect = r
		return
	}
	f.Rect = wm.display.ResizeClient(wm.clients[f.Client], r, force)
}

// focus selects the client's current frame in its area and tag, then hands
// it input focus.
func (wm *WM) focus(c *Client) {
	if len(c.Frames) == 0 {
		return
	}

	f := wm.frames[c.Frames[c.Sel]]
	a := wm.areas[f.Area]
	t := wm.tags[a.Tag]

	old := a.Sel
	a.Sel = wm.frameIndex(a, f)
	if a.Mode == ModeStack && old != a.Sel && wm.areaIndex(a) > 0 {
		wm.arrangeArea(a)
	}

	if i := wm.areaIndex(a); i != t.Sel {
		t.Sel = i
		if wm.visible(a) {
			wm.publish("FocusArea", fmt.Sprint(i))
		}
	}

	if wm.visible(a) {
		wm.display.FocusClient(c)
	}
}

func (wm *WM) focusSelected() {
	if c := wm.Selected(); c != nil {
		wm.display.FocusClient(c)
	}
}
