package wm

import (
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct {
	bh      int
	hint    func(geom.Rect) geom.Rect
	resized map[Window]geom.Rect
	focused []Window
	drawn   []Window
}

func (d *fakeDisplay) ResizeClient(c *Client, r geom.Rect, force bool) geom.Rect {
	if d.hint != nil {
		r = d.hint(r)
	}
	d.resized[c.Win] = r
	return r
}

func (d *fakeDisplay) FocusClient(c *Client) {
	d.focused = append(d.focused, c.Win)
}

func (d *fakeDisplay) DrawClient(c *Client) {
	d.drawn = append(d.drawn, c.Win)
}

func (d *fakeDisplay) BarHeight() int {
	return d.bh
}

func newTestWM(t *testing.T, screen geom.Rect) (*WM, *fakeDisplay) {
	t.Helper()
	d := &fakeDisplay{bh: 20, resized: make(map[Window]geom.Rect)}
	return New(d, screen, Options{Border: 1}), d
}

func manageN(wm *WM, wins ...Window) {
	for _, w := range wins {
		wm.Manage(w, geom.Rect{W: 100, H: 100}, 0)
	}
}

func frameOf(t *testing.T, wm *WM, win Window) *Frame {
	t.Helper()
	c, ok := wm.Client(win)
	require.True(t, ok)
	require.NotEmpty(t, c.Frames)
	return wm.frames[c.Frames[c.Sel]]
}

func heights(wm *WM, a *Area) []int {
	var hs []int
	for _, id := range a.Frames {
		hs = append(hs, wm.frames[id].Rect.H)
	}
	return hs
}

func assertLinks(t *testing.T, wm *WM) {
	t.Helper()
	for id, f := range wm.frames {
		c, ok := wm.clients[f.Client]
		if assert.True(t, ok, "frame %d has no client", id) {
			assert.Contains(t, c.Frames, id)
		}
		a, ok := wm.areas[f.Area]
		if assert.True(t, ok, "frame %d has no area", id) {
			assert.Contains(t, a.Frames, id)
		}
	}
	for _, c := range wm.clients {
		for _, id := range c.Frames {
			assert.Equal(t, c.Win, wm.frames[id].Client)
		}
	}
	for _, a := range wm.areas {
		for _, id := range a.Frames {
			assert.Equal(t, a.ID, wm.frames[id].Area)
		}
	}
}

func TestNew(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})

	tag := wm.SelectedTag()
	assert.Equal(t, "1", tag.Name)
	assert.Len(t, tag.Areas, 2)
	assert.Equal(t, 1, tag.Sel)
	assert.Equal(t, geom.Rect{W: 300, H: 300}, wm.SelectedArea().Rect)
	assert.Nil(t, wm.Selected())
}

func TestNewTags(t *testing.T) {
	wm := New(&fakeDisplay{bh: 20}, geom.Rect{W: 300, H: 320}, Options{Tags: []string{"www", "mail"}})

	assert.Equal(t, []string{"www", "mail"}, wm.Tags())
	assert.Equal(t, "www", wm.SelectedTag().Name)
}

func TestArrangeEqual(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2, 3)

	a := wm.SelectedArea()
	assert.Equal(t, []int{100, 100, 100}, heights(wm, a))
	for i, id := range a.Frames {
		assert.Equal(t, i*100, wm.frames[id].Rect.Y)
		assert.Equal(t, 300, wm.frames[id].Rect.W)
	}
	assertLinks(t, wm)
}

func TestArrangeEqualCrowded(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2, 3, 4, 5, 6, 7, 8)

	a := wm.SelectedArea()
	mode, crowded := wm.effectiveMode(a)
	assert.True(t, crowded)
	assert.Equal(t, ModeMax, mode)
	for _, id := range a.Frames {
		assert.Equal(t, a.Rect, wm.frames[id].Rect)
	}
}

func TestArrangeStack(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2, 3)
	require.True(t, wm.SetMode("stack"))

	a := wm.SelectedArea()
	assert.Equal(t, 2, a.Sel)
	assert.Equal(t, []int{20, 20, 260}, heights(wm, a))
	assert.Equal(t, 40, frameOf(t, wm, 3).Rect.Y)

	c, _ := wm.Client(1)
	wm.focus(c)
	assert.Equal(t, 0, a.Sel)
	assert.Equal(t, []int{260, 20, 20}, heights(wm, a))
	assert.Equal(t, 280, frameOf(t, wm, 3).Rect.Y)
}

func TestRelaxAreaSpacesShortClients(t *testing.T) {
	wm, d := newTestWM(t, geom.Rect{W: 300, H: 320})
	d.hint = func(r geom.Rect) geom.Rect {
		r.H = min(r.H, 80)
		return r
	}
	manageN(wm, 1, 2, 3)

	a := wm.SelectedArea()
	assert.Equal(t, []int{80, 80, 80}, heights(wm, a))
	var ys []int
	for _, id := range a.Frames {
		ys = append(ys, wm.frames[id].Rect.Y)
	}
	assert.Equal(t, []int{10, 110, 210}, ys)
}

func TestSetMode(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})

	var events []string
	wm.Events.Subscribe(func(e Event) { events = append(events, e.String()) })

	assert.False(t, wm.SetMode("bogus"))
	assert.True(t, wm.SetMode("max"))
	assert.Equal(t, ModeMax, wm.SelectedArea().Mode)
	assert.Equal(t, []string{"ColumnMode 1 max"}, events)

	require.True(t, wm.SelectArea("0"))
	assert.False(t, wm.SetMode("equal"))
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeEqual, ModeStack, ModeMax} {
		got, ok := ParseMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	assert.Equal(t, "", Mode(42).String())
}

func TestSelectArea(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	tag := wm.SelectedTag()
	wm.allocArea(tag)
	wm.allocArea(tag)
	wm.ArrangeTag(tag, true)
	require.Len(t, tag.Areas, 4)
	require.Equal(t, 3, tag.Sel)

	tests := []struct {
		arg    string
		ok     bool
		sel    int
		revert int
	}{
		{"next", true, 1, 3},
		{"prev", true, 3, 1},
		{"prev", true, 2, 3},
		{"toggle", true, 0, 2},
		{"toggle", true, 2, 2},
		{"9", false, 2, 2},
		{"-1", false, 2, 2},
		{"junk", false, 2, 2},
		{"1", true, 1, 2},
	}
	for _, tt := range tests {
		ok := wm.SelectArea(tt.arg)
		assert.Equal(t, tt.ok, ok, tt.arg)
		assert.Equal(t, tt.sel, tag.Sel, tt.arg)
		assert.Equal(t, tt.revert, tag.Revert, tt.arg)
	}
}

func TestSelectAreaToggleWithoutRevert(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	tag := wm.SelectedTag()

	tag.Sel = 0
	assert.True(t, wm.SelectArea("toggle"))
	assert.Equal(t, 1, tag.Sel)
}

func TestSendClientNewColumn(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2)

	require.True(t, wm.SendClient("next"))
	tag := wm.SelectedTag()
	require.Len(t, tag.Areas, 3)
	assert.Equal(t, 2, tag.Sel)
	assert.Equal(t, geom.Rect{X: 0, W: 150, H: 300}, frameOf(t, wm, 1).Rect)
	assert.Equal(t, geom.Rect{X: 150, W: 150, H: 300}, frameOf(t, wm, 2).Rect)

	c, _ := wm.Client(2)
	assert.Equal(t, tag.Areas[1], c.Revert)
	assertLinks(t, wm)

	// A lone client in the last column has nowhere new to go.
	assert.False(t, wm.SendClient("next"))

	require.True(t, wm.SendClient("prev"))
	assert.Len(t, tag.Areas, 2)
	assert.Equal(t, []int{150, 150}, heights(wm, wm.areas[tag.Areas[1]]))
	assertLinks(t, wm)
}

func TestSendClientToggle(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2)
	tag := wm.SelectedTag()

	require.True(t, wm.SendClient("toggle"))
	assert.Equal(t, 0, tag.Sel)
	assert.Equal(t, tag.Areas[0], frameOf(t, wm, 2).Area)

	require.True(t, wm.SendClient("toggle"))
	assert.Equal(t, 1, tag.Sel)
	assert.Equal(t, tag.Areas[1], frameOf(t, wm, 2).Area)
	assertLinks(t, wm)
}

func TestManageTransient(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1)
	wm.Manage(2, geom.Rect{X: 10, Y: 10, W: 50, H: 40}, 1)

	tag := wm.SelectedTag()
	f := frameOf(t, wm, 2)
	assert.Equal(t, tag.Areas[0], f.Area)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, W: 52, H: 61}, f.Rect)
	assert.Equal(t, 0, tag.Sel)

	// Closing the transient brings the selection back to its owner.
	require.True(t, wm.Unmanage(2))
	assert.Equal(t, 1, tag.Sel)
	assertLinks(t, wm)
}

func TestUnmanage(t *testing.T) {
	wm, d := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2, 3)

	var events []string
	wm.Events.Subscribe(func(e Event) { events = append(events, e.Name) })

	assert.False(t, wm.Unmanage(42))
	require.True(t, wm.Unmanage(2))
	assert.Equal(t, []string{"DestroyClient"}, events)
	assert.Equal(t, []int{150, 150}, heights(wm, wm.SelectedArea()))
	assert.Equal(t, Window(3), d.focused[len(d.focused)-1])

	require.True(t, wm.Unmanage(1))
	require.True(t, wm.Unmanage(3))
	// The last column stays even when it empties.
	assert.Len(t, wm.SelectedTag().Areas, 2)
	assert.Empty(t, wm.frames)
	assert.Nil(t, wm.Selected())
}

func TestDestroyArea(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1)
	tag := wm.SelectedTag()

	assert.False(t, wm.destroyArea(wm.areas[tag.Areas[1]]))
	assert.False(t, wm.destroyArea(wm.areas[tag.Areas[0]]))

	empty := wm.allocArea(tag)
	tag.Revert = 2
	assert.True(t, wm.destroyArea(empty))
	assert.Len(t, tag.Areas, 2)
	assert.Equal(t, 0, tag.Revert)
	assert.Equal(t, 1, tag.Sel)
}

func TestResizeColumns(t *testing.T) {
	tests := []struct {
		name  string
		x     int
		westW int
		areaX int
	}{
		{"move", 400, 400, 400},
		{"clamp", 10, 40, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wm, _ := newTestWM(t, geom.Rect{W: 1000, H: 620})
			manageN(wm, 1, 2)
			require.True(t, wm.SendClient("next"))

			tag := wm.SelectedTag()
			west, east := wm.areas[tag.Areas[1]], wm.areas[tag.Areas[2]]
			require.Equal(t, 500, east.Rect.X)

			c, _ := wm.Client(2)
			r := frameOf(t, wm, 2).Rect
			r.W += r.X - tt.x
			r.X = tt.x
			wm.ResizeArea(c, r, nil)

			assert.Equal(t, tt.westW, west.Rect.W)
			assert.Equal(t, tt.areaX, east.Rect.X)
			assert.Equal(t, tt.westW, frameOf(t, wm, 1).Rect.W)
			assert.Equal(t, tt.areaX, frameOf(t, wm, 2).Rect.X)
		})
	}
}

func TestResizeFloating(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1)
	require.True(t, wm.SendClient("toggle"))

	c, _ := wm.Client(1)
	r := geom.Rect{X: 5, Y: 5, W: 60, H: 60}
	wm.ResizeArea(c, r, nil)
	assert.Equal(t, r, frameOf(t, wm, 1).Rect)
}

func TestDropMoving(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2, 3)
	a := wm.SelectedArea()

	// Dragging the last frame over the first swaps them.
	c, _ := wm.Client(3)
	r := frameOf(t, wm, 3).Rect
	wm.ResizeArea(c, r, &geom.Point{X: 10, Y: 10})
	assert.Equal(t, Window(3), wm.frames[a.Frames[0]].Client)
	assert.Equal(t, Window(1), wm.frames[a.Frames[2]].Client)
	assert.Equal(t, 0, frameOf(t, wm, 3).Rect.Y)

	// Without a pointer position nothing moves.
	wm.ResizeArea(c, frameOf(t, wm, 3).Rect, nil)
	assert.Equal(t, Window(3), wm.frames[a.Frames[0]].Client)
	assertLinks(t, wm)
}

func TestView(t *testing.T) {
	wm, d := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1)

	var events []string
	wm.Events.Subscribe(func(e Event) { events = append(events, e.String()) })

	wm.View("2")
	assert.Equal(t, "2", wm.SelectedTag().Name)
	assert.Equal(t, []string{"1", "2"}, wm.Tags())
	assert.Equal(t, offscreenXY, d.resized[1].X)
	assert.Contains(t, events, "FocusTag 2")

	// Clients managed on a hidden tag keep their layout.
	assert.Equal(t, geom.Rect{W: 300, H: 300}, frameOf(t, wm, 1).Rect)

	wm.View("1")
	assert.Equal(t, geom.Rect{W: 300, H: 300}, d.resized[1])
	assert.Equal(t, Window(1), d.focused[len(d.focused)-1])
}

func TestSetScreen(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2)
	require.True(t, wm.SendClient("next"))

	wm.SetScreen(geom.Rect{W: 600, H: 420})
	assert.Equal(t, geom.Rect{X: 300, W: 300, H: 400}, frameOf(t, wm, 2).Rect)
}

func TestSnapshot(t *testing.T) {
	wm, _ := newTestWM(t, geom.Rect{W: 300, H: 320})
	manageN(wm, 1, 2)

	s := wm.Snapshot()
	assert.Equal(t, "1", s.Tag)
	assert.Equal(t, 1, s.Sel)
	require.Len(t, s.Areas, 2)
	assert.Equal(t, "", s.Areas[0].Mode)
	assert.Equal(t, "equal", s.Areas[1].Mode)
	require.Len(t, s.Areas[1].Frames, 2)
	assert.Equal(t, "0x2", s.Areas[1].Frames[1].Client)
}
