package wm

import (
	"strconv"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// Manage starts tiling a new window in the selected area of the viewed tag.
// Transient windows go to the floating area.
func (wm *WM) Manage(win Window, r geom.Rect, transientFor Window) *Client {
	if c, ok := wm.clients[win]; ok {
		return c
	}

	c := &Client{
		Win:          win,
		Rect:         r,
		TransientFor: transientFor,
	}
	wm.clients[win] = c

	t := wm.SelectedTag()
	a := wm.areas[t.Areas[t.Sel]]
	if transientFor != 0 {
		a = wm.areas[t.Areas[0]]
	}

	wm.attachToArea(a, c)
	wm.focus(c)
	wm.publish("CreateClient", win.String())

	return c
}

// Unmanage forgets a window that went away.
func (wm *WM) Unmanage(win Window) bool {
	c, ok := wm.clients[win]
	if !ok {
		return false
	}

	for len(c.Frames) > 0 {
		f := wm.frames[c.Frames[len(c.Frames)-1]]
		if !wm.detachFromArea(wm.areas[f.Area], c) {
			break
		}
	}
	delete(wm.clients, win)

	wm.publish("DestroyClient", win.String())
	wm.focusSelected()

	return true
}

// SendClient moves the selected client to the area picked by arg: "toggle"
// between floating and managed, "prev"/"next" column or an area index.
// Sending next from the last column opens a new one.
func (wm *WM) SendClient(arg string) bool {
	t := wm.SelectedTag()
	from := wm.areas[t.Areas[t.Sel]]
	if len(from.Frames) == 0 {
		return false
	}
	c := wm.clients[wm.frames[from.Frames[from.Sel]].Client]

	i, n := t.Sel, len(t.Areas)
	j := -1
	column := false
	switch arg {
	case "toggle":
		if i != 0 {
			j = 0
		} else if t.Revert > 0 && t.Revert < n {
			j = t.Revert
		} else if n > 1 {
			j = 1
		}
	case "prev":
		if i > 1 {
			j = i - 1
		}
	case "next":
		if i > 0 && i+1 < n {
			j = i + 1
		} else if i > 0 && len(from.Frames) > 1 {
			wm.allocArea(t)
			j, column = n, true
		}
	default:
		v, err := strconv.Atoi(arg)
		if err == nil && v >= 0 && v < n {
			j = v
		}
	}
	if j < 0 || j == i {
		return false
	}

	wm.send2Area(wm.areas[t.Areas[j]], from, c)
	if column {
		wm.ArrangeTag(t, true)
	}

	return true
}
