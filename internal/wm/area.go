package wm

import (
	"fmt"
	"slices"
	"strconv"
)

func (wm *WM) allocArea(t *Tag) *Area {
	a := &Area{
		ID:   AreaID(wm.areaIDs.next()),
		Tag:  t.Name,
		Rect: wm.screen,
		Mode: wm.opts.Mode,
	}
	a.Rect.H = wm.screen.H - wm.barRect().H

	wm.areas[a.ID] = a
	t.Sel = len(t.Areas)
	t.Areas = append(t.Areas, a.ID)

	return a
}

// destroyArea removes an empty area from its tag. Occupied areas are left
// alone and false is returned.
func (wm *WM) destroyArea(a *Area) bool {
	if len(a.Frames) > 0 {
		return false
	}

	t := wm.tags[a.Tag]
	i := wm.areaIndex(a)
	if i <= 0 {
		return false
	}

	if t.Revert == i {
		t.Revert = 0
	}
	for _, c := range wm.clients {
		if c.Revert == a.ID {
			c.Revert = 0
		}
	}

	t.Areas = slices.Delete(t.Areas, i, i+1)
	delete(wm.areas, a.ID)
	if t.Sel > 1 {
		t.Sel--
	}

	return true
}

func (wm *WM) areaIndex(a *Area) int {
	t, ok := wm.tags[a.Tag]
	if !ok {
		return -1
	}
	return slices.Index(t.Areas, a.ID)
}

func (wm *WM) frameIndex(a *Area, f *Frame) int {
	return slices.Index(a.Frames, f.ID)
}

func (wm *WM) clientOfTag(t *Tag, c *Client) bool {
	for _, id := range c.Frames {
		if wm.areas[wm.frames[id].Area].Tag == t.Name {
			return true
		}
	}
	return false
}

func (wm *WM) attachToArea(a *Area, c *Client) {
	if wm.clientOfTag(wm.tags[a.Tag], c) {
		return
	}

	f := &Frame{
		ID:     FrameID(wm.frameIDs.next()),
		Rect:   c.Rect,
		Area:   a.ID,
		Client: c.Win,
	}
	f.Rect.W += 2 * wm.opts.Border
	f.Rect.H += wm.opts.Border + wm.display.BarHeight()

	wm.frames[f.ID] = f
	c.Frames = append(c.Frames, f.ID)
	c.Sel = len(c.Frames) - 1
	a.Frames = append(a.Frames, f.ID)
	a.Sel = len(a.Frames) - 1

	if wm.areaIndex(a) > 0 {
		wm.arrangeArea(a)
	} else {
		wm.resizeFrame(f, f.Rect, false)
	}
}

// detachFromArea removes the frame joining c and a. It returns false when
// the client has no frame in that area.
func (wm *WM) detachFromArea(a *Area, c *Client) bool {
	fi := slices.IndexFunc(c.Frames, func(id FrameID) bool { return wm.frames[id].Area == a.ID })
	if fi == -1 {
		return false
	}
	f := wm.frames[c.Frames[fi]]
	t := wm.tags[a.Tag]

	ai := wm.frameIndex(a, f)
	c.Frames = slices.Delete(c.Frames, fi, fi+1)
	a.Frames = slices.Delete(a.Frames, ai, ai+1)
	delete(wm.frames, f.ID)
	if c.Sel > 0 {
		c.Sel--
	}
	if a.Sel > 0 {
		a.Sel--
	}

	i := wm.areaIndex(a)
	switch {
	case i > 0 && len(a.Frames) > 0:
		wm.arrangeArea(a)
	case i > 0:
		// The last managed column survives even when empty.
		if len(t.Areas) > 2 {
			wm.destroyArea(a)
		} else if len(wm.areas[t.Areas[0]].Frames) > 0 {
			t.Sel = 0
		}
		wm.ArrangeTag(t, true)
	case len(a.Frames) == 0:
		if c.TransientFor != 0 {
			owner, ok := wm.clients[c.TransientFor]
			if ok && len(owner.Frames) > 0 {
				oa := wm.areas[wm.frames[owner.Frames[owner.Sel]].Area]
				if oa.Tag == t.Name {
					t.Sel = wm.areaIndex(oa)
				}
			}
		} else if len(t.Areas) > 1 && len(wm.areas[t.Areas[1]].Frames) > 0 {
			t.Sel = 1
		}
	}

	return true
}

// selectArea moves the selection of a's tag according to arg: "toggle",
// "prev", "next" or an area index. Unparsable or out of range indexes are
// ignored.
func (wm *WM) selectArea(a *Area, arg string) bool {
	t := wm.tags[a.Tag]
	i := wm.areaIndex(a)
	if i == -1 {
		return false
	}
	n := len(t.Areas)

	j := i
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
		if i == 1 {
			j = n - 1
		} else if i != 0 {
			j = i - 1
		}
	case "next":
		if i+1 < n {
			j = i + 1
		} else if i != 0 {
			j = 1
		}
	default:
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 || v > n-1 {
			return false
		}
		j = v
	}

	if i != 0 {
		t.Revert = i
	}

	next := wm.areas[t.Areas[j]]
	if len(next.Frames) > 0 {
		wm.display.FocusClient(wm.clients[wm.frames[next.Frames[next.Sel]].Client])
	}
	t.Sel = j
	// Redraws the frames of the area we were called with, which is the one
	// being left.
	for _, id := range a.Frames {
		wm.display.DrawClient(wm.clients[wm.frames[id].Client])
	}

	if j != i && wm.visible(a) {
		wm.publish("FocusArea", fmt.Sprint(j))
	}
	return true
}

// SelectArea applies selectArea to the selected area of the viewed tag.
func (wm *WM) SelectArea(arg string) bool {
	return wm.selectArea(wm.SelectedArea(), arg)
}

func (wm *WM) send2Area(to, from *Area, c *Client) {
	c.Revert = from.ID
	wm.detachFromArea(from, c)
	wm.attachToArea(to, c)
	wm.focus(c)
}
