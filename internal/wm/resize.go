package wm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// ResizeArea handles a drag of the client's selected frame to r. A drag that
// keeps the size is a move and needs the pointer position pt; anything else
// resizes the frame against its neighbours.
func (wm *WM) ResizeArea(c *Client, r geom.Rect, pt *geom.Point) {
	if len(c.Frames) == 0 {
		return
	}
	f := wm.frames[c.Frames[c.Sel]]

	if wm.areaIndex(wm.areas[f.Area]) == 0 {
		wm.resizeFrame(f, r, false)
		return
	}

	if f.Rect.W == r.W && f.Rect.H == r.H {
		wm.dropMoving(f, pt)
	} else {
		wm.dropResize(f, r)
	}
}

func (wm *WM) dropResize(f *Frame, r geom.Rect) {
	a := wm.areas[f.Area]
	t := wm.tags[a.Tag]
	minSize := 2 * wm.display.BarHeight()

	var west, east *Area
	i := wm.areaIndex(a)
	if i > 1 {
		west = wm.areas[t.Areas[i-1]]
	}
	if i+1 < len(t.Areas) {
		east = wm.areas[t.Areas[i+1]]
	}

	var north, south *Frame
	j := wm.frameIndex(a, f)
	if j > 0 {
		north = wm.frames[a.Frames[j-1]]
	}
	if j+1 < len(a.Frames) {
		south = wm.frames[a.Frames[j+1]]
	}

	if west != nil && r.X != f.Rect.X {
		if r.X < 0 || r.X < west.Rect.X+minSize {
			r.W -= west.Rect.X + west.Rect.W - r.X
			r.X = west.Rect.X + minSize
		}
		west.Rect.W = r.X - west.Rect.X
		a.Rect.W += f.Rect.X - r.X
		a.Rect.X = r.X
		wm.matchHoriz(west, west.Rect)
		wm.matchHoriz(a, a.Rect)
		wm.relaxArea(west)
	}
	if east != nil && r.X+r.W != f.Rect.X+f.Rect.W {
		if r.X+r.W > east.Rect.X+east.Rect.W-minSize {
			r.W = east.Rect.X + east.Rect.W - minSize - r.X
		}
		east.Rect.W -= r.X + r.W - east.Rect.X
		east.Rect.X = r.X + r.W
		a.Rect.X = r.X
		a.Rect.W = r.W
		wm.matchHoriz(a, a.Rect)
		wm.matchHoriz(east, east.Rect)
		wm.relaxArea(east)
	}

	// Only equal columns let frames be dragged vertically.
	if a.Mode == ModeEqual {
		if north != nil && r.Y != f.Rect.Y {
			if r.Y < 0 || r.Y < north.Rect.Y+minSize {
				r.H -= north.Rect.Y + north.Rect.H - r.Y
				r.Y = north.Rect.Y + minSize
			}
			nr := north.Rect
			nr.H = r.Y - nr.Y
			fr := f.Rect
			fr.H += fr.Y - r.Y
			fr.Y = r.Y
			wm.resizeFrame(north, nr, false)
			wm.resizeFrame(f, fr, false)
		}
		if south != nil && r.Y+r.H != f.Rect.Y+f.Rect.H {
			if r.Y+r.H > south.Rect.Y+south.Rect.H-minSize {
				r.H = south.Rect.Y + south.Rect.H - minSize - r.Y
			}
			sr := south.Rect
			sr.H -= r.Y + r.H - sr.Y
			sr.Y = r.Y + r.H
			fr := f.Rect
			fr.Y = r.Y
			fr.H = r.H
			wm.resizeFrame(f, fr, false)
			wm.resizeFrame(south, sr, false)
		}
	}

	wm.relaxArea(a)
}

func (wm *WM) dropMoving(f *Frame, pt *geom.Point) {
	src := wm.areas[f.Area]
	t := wm.tags[src.Tag]
	if pt == nil || len(src.Frames) < 2 {
		return
	}

	var tgt *Area
	for _, id := range t.Areas[1:] {
		if a := wm.areas[id]; geom.Contains(a.Rect, *pt) {
			tgt = a
			break
		}
	}
	if tgt == nil {
		return
	}

	c := wm.clients[f.Client]
	if tgt != src {
		wm.send2Area(tgt, src, c)
		wm.arrangeArea(tgt)
		return
	}

	for i, id := range src.Frames {
		if !geom.Contains(wm.frames[id].Rect, *pt) {
			continue
		}
		if id != f.ID {
			j := wm.frameIndex(src, f)
			src.Frames[i], src.Frames[j] = src.Frames[j], src.Frames[i]
			wm.arrangeArea(src)
			wm.focus(c)
		}
		return
	}
}
