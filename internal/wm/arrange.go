package wm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// effectiveMode is the mode the column is laid out with. Equal and Stack
// columns holding too many frames to split fall back to Max, reported by
// crowded.
func (wm *WM) effectiveMode(a *Area) (mode Mode, crowded bool) {
	n := len(a.Frames)
	bh := wm.display.BarHeight()

	switch a.Mode {
	case ModeEqual:
		if a.Rect.H/n < 2*bh {
			return ModeMax, true
		}
	case ModeStack:
		if a.Rect.H-(n-1)*bh < 3*bh {
			return ModeMax, true
		}
	}

	return a.Mode, false
}

func (wm *WM) arrangeArea(a *Area) {
	n := len(a.Frames)
	if n == 0 {
		return
	}

	bh := wm.display.BarHeight()
	mode, _ := wm.effectiveMode(a)

	switch mode {
	case ModeEqual:
		h := a.Rect.H / n
		for i, id := range a.Frames {
			r := a.Rect
			r.Y += i * h
			if i+1 < n {
				r.H = h
			} else {
				r.H = a.Rect.H - r.Y + a.Rect.Y
			}
			wm.resizeFrame(wm.frames[id], r, true)
		}
	case ModeStack:
		h := a.Rect.H - (n-1)*bh
		yoff := a.Rect.Y
		for i, id := range a.Frames {
			r := a.Rect
			r.Y = yoff
			if i == a.Sel {
				r.H = h
			} else {
				r.H = bh
			}
			yoff += r.H
			wm.resizeFrame(wm.frames[id], r, true)
		}
	case ModeMax:
		for _, id := range a.Frames {
			wm.resizeFrame(wm.frames[id], a.Rect, true)
		}
	}

	wm.relaxArea(a)
}

// relaxArea closes the gaps left by clients that did not take the full size
// they were offered and centers frames inside the column.
func (wm *WM) relaxArea(a *Area) {
	n := len(a.Frames)
	if n == 0 {
		return
	}

	if _, crowded := wm.effectiveMode(a); crowded {
		for _, id := range a.Frames {
			f := wm.frames[id]
			r := f.Rect
			r.X = a.Rect.X + (a.Rect.W-r.W)/2
			r.Y = a.Rect.Y + (a.Rect.H-r.H)/2
			wm.resizeFrame(f, r, false)
		}
		return
	}

	h := 0
	for _, id := range a.Frames {
		f := wm.frames[id]
		if a.Mode == ModeMax {
			h = max(h, f.Rect.H)
		} else {
			h += f.Rect.H
		}
	}

	if a.Mode != ModeStack {
		for i := 0; h < a.Rect.H && i < n; i++ {
			f := wm.frames[a.Frames[i]]
			old := f.Rect.H
			r := f.Rect
			r.H += a.Rect.H - h
			wm.resizeFrame(f, r, true)
			h += f.Rect.H - old
		}
	}

	hdiff := (a.Rect.H - h) / n
	yoff := a.Rect.Y + hdiff/2
	for _, id := range a.Frames {
		f := wm.frames[id]
		r := f.Rect
		r.X = a.Rect.X + (a.Rect.W-r.W)/2
		r.Y = yoff
		if a.Mode != ModeMax {
			yoff = r.Y + r.H + hdiff
		}
		wm.resizeFrame(f, r, false)
	}
}

// ArrangeTag splits the screen width evenly between the managed columns of
// t. With updateGeometry the column rectangles are reset first.
func (wm *WM) ArrangeTag(t *Tag, updateGeometry bool) {
	if len(t.Areas) == 1 {
		return
	}

	width := wm.screen.W / (len(t.Areas) - 1)
	for i := 1; i < len(t.Areas); i++ {
		a := wm.areas[t.Areas[i]]
		if updateGeometry {
			a.Rect.H = wm.screen.H - wm.barRect().H
			a.Rect.X = wm.screen.X + (i-1)*width
			a.Rect.W = width
		}
		wm.arrangeArea(a)
	}
}

func (wm *WM) matchHoriz(a *Area, r geom.Rect) {
	for _, id := range a.Frames {
		f := wm.frames[id]
		fr := f.Rect
		fr.X = r.X
		fr.W = r.W
		wm.resizeFrame(f, fr, false)
	}
}
