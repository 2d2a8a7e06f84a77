package wm

import (
	"fmt"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// offscreenXY parks the clients of hidden tags.
const offscreenXY = -1 << 15

// NewTag creates a tag with its floating area and a first, empty column.
func (wm *WM) NewTag(name string) *Tag {
	if t, ok := wm.tags[name]; ok {
		return t
	}

	t := &Tag{Name: name}
	wm.tags[name] = t
	wm.order = append(wm.order, name)

	wm.allocArea(t)
	wm.allocArea(t)

	return t
}

func (wm *WM) Tags() []string {
	return append([]string(nil), wm.order...)
}

// View shows the named tag, creating it on first use.
func (wm *WM) View(name string) {
	if name == "" || name == wm.sel {
		return
	}

	t := wm.NewTag(name)
	if old, ok := wm.tags[wm.sel]; ok {
		wm.hideTag(old)
	}
	wm.sel = name

	wm.ArrangeTag(t, false)
	for _, id := range wm.areas[t.Areas[0]].Frames {
		f := wm.frames[id]
		wm.resizeFrame(f, f.Rect, true)
	}
	wm.focusSelected()

	wm.publish("FocusTag", name)
}

func (wm *WM) hideTag(t *Tag) {
	for _, aid := range t.Areas {
		for _, id := range wm.areas[aid].Frames {
			f := wm.frames[id]
			r := f.Rect
			r.X, r.Y = offscreenXY, offscreenXY
			wm.display.ResizeClient(wm.clients[f.Client], r, true)
		}
	}
}

// SetMode changes the layout mode of the selected column.
func (wm *WM) SetMode(name string) bool {
	mode, ok := ParseMode(name)
	if !ok {
		return false
	}

	t := wm.SelectedTag()
	if t.Sel == 0 {
		return false
	}

	a := wm.areas[t.Areas[t.Sel]]
	a.Mode = mode
	wm.arrangeArea(a)

	wm.publish("ColumnMode", fmt.Sprint(t.Sel), mode.String())
	return true
}

type Snapshot struct {
	Tag   string         `json:"tag" yaml:"tag"`
	Tags  []string       `json:"tags" yaml:"tags"`
	Sel   int            `json:"sel" yaml:"sel"`
	Areas []AreaSnapshot `json:"areas" yaml:"areas"`
}

type AreaSnapshot struct {
	ID     AreaID          `json:"id" yaml:"id"`
	Mode   string          `json:"mode,omitempty" yaml:"mode,omitempty"`
	Rect   geom.Rect       `json:"rect" yaml:"rect"`
	Sel    int             `json:"sel" yaml:"sel"`
	Frames []FrameSnapshot `json:"frames" yaml:"frames"`
}

type FrameSnapshot struct {
	ID     FrameID   `json:"id" yaml:"id"`
	Client string    `json:"client" yaml:"client"`
	Rect   geom.Rect `json:"rect" yaml:"rect"`
}

// Snapshot describes the viewed tag. The floating area has no mode.
func (wm *WM) Snapshot() Snapshot {
	t := wm.SelectedTag()
	s := Snapshot{
		Tag:   t.Name,
		Tags:  wm.Tags(),
		Sel:   t.Sel,
		Areas: make([]AreaSnapshot, 0, len(t.Areas)),
	}

	for i, aid := range t.Areas {
		a := wm.areas[aid]
		as := AreaSnapshot{
			ID:     a.ID,
			Rect:   a.Rect,
			Sel:    a.Sel,
			Frames: make([]FrameSnapshot, 0, len(a.Frames)),
		}
		if i > 0 {
			as.Mode = a.Mode.String()
		}
		for _, id := range a.Frames {
			f := wm.frames[id]
			as.Frames = append(as.Frames, FrameSnapshot{
				ID:     f.ID,
				Client: f.Client.String(),
				Rect:   f.Rect,
			})
		}
		s.Areas = append(s.Areas, as)
	}

	return s
}
