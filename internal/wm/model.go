package wm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// Client is a managed window.
type Client struct {
	Win  Window
	Rect geom.Rect
	// Frames holds one frame per area the client is attached to.
	Frames []FrameID
	Sel    int
	// Revert is the area to go back to after the client is moved away. It is
	// zeroed when that area is destroyed.
	Revert       AreaID
	TransientFor Window
}

// Frame places one client inside one area.
type Frame struct {
	ID     FrameID
	Rect   geom.Rect
	Area   AreaID
	Client Window
}

// Area is the floating layer (index 0 of its tag) or one managed column.
type Area struct {
	ID     AreaID
	Tag    string
	Rect   geom.Rect
	Mode   Mode
	Frames []FrameID
	Sel    int
}

// Tag is a workspace. Areas[0] is always the floating area.
type Tag struct {
	Name   string
	Areas  []AreaID
	Sel    int
	Revert int
}
