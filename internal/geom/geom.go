// Package geom holds the integer rectangle math shared by the layout engine
// and the X11 binding.
package geom

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
)

type Rect struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

type Point struct {
	X int
	Y int
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.W, r.H)
}

// Contains reports whether p lies in r, edges included.
func Contains(r Rect, p Point) bool {
	return r.X <= p.X && p.X <= r.X+r.W &&
		r.Y <= p.Y && p.Y <= r.Y+r.H
}

func FromX(r xproto.Rectangle) Rect {
	return Rect{X: int(r.X), Y: int(r.Y), W: int(r.Width), H: int(r.Height)}
}

// ToX clamps negative sizes to zero since X rejects them.
func ToX(r Rect) xproto.Rectangle {
	return xproto.Rectangle{
		X:      int16(r.X),
		Y:      int16(r.Y),
		Width:  uint16(max(r.W, 0)),
		Height: uint16(max(r.H, 0)),
	}
}
