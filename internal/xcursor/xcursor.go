// Package xcursor loads glyphs from the X core "cursor" font.
//
// Forked from https://github.com/BurntSushi/xgbutil/blob/master/xcursor/xcursor.go
package xcursor

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Shape is a glyph index in the cursor font. Its mask is the next glyph.
type Shape uint16

const (
	Fleur   Shape = 52
	LeftPtr Shape = 68
	Sizing  Shape = 120
)

type Color struct {
	R, G, B uint16
}

var (
	White = Color{R: 0xffff, G: 0xffff, B: 0xffff}
	Black = Color{}
)

// Create makes a white on black cursor.
func Create(x *xgb.Conn, shape Shape) (xproto.Cursor, error) {
	return CreateColored(x, shape, White, Black)
}

func CreateColored(x *xgb.Conn, shape Shape, fg, bg Color) (xproto.Cursor, error) {
	fontID, err := xproto.NewFontId(x)
	if err != nil {
		return 0, err
	}

	cursorID, err := xproto.NewCursorId(x)
	if err != nil {
		return 0, err
	}

	const font = "cursor"
	if err := xproto.OpenFontChecked(x, fontID, uint16(len(font)), font).Check(); err != nil {
		return 0, err
	}
	defer xproto.CloseFont(x, fontID)

	err = xproto.CreateGlyphCursorChecked(x, cursorID, fontID, fontID,
		uint16(shape), uint16(shape)+1,
		fg.R, fg.G, fg.B,
		bg.R, bg.G, bg.B).Check()
	if err != nil {
		return 0, err
	}

	return cursorID, nil
}
