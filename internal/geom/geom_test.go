package geom

import (
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 100, H: 50}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{50, 30}, true},
		{"top left corner", Point{10, 10}, true},
		{"bottom right corner", Point{110, 60}, true},
		{"left of rect", Point{9, 30}, false},
		{"below rect", Point{50, 61}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(r, tt.p))
		})
	}
}

func TestToXClampsNegativeSize(t *testing.T) {
	assert.Equal(t, xproto.Rectangle{X: -5, Y: 3, Width: 0, Height: 7}, ToX(Rect{X: -5, Y: 3, W: -2, H: 7}))
	assert.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, FromX(xproto.Rectangle{X: 1, Y: 2, Width: 3, Height: 4}))
}
