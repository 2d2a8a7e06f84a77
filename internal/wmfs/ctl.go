package wmfs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/docker/go-p9p"
	"gopkg.in/yaml.v3"
)

var (
	ErrBadCommand = p9p.MessageRerror{Ename: "bad command"}
	ErrBadValue   = p9p.MessageRerror{Ename: "bad value"}
)

// render snapshots the contents of a regular file.
func (fs *FS) render(ctx context.Context, path uint64) ([]byte, error) {
	var buf []byte
	err := fs.exec.Do(ctx, func(w *wm.WM) error {
		switch path {
		case qCtl:
			buf = []byte(status(w))
		case qLayout:
			b, err := yaml.Marshal(w.Snapshot())
			if err != nil {
				return err
			}
			buf = b
		case qColmode:
			buf = []byte(w.SelectedArea().Mode.String() + "\n")
		}
		return nil
	})
	return buf, err
}

func status(w *wm.WM) string {
	t := w.SelectedTag()

	var b strings.Builder
	fmt.Fprintf(&b, "view %s\n", t.Name)
	fmt.Fprintf(&b, "select %d\n", t.Sel)
	if t.Sel > 0 {
		fmt.Fprintf(&b, "colmode %s\n", w.SelectedArea().Mode)
	}
	if c := w.Selected(); c != nil {
		fmt.Fprintf(&b, "client %s\n", c.Win)
	}
	return b.String()
}

// runCommands runs one command per line.
func runCommands(w *wm.WM, data string) error {
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := runCommand(w, line); err != nil {
			return err
		}
	}
	return nil
}

func runCommand(w *wm.WM, line string) error {
	args := strings.Fields(line)
	switch args[0] {
	case "view":
		if len(args) != 2 {
			return ErrBadValue
		}
		w.View(args[1])
	case "select":
		if len(args) != 2 || !w.SelectArea(args[1]) {
			return ErrBadValue
		}
	case "send":
		if len(args) != 2 || !w.SendClient(args[1]) {
			return ErrBadValue
		}
	case "colmode":
		if len(args) != 2 {
			return ErrBadValue
		}
		return setMode(w, args[1])
	case "resize":
		return resize(w, args[1:])
	default:
		return ErrBadCommand
	}
	return nil
}

func setMode(w *wm.WM, name string) error {
	if !w.SetMode(name) {
		return ErrBadValue
	}
	return nil
}

// resize takes "x y w h" and an optional pointer position "px py".
func resize(w *wm.WM, args []string) error {
	if len(args) != 4 && len(args) != 6 {
		return ErrBadValue
	}

	n := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return ErrBadValue
		}
		n[i] = v
	}

	c := w.Selected()
	if c == nil {
		return nil
	}

	var pt *geom.Point
	if len(n) == 6 {
		pt = &geom.Point{X: n[4], Y: n[5]}
	}
	w.ResizeArea(c, geom.Rect{X: n[0], Y: n[1], W: n[2], H: n[3]}, pt)

	return nil
}
