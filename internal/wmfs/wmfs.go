// Package wmfs exposes the window manager as a 9P file tree.
//
//	/ctl      read the current state, write commands
//	/event    blocking stream of events, one per line
//	/layout   YAML snapshot of the viewed tag
//	/colmode  mode of the selected column
package wmfs

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/ixp"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/docker/go-p9p"
)

// Executor runs fn on the goroutine that owns the WM and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func(w *wm.WM) error) error
}

var ErrPerm = p9p.ErrPerm

const (
	qRoot uint64 = iota
	qCtl
	qEvent
	qLayout
	qColmode
)

type file struct {
	name string
	path uint64
	perm uint32
}

var files = []file{
	{name: "ctl", path: qCtl, perm: 0600},
	{name: "event", path: qEvent, perm: 0400},
	{name: "layout", path: qLayout, perm: 0400},
	{name: "colmode", path: qColmode, perm: 0600},
}

func lookup(name string) (file, bool) {
	for _, f := range files {
		if f.name == name {
			return f, true
		}
	}
	return file{}, false
}

func (f file) qid() p9p.Qid {
	if f.path == qRoot {
		return p9p.Qid{Type: p9p.QTDIR, Path: qRoot}
	}
	return p9p.Qid{Type: p9p.QTFILE, Path: f.path}
}

var root = file{name: "/", path: qRoot, perm: p9p.DMDIR | 0500}

// fidState is the Aux of every fid handed out by FS.
type fidState struct {
	file   file
	uname  string
	buf    []byte
	reader *eventReader
}

type FS struct {
	exec    Executor
	started time.Time
	log     *slog.Logger

	mu          sync.Mutex
	readers     map[*eventReader]struct{}
	unsubscribe func()
}

func New(exec Executor, events *bus.Hub[wm.Event]) *FS {
	fs := &FS{
		exec:    exec,
		started: time.Now(),
		log:     slog.With("service", "wmfs"),
		readers: make(map[*eventReader]struct{}),
	}
	fs.unsubscribe = events.Subscribe(fs.broadcast)
	return fs
}

// Close stops delivering events to open event files.
func (fs *FS) Close() {
	fs.unsubscribe()
}

func (fs *FS) stat(f file, uname string) p9p.Dir {
	name := f.name
	if f.path == qRoot {
		name = "/"
	}
	return p9p.Dir{
		Qid:        f.qid(),
		Mode:       f.perm,
		AccessTime: fs.started,
		ModTime:    fs.started,
		Name:       name,
		UID:        uname,
		GID:        uname,
		MUID:       uname,
	}
}

func (fs *FS) Attach(r *ixp.Req) {
	m := r.Ifcall.(p9p.MessageTattach)
	r.Fid.Qid = root.qid()
	r.Fid.Aux = &fidState{file: root, uname: m.Uname}
	r.Ofcall = p9p.MessageRattach{Qid: r.Fid.Qid}
	r.Respond(nil)
}

func (fs *FS) Walk(r *ixp.Req) {
	m := r.Ifcall.(p9p.MessageTwalk)
	st := r.Fid.Aux.(*fidState)

	cur := st.file
	qids := make([]p9p.Qid, 0, len(m.Wnames))
	for _, name := range m.Wnames {
		if cur.path != qRoot {
			break
		}
		if name == ".." {
			qids = append(qids, cur.qid())
			continue
		}
		f, ok := lookup(name)
		if !ok {
			break
		}
		cur = f
		qids = append(qids, cur.qid())
	}

	if len(qids) == len(m.Wnames) {
		r.Newfid.Aux = &fidState{file: cur, uname: st.uname}
	}
	r.Ofcall = p9p.MessageRwalk{Qids: qids}
	r.Respond(nil)
}

func (fs *FS) Open(r *ixp.Req) {
	m := r.Ifcall.(p9p.MessageTopen)
	st := r.Fid.Aux.(*fidState)

	mode := m.Mode & 3
	if st.file.perm&0200 == 0 && (mode == p9p.OWRITE || mode == p9p.ORDWR) {
		r.Respond(ErrPerm)
		return
	}

	switch st.file.path {
	case qEvent:
		if st.reader != nil {
			// Reopened. The old stream ends here.
			fs.removeReader(st.reader)
			st.reader.close()
		}
		st.reader = fs.addReader(r.Conn)
	case qCtl, qLayout, qColmode:
		buf, err := fs.render(r.Ctx, st.file.path)
		if err != nil {
			r.Respond(err)
			return
		}
		st.buf = buf
	}

	r.Ofcall = p9p.MessageRopen{Qid: r.Fid.Qid, IOUnit: uint32(r.Conn.IOUnit())}
	r.Respond(nil)
}

func (fs *FS) Read(r *ixp.Req) {
	m := r.Ifcall.(p9p.MessageTread)
	st := r.Fid.Aux.(*fidState)
	count := max(min(int(m.Count), r.Conn.IOUnit()), 0)
	offset := int(min(m.Offset, math.MaxInt32))

	switch st.file.path {
	case qRoot:
		data, err := fs.readDir(st.uname, offset, count)
		if err != nil {
			r.Respond(err)
			return
		}
		r.Ofcall = p9p.MessageRread{Data: data}
		r.Respond(nil)
	case qEvent:
		st.reader.read(r, count)
	default:
		r.Ofcall = p9p.MessageRread{Data: slice(st.buf, offset, count)}
		r.Respond(nil)
	}
}

func (fs *FS) Write(r *ixp.Req) {
	m := r.Ifcall.(p9p.MessageTwrite)
	st := r.Fid.Aux.(*fidState)

	var err error
	switch st.file.path {
	case qCtl:
		err = fs.exec.Do(r.Ctx, func(w *wm.WM) error {
			return runCommands(w, string(m.Data))
		})
	case qColmode:
		err = fs.exec.Do(r.Ctx, func(w *wm.WM) error {
			return setMode(w, string(bytes.TrimSpace(m.Data)))
		})
	default:
		err = ErrPerm
	}
	if err != nil {
		r.Respond(err)
		return
	}

	r.Ofcall = p9p.MessageRwrite{Count: uint32(len(m.Data))}
	r.Respond(nil)
}

func (fs *FS) Stat(r *ixp.Req) {
	st := r.Fid.Aux.(*fidState)
	r.Ofcall = p9p.MessageRstat{Stat: fs.stat(st.file, st.uname)}
	r.Respond(nil)
}

func (fs *FS) DestroyFid(f *ixp.Fid) {
	st, ok := f.Aux.(*fidState)
	if !ok || st.reader == nil {
		return
	}
	fs.removeReader(st.reader)
	st.reader.close()
}

// readDir returns the whole directory entries that start at offset and fit
// in count bytes.
func (fs *FS) readDir(uname string, offset, count int) ([]byte, error) {
	codec := p9p.NewCodec()

	var out bytes.Buffer
	pos := 0
	for _, f := range files {
		var entry bytes.Buffer
		d := fs.stat(f, uname)
		if err := p9p.EncodeDir(codec, &entry, &d); err != nil {
			return nil, err
		}

		n := entry.Len()
		if pos >= offset {
			if out.Len()+n > count {
				break
			}
			out.Write(entry.Bytes())
		}
		pos += n
	}

	return out.Bytes(), nil
}

func slice(buf []byte, offset, count int) []byte {
	if offset < 0 || offset >= len(buf) || count <= 0 {
		return nil
	}
	return buf[offset:min(offset+count, len(buf))]
}
