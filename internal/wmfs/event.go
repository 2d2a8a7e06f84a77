package wmfs

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/ixp"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/docker/go-p9p"
)

// maxQueue bounds the unread events kept per reader. Older lines are
// dropped first.
const maxQueue = 64 << 10

var ErrInterrupted = p9p.MessageRerror{Ename: "interrupted"}

// eventReader is one open event file. Apart from conn, its fields are only
// touched on conn's goroutine.
type eventReader struct {
	conn    *ixp.Conn
	queue   []byte
	pending []pendingRead
	closed  bool
}

type pendingRead struct {
	req   *ixp.Req
	count int
}

func (fs *FS) addReader(conn *ixp.Conn) *eventReader {
	rd := &eventReader{conn: conn}

	fs.mu.Lock()
	fs.readers[rd] = struct{}{}
	fs.mu.Unlock()

	return rd
}

func (fs *FS) removeReader(rd *eventReader) {
	fs.mu.Lock()
	delete(fs.readers, rd)
	fs.mu.Unlock()
}

// broadcast runs on the WM goroutine and hands the event to every reader's
// connection.
func (fs *FS) broadcast(e wm.Event) {
	line := []byte(e.String() + "\n")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for rd := range fs.readers {
		rd.conn.Post(func() { rd.push(line) })
	}
}

func (rd *eventReader) push(line []byte) {
	if rd.closed {
		return
	}

	rd.queue = append(rd.queue, line...)
	for len(rd.queue) > maxQueue {
		i := 0
		for i < len(rd.queue) && rd.queue[i] != '\n' {
			i++
		}
		rd.queue = rd.queue[min(i+1, len(rd.queue)):]
	}

	rd.flush()
}

// read answers r now if events are queued, otherwise parks it until the
// next event.
func (rd *eventReader) read(r *ixp.Req, count int) {
	rd.pending = append(rd.pending, pendingRead{req: r, count: count})
	rd.flush()
}

func (rd *eventReader) flush() {
	for len(rd.pending) > 0 && len(rd.queue) > 0 {
		p := rd.pending[0]
		rd.pending = rd.pending[1:]

		n := min(p.count, len(rd.queue))
		data := make([]byte, n)
		copy(data, rd.queue)
		rd.queue = rd.queue[n:]

		p.req.Ofcall = p9p.MessageRread{Data: data}
		p.req.Respond(nil)
	}
}

// close fails the reads still waiting. Requests already dropped with their
// connection are skipped.
func (rd *eventReader) close() {
	rd.closed = true
	for _, p := range rd.pending {
		if !p.req.Responded() {
			p.req.Respond(ErrInterrupted)
		}
	}
	rd.pending = nil
	rd.queue = nil
}
