package ixp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/docker/go-p9p"
	"github.com/google/uuid"
)

// Conn is one client connection. Its fid and tag tables are only touched by
// the goroutine running Serve.
type Conn struct {
	ID uuid.UUID

	ch       p9p.Channel
	srv      Server
	maxMSize int
	log      *slog.Logger

	tags map[p9p.Tag]*Req
	fids map[p9p.Fid]*Fid

	postMu sync.Mutex
	posted []func()
	closed bool
	postC  chan struct{}
}

// NewConn wraps ch. A maxMSize above zero caps the message size a client
// can negotiate.
func NewConn(ch p9p.Channel, srv Server, maxMSize int) *Conn {
	id := uuid.New()
	return &Conn{
		ID:       id,
		ch:       ch,
		srv:      srv,
		maxMSize: maxMSize,
		log:      slog.With("conn", id.String()),
		tags:     make(map[p9p.Tag]*Req),
		fids:     make(map[p9p.Fid]*Fid),
		postC:    make(chan struct{}, 1),
	}
}

// Post queues fn to run on the connection's goroutine. It never blocks and
// may be called from any goroutine. Functions posted after the connection
// closed are dropped.
func (c *Conn) Post(fn func()) {
	c.postMu.Lock()
	if c.closed {
		c.postMu.Unlock()
		return
	}
	c.posted = append(c.posted, fn)
	c.postMu.Unlock()

	core.FlagChannel(c.postC)
}

func (c *Conn) runPosted() {
	c.postMu.Lock()
	posted := c.posted
	c.posted = nil
	c.postMu.Unlock()

	for _, fn := range posted {
		fn()
	}
}

// Serve handles requests until the channel fails or ctx is done. A message
// is fully dispatched before the next one is read. A clean EOF returns nil.
func (c *Conn) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.teardown()

	fcallC := make(chan *p9p.Fcall)
	nextC := make(chan struct{})
	errC := make(chan error, 1)
	go c.read(ctx, fcallC, nextC, errC)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errC:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case fcall := <-fcallC:
			c.handle(ctx, fcall)

			select {
			case nextC <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-c.postC:
			c.runPosted()
		}
	}
}

func (c *Conn) read(ctx context.Context, fcallC chan<- *p9p.Fcall, nextC <-chan struct{}, errC chan<- error) {
	for {
		fcall := new(p9p.Fcall)
		if err := c.ch.ReadFcall(ctx, fcall); err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				// Idle connection.
				continue
			}
			errC <- err
			return
		}

		select {
		case fcallC <- fcall:
		case <-ctx.Done():
			return
		}

		select {
		case <-nextC:
		case <-ctx.Done():
			return
		}
	}
}

// teardown drops every in-flight request and destroys every fid.
func (c *Conn) teardown() {
	c.postMu.Lock()
	c.closed = true
	c.posted = nil
	c.postMu.Unlock()

	for tag, r := range c.tags {
		c.log.Debug("Dropping in-flight request", "tag", tag, "type", r.Type())
		r.done = true
		delete(c.tags, tag)
	}
	for num := range c.fids {
		c.destroyFid(num)
	}
}

func (c *Conn) handle(ctx context.Context, fcall *p9p.Fcall) {
	r := &Req{
		Ctx:    ctx,
		Tag:    fcall.Tag,
		Ifcall: fcall.Message,
		Conn:   c,
	}

	if _, ok := c.tags[r.Tag]; ok {
		r.Respond(ErrTagInUse)
		return
	}
	c.tags[r.Tag] = r
	r.registered = true

	c.dispatch(r)
}

func (c *Conn) dispatch(r *Req) {
	switch m := r.Ifcall.(type) {
	case p9p.MessageTversion:
		if m.MSize < MinMSize {
			r.Respond(ErrMSize)
			return
		}
		version := "unknown"
		if m.Version == "9P" || m.Version == "9P2000" {
			version = m.Version
		}
		msize := m.MSize
		if c.maxMSize > 0 && msize > uint32(c.maxMSize) {
			msize = uint32(c.maxMSize)
		}
		r.Ofcall = p9p.MessageRversion{MSize: msize, Version: version}
		r.Respond(nil)
	case p9p.MessageTattach:
		f, ok := c.createFid(m.Fid)
		if !ok {
			r.Respond(ErrFidInUse)
			return
		}
		r.Fid = f
		c.srv.Attach(r)
	case p9p.MessageTclunk:
		if !c.destroyFid(m.Fid) {
			r.Respond(ErrNoFid)
			return
		}
		r.Respond(nil)
	case p9p.MessageTcreate:
		if r.Fid = c.fids[m.Fid]; r.Fid == nil {
			r.Respond(ErrNoFid)
			return
		}
		if r.Fid.OMode != Unopened {
			r.Respond(ErrBotch)
			return
		}
		if !r.Fid.IsDir() {
			r.Respond(ErrNotDir)
			return
		}
		srv, ok := c.srv.(Creator)
		if !ok {
			r.Respond(ErrNoFunc)
			return
		}
		srv.Create(r)
	case p9p.MessageTopen:
		if r.Fid = c.fids[m.Fid]; r.Fid == nil {
			r.Respond(ErrNoFid)
			return
		}
		if r.Fid.IsDir() && m.Mode|p9p.ORCLOSE != p9p.OREAD|p9p.ORCLOSE {
			r.Respond(ErrIsDir)
			return
		}
		r.Ofcall = p9p.MessageRopen{Qid: r.Fid.Qid}
		srv, ok := c.srv.(Opener)
		if !ok {
			r.Respond(ErrNoFunc)
			return
		}
		srv.Open(r)
	case p9p.MessageTread:
		if r.Fid = c.fids[m.Fid]; r.Fid == nil {
			r.Respond(ErrNoFid)
			return
		}
		if r.Fid.OMode == Unopened {
			r.Respond(ErrBotch)
			return
		}
		srv, ok := c.srv.(Reader)
		if !ok {
			r.Respond(ErrNoFunc)
			return
		}
		srv.Read(r)
	case p9p.MessageTremove:
		if r.Fid = c.fids[m.Fid]; r.Fid == nil {
			r.Respond(ErrNoFid)
			return
		}
		srv, ok := c.srv.(Remover)
		if !ok {
			r.Respond(ErrNoFunc)
			return
		}
		srv.Remove(r)
	case p9p.MessageTstat:
		if r.Fid = c.fids[m.Fid]; r.Fid == nil {
			r.Respond(ErrNoFid)
			return
		}
		srv, ok := c.srv.(Stater)
		if !ok {
			r.Respond(ErrNoFunc)
			return
		}
		srv.Stat(r)
	case p9p.MessageTwalk:
		if r.Fid = c.fids[m.Fid]; r.Fid == nil {
			r.Respond(ErrNoFid)
			return
		}
		if r.Fid.OMode != Unopened {
			r.Respond(ErrWalkOpen)
			return
		}
		if len(m.Wnames) > 0 && !r.Fid.IsDir() {
			r.Respond(ErrNotDir)
			return
		}
		if m.Fid != m.Newfid {
			f, ok := c.createFid(m.Newfid)
			if !ok {
				r.Respond(ErrFidInUse)
				return
			}
			r.Newfid = f
		} else {
			r.Newfid = r.Fid
		}
		srv, ok := c.srv.(Walker)
		if !ok {
			r.Respond(ErrNoFunc)
			return
		}
		srv.Walk(r)
	case p9p.MessageTwrite:
		if r.Fid = c.fids[m.Fid]; r.Fid == nil {
			r.Respond(ErrNoFid)
			return
		}
		if !r.Fid.Writable() {
			r.Respond(ErrNotWritable)
			return
		}
		srv, ok := c.srv.(Writer)
		if !ok {
			r.Respond(ErrNoFunc)
			return
		}
		srv.Write(r)
	default:
		// Flush, wstat and auth land here too.
		r.Respond(ErrNoFunc)
	}
}

func (c *Conn) createFid(num p9p.Fid) (*Fid, bool) {
	if _, ok := c.fids[num]; ok {
		return nil, false
	}

	f := &Fid{
		Num:   num,
		OMode: Unopened,
	}
	c.fids[num] = f

	return f, true
}

func (c *Conn) destroyFid(num p9p.Fid) bool {
	f, ok := c.fids[num]
	if !ok {
		return false
	}
	delete(c.fids, num)

	if d, ok := c.srv.(FidDestroyer); ok {
		d.DestroyFid(f)
	}

	return true
}

// MSize is the negotiated message size.
func (c *Conn) MSize() int {
	return c.ch.MSize()
}

// IOUnit is the largest read or write payload that fits in one message.
func (c *Conn) IOUnit() int {
	return max(c.MSize()-IOHdrSize, 0)
}

// Fid returns the live fid numbered num.
func (c *Conn) Fid(num p9p.Fid) (*Fid, bool) {
	f, ok := c.fids[num]
	return f, ok
}
