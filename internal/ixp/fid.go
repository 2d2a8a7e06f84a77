package ixp

import (
	"context"

	"github.com/docker/go-p9p"
)

// Unopened is the OMode of a fid that has not been opened.
const Unopened = -1

// Fid is a client handle to a file, scoped to one connection.
type Fid struct {
	Num   p9p.Fid
	OMode int
	Qid   p9p.Qid
	// Aux belongs to the Server.
	Aux any
}

func (f *Fid) IsDir() bool {
	return f.Qid.Type&p9p.QTDIR != 0
}

// Writable reports whether the fid was opened for writing.
func (f *Fid) Writable() bool {
	if f.OMode == Unopened {
		return false
	}
	mode := p9p.Flag(f.OMode) & 3
	return mode == p9p.OWRITE || mode == p9p.ORDWR
}

// Req is one in-flight request. It must be finalized by exactly one call to
// Respond, on the goroutine that runs the connection.
type Req struct {
	Ctx    context.Context
	Tag    p9p.Tag
	Ifcall p9p.Message
	// Ofcall is filled in by the Server before Respond. A nil Ofcall sends
	// an empty response of the matching type.
	Ofcall p9p.Message
	Fid    *Fid
	Newfid *Fid
	Conn   *Conn

	registered bool
	done       bool
}

// Type is the request's call type.
func (r *Req) Type() p9p.FcallType {
	return r.Ifcall.Type()
}

func (r *Req) Responded() bool {
	return r.done
}
