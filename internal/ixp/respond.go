package ixp

import (
	"github.com/docker/go-p9p"
)

// Respond finalizes r. A nil err commits the fid changes the call implies
// and sends Ofcall. A non-nil err rolls back what dispatch set up and sends
// Rerror. Respond must run on the connection's goroutine.
func (r *Req) Respond(err error) {
	c := r.Conn
	if r.done {
		c.log.Warn("Request already responded", "tag", r.Tag, "error", err)
		return
	}
	r.done = true

	switch m := r.Ifcall.(type) {
	case p9p.MessageTversion:
		if rv, ok := r.Ofcall.(p9p.MessageRversion); ok && err == nil {
			c.ch.SetMSize(int(rv.MSize))
		}
	case p9p.MessageTattach:
		if err != nil && r.Fid != nil {
			c.destroyFid(r.Fid.Num)
		}
	case p9p.MessageTopen:
		if err == nil {
			r.Fid.OMode = int(m.Mode)
			if ro, ok := r.Ofcall.(p9p.MessageRopen); ok {
				r.Fid.Qid = ro.Qid
			}
		}
	case p9p.MessageTcreate:
		if err == nil {
			r.Fid.OMode = int(m.Mode)
			if rc, ok := r.Ofcall.(p9p.MessageRcreate); ok {
				r.Fid.Qid = rc.Qid
			}
		}
	case p9p.MessageTwalk:
		var qids []p9p.Qid
		if rw, ok := r.Ofcall.(p9p.MessageRwalk); ok {
			qids = rw.Qids
		}

		if err != nil || len(qids) < len(m.Wnames) {
			if m.Fid != m.Newfid && r.Newfid != nil {
				c.destroyFid(r.Newfid.Num)
			}
			if err == nil && len(qids) == 0 {
				err = ErrNoFile
			}
		} else if len(qids) == 0 {
			r.Newfid.Qid = r.Fid.Qid
		} else {
			r.Newfid.Qid = qids[len(qids)-1]
		}
	}

	fcall := &p9p.Fcall{Tag: r.Tag}
	if err != nil {
		fcall.Type = p9p.Rerror
		fcall.Message = p9p.MessageRerror{Ename: Ename(err)}
	} else {
		fcall.Type = r.Type() + 1
		fcall.Message = r.Ofcall
		if fcall.Message == nil {
			fcall.Message = emptyResponse(fcall.Type)
		}
	}

	if werr := c.ch.WriteFcall(r.Ctx, fcall); werr != nil {
		c.log.Error("Failed to write response", "tag", r.Tag, "type", fcall.Type, "error", werr)
	}

	r.Ifcall = nil
	r.Ofcall = nil
	if r.registered {
		delete(c.tags, r.Tag)
	}
}

func emptyResponse(t p9p.FcallType) p9p.Message {
	switch t {
	case p9p.Rversion:
		return p9p.MessageRversion{}
	case p9p.Rattach:
		return p9p.MessageRattach{}
	case p9p.Rwalk:
		return p9p.MessageRwalk{}
	case p9p.Ropen:
		return p9p.MessageRopen{}
	case p9p.Rcreate:
		return p9p.MessageRcreate{}
	case p9p.Rread:
		return p9p.MessageRread{}
	case p9p.Rwrite:
		return p9p.MessageRwrite{}
	case p9p.Rclunk:
		return p9p.MessageRclunk{}
	case p9p.Rremove:
		return p9p.MessageRremove{}
	case p9p.Rstat:
		return p9p.MessageRstat{}
	default:
		return nil
	}
}
