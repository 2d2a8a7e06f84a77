package ixp

import (
	"errors"

	"github.com/docker/go-p9p"
)

// Protocol errors. The Ename of each is sent verbatim in Rerror.
var (
	ErrTagInUse    = p9p.MessageRerror{Ename: "tag in use"}
	ErrFidInUse    = p9p.MessageRerror{Ename: "fid in use"}
	ErrNoFunc      = p9p.MessageRerror{Ename: "function not implemented"}
	ErrBotch       = p9p.MessageRerror{Ename: "9P protocol botch"}
	ErrNoFile      = p9p.MessageRerror{Ename: "the requested file does not exist"}
	ErrNoFid       = p9p.MessageRerror{Ename: "fid does not exist"}
	ErrNotDir      = p9p.MessageRerror{Ename: "not a directory"}
	ErrIsDir       = p9p.MessageRerror{Ename: "cannot perform operation on a directory"}
	ErrWalkOpen    = p9p.MessageRerror{Ename: "cannot walk from an open fid"}
	ErrNotWritable = p9p.MessageRerror{Ename: "write on fid not opened for writing"}
	ErrMSize       = p9p.MessageRerror{Ename: "version: message size too small"}
)

// Ename is the wire text for err.
func Ename(err error) string {
	var rerr p9p.MessageRerror
	if errors.As(err, &rerr) {
		return rerr.Ename
	}
	return err.Error()
}
