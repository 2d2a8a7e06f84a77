// Package ixp serves a file tree over 9P2000. It owns the per-connection fid
// and tag tables and checks every request before it reaches the Server.
package ixp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/docker/go-p9p"
)

// InitialMSize is the message size a connection starts with, before version
// negotiation.
const InitialMSize = 1024

// MinMSize is the smallest message size a client may negotiate.
const MinMSize = 256

// IOHdrSize is the overhead of a read or write message around its data.
const IOHdrSize = 24

// Server implements the file tree. Attach is required. The other calls are
// served only when the Server also implements the matching interface,
// otherwise they fail with ErrNoFunc.
//
// Every method must eventually call Req.Respond exactly once, either before
// returning or later through Conn.Post.
type Server interface {
	Attach(r *Req)
}

type Creator interface {
	Create(r *Req)
}

type Opener interface {
	Open(r *Req)
}

type Reader interface {
	Read(r *Req)
}

type Remover interface {
	Remove(r *Req)
}

type Stater interface {
	Stat(r *Req)
}

type Walker interface {
	Walk(r *Req)
}

type Writer interface {
	Write(r *Req)
}

// FidDestroyer is told about every fid that goes away, by clunk, failed
// attach or walk, or connection teardown.
type FidDestroyer interface {
	DestroyFid(f *Fid)
}

// ParseAddress splits a dial string such as "unix!/tmp/sock" or
// "tcp!localhost!564" into a network and an address for net.Listen.
func ParseAddress(address string) (network string, addr string, err error) {
	network, rest, ok := strings.Cut(address, "!")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("invalid address: %q", address)
	}

	switch network {
	case "unix":
		return network, rest, nil
	case "tcp":
		host, port, ok := strings.Cut(rest, "!")
		if !ok || port == "" {
			return "", "", fmt.Errorf("invalid tcp address: %q", address)
		}
		return network, net.JoinHostPort(host, port), nil
	default:
		return "", "", fmt.Errorf("unsupported network: %q", network)
	}
}

// Serve accepts connections on l until ctx is done. Each connection runs on
// its own goroutine.
func Serve(ctx context.Context, l net.Listener, srv Server, maxMSize int) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		nc, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer nc.Close()

			conn := NewConn(p9p.NewChannel(nc, InitialMSize), srv, maxMSize)
			log := conn.log.With("remote", nc.RemoteAddr().String())
			log.Debug("Connection opened")
			if err := conn.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Debug("Connection closed", "error", err)
				return
			}
			log.Debug("Connection closed")
		}()
	}
}

// Service listens on a dial string and serves srv under a suture supervisor.
type Service struct {
	Address  string
	Server   Server
	MaxMSize int
}

func NewService(address string, srv Server, maxMSize int) Service {
	return Service{
		Address:  address,
		Server:   srv,
		MaxMSize: maxMSize,
	}
}

func (s Service) String() string {
	return "ixp.Service"
}

func (s Service) Serve(ctx context.Context) error {
	network, addr, err := ParseAddress(s.Address)
	if err != nil {
		return err
	}

	if network == "unix" {
		if err := prepareSocket(addr); err != nil {
			return err
		}
		defer os.Remove(addr)
	}

	l, err := net.Listen(network, addr)
	if err != nil {
		return err
	}
	defer l.Close()

	slog.Info("Serving 9P", "address", s.Address)

	return Serve(ctx, l, s.Server, s.MaxMSize)
}

// prepareSocket creates the socket's directory and removes a socket left
// behind by a dead process.
func prepareSocket(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	exists, err := core.FileExists(path)
	if err != nil || !exists {
		return err
	}

	if c, err := net.Dial("unix", path); err == nil {
		c.Close()
		return fmt.Errorf("address already in use: %s", path)
	}

	return os.Remove(path)
}
