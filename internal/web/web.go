// Package web serves a read-only HTTP view of the window manager.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/ItsNotGoodName/x-tilewm/pkg/chiext"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Executor interface {
	Do(ctx context.Context, fn func(w *wm.WM) error) error
}

type LayoutOutput struct {
	Body wm.Snapshot
}

type VersionOutput struct {
	Body build.Build
}

func NewRouter(exec Executor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger(slog.With("service", "web.Server")))
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig("x-tilewm", build.Current.Version))

	huma.Register(api, huma.Operation{
		OperationID: "get-layout",
		Method:      http.MethodGet,
		Path:        "/api/layout",
		Summary:     "Get the layout of the selected tag",
	}, func(ctx context.Context, input *struct{}) (*LayoutOutput, error) {
		var snapshot wm.Snapshot
		err := exec.Do(ctx, func(w *wm.WM) error {
			snapshot = w.Snapshot()
			return nil
		})
		if err != nil {
			return nil, huma.Error503ServiceUnavailable("window manager unavailable", err)
		}

		return &LayoutOutput{Body: snapshot}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Get build information",
	}, func(ctx context.Context, input *struct{}) (*VersionOutput, error) {
		return &VersionOutput{Body: build.Current}, nil
	})

	return r
}

type Server struct {
	address string
	handler http.Handler
}

func NewServer(address string, exec Executor) Server {
	return Server{
		address: address,
		handler: NewRouter(exec),
	}
}

func (s Server) String() string {
	return "web.Server"
}

func (s Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() { errC <- srv.ListenAndServe() }()
	slog.Info("Listening", "service", s.String(), "address", s.address)

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
