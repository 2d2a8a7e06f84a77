package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct{}

func (fakeDisplay) ResizeClient(c *wm.Client, r geom.Rect, force bool) geom.Rect { return r }
func (fakeDisplay) FocusClient(c *wm.Client)                                     {}
func (fakeDisplay) DrawClient(c *wm.Client)                                      {}
func (fakeDisplay) BarHeight() int                                               { return 20 }

type directExec struct {
	w   *wm.WM
	err error
}

func (e directExec) Do(ctx context.Context, fn func(w *wm.WM) error) error {
	if e.err != nil {
		return e.err
	}
	return fn(e.w)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLayout(t *testing.T) {
	w := wm.New(fakeDisplay{}, geom.Rect{W: 300, H: 320}, wm.Options{})
	w.Manage(2, geom.Rect{W: 100, H: 100}, 0)

	rec := get(t, NewRouter(directExec{w: w}), "/api/layout")
	require.Equal(t, http.StatusOK, rec.Code)

	var s wm.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "1", s.Tag)
	require.Len(t, s.Areas, 2)
	require.Len(t, s.Areas[1].Frames, 1)
	assert.Equal(t, "0x2", s.Areas[1].Frames[0].Client)
}

func TestLayoutUnavailable(t *testing.T) {
	rec := get(t, NewRouter(directExec{err: errors.New("stopped")}), "/api/layout")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVersion(t *testing.T) {
	rec := get(t, NewRouter(directExec{}), "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var b build.Build
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, build.Current.Version, b.Version)
}
