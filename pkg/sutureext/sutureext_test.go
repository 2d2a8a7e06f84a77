package sutureext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, SanitizeError(ctx, nil))

	errBoom := errors.New("boom")
	assert.Equal(t, errBoom, SanitizeError(ctx, errBoom))

	err := SanitizeError(ctx, fmt.Errorf("dial: %w", context.DeadlineExceeded))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
	assert.EqualError(t, err, "dial: context deadline exceeded")

	err = SanitizeError(ctx, errors.Join(context.Canceled, suture.ErrDoNotRestart))
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)
	assert.False(t, errors.Is(err, context.Canceled))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, SanitizeError(canceled, errBoom), context.Canceled)
}

func TestServiceFunc(t *testing.T) {
	s := NewServiceFunc("test", func(ctx context.Context) error { return nil })
	assert.Equal(t, "test", s.String())
	assert.NoError(t, s.Serve(context.Background()))
}

func TestEventHook(t *testing.T) {
	var buf bytes.Buffer
	hook := EventHook(slog.New(slog.NewTextHandler(&buf, nil)))

	hook(suture.EventServiceTerminate{
		SupervisorName: "root",
		ServiceName:    "ixp.Service",
		Restarting:     true,
		Err:            errors.New("address already in use"),
	})

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "service=ixp.Service")
	assert.Contains(t, out, "supervisor=root")
	assert.Contains(t, out, "restarting=true")
	assert.Contains(t, out, `error="address already in use"`)
}
