package gpu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRunsOnOwner(t *testing.T) {
	th := NewThread()
	go func() {
		for fn := range th.Work() {
			fn()
		}
	}()

	ran := false
	err := th.Call(context.Background(), func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	boom := errors.New("boom")
	assert.ErrorIs(t, th.Call(context.Background(), func() error { return boom }), boom)
}

func TestCallHonorsCancellation(t *testing.T) {
	th := NewThread()
	ctx, cancel := context.WithCancelCause(context.Background())
	stop := errors.New("stopping")
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel(stop)
	}()

	// Nobody services the queue.
	err := th.Call(ctx, func() error { return nil })
	assert.ErrorIs(t, err, stop)
}
