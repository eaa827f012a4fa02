package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return context.Cause(ctx)
}

func TestRunBackgroundFailureWins(t *testing.T) {
	boom := errors.New("socket closed")
	var fgErr error
	err := Run(context.Background(),
		func(ctx context.Context) error {
			fgErr = blockUntilDone(ctx)
			return fgErr
		},
		func(ctx context.Context) error { return boom },
		blockUntilDone,
	)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, fgErr, boom)
}

func TestRunForegroundFailureWins(t *testing.T) {
	boom := errors.New("render failed")
	var bgErr error
	err := Run(context.Background(),
		func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			return boom
		},
		func(ctx context.Context) error {
			bgErr = blockUntilDone(ctx)
			return errors.New("later failure")
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, bgErr, boom)
}

func TestRunParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := Run(ctx, blockUntilDone, blockUntilDone)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunForegroundStops(t *testing.T) {
	err := Run(context.Background(),
		func(ctx context.Context) error { return nil },
		blockUntilDone,
	)
	assert.NoError(t, err)
}
