package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Task is one long-running pipeline stage.
type Task func(ctx context.Context) error

// Run runs fg on the calling goroutine and every bg task on its own
// goroutine. The first task to fail cancels the others and its error is
// returned; tasks are never restarted. fg runs on the caller so it can own a
// thread-bound resource such as a graphics context.
//
// If parent is canceled before any task fails, Run returns the parent's
// cause.
func Run(parent context.Context, fg Task, bg ...Task) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range bg {
		g.Go(func() error { return t(gctx) })
	}

	err := fg(gctx)
	if err == nil {
		err = errStopped
	}
	cancel(err)
	_ = g.Wait()

	cause := context.Cause(gctx)
	if errors.Is(cause, errStopped) {
		return nil
	}
	return cause
}

var errStopped = errors.New("pipeline: stopped")
