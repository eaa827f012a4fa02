package gpu

import "context"

// Thread hands functions to the goroutine that owns the GL context. The
// owner drains Work; other goroutines use Call.
type Thread struct {
	work chan func()
}

func NewThread() *Thread {
	return &Thread{work: make(chan func())}
}

// Work is the queue the owning goroutine services.
func (t *Thread) Work() <-chan func() { return t.work }

// Call runs fn on the owning goroutine and waits for its result. If ctx ends
// first, Call returns the cancellation cause; fn may still run later if it
// was already handed over.
func (t *Thread) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case t.work <- func() { done <- fn() }:
	case <-ctx.Done():
		return context.Cause(ctx)
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
