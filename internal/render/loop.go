// Package render runs the frame loop that owns the graphics context.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"visualizer/internal/config"
	"visualizer/internal/pipeline"
	"visualizer/internal/profiling"
	"visualizer/internal/ratelimit"
	"visualizer/internal/view"
)

// Loop draws frames into pooled buffers. It must run on the goroutine that
// owns the device.
type Loop struct {
	device Device
	source Source
	state  *view.State
	pipe   *pipeline.Pipeline
	work   <-chan func()
	logger *slog.Logger

	opaque      []Renderable
	transparent []Renderable

	// prev is the snapshot of the frame currently held by the readable
	// surface.
	prev view.Snapshot
	seq  uint64

	prof    *profiling.Frame
	limiter *ratelimit.Limiter
}

// NewLoop wires a loop. work carries calls that other goroutines need run
// on the device goroutine; it is serviced while the loop waits on the
// pipeline and between renderables, and may be nil.
func NewLoop(device Device, source Source, state *view.State, pipe *pipeline.Pipeline, work <-chan func(), logger *slog.Logger) *Loop {
	return &Loop{
		device:  device,
		source:  source,
		state:   state,
		pipe:    pipe,
		work:    work,
		logger:  logger,
		prev:    state.Snapshot(),
		prof:    profiling.NewFrame(),
		limiter: ratelimit.New(),
	}
}

// Add installs r directly, bypassing the source. Used for built-in
// renderables during setup.
func (l *Loop) Add(r Renderable) {
	if r.Transparent() {
		l.transparent = append(l.transparent, r)
	} else {
		l.opaque = append(l.opaque, r)
	}
}

// Counts returns the number of opaque and transparent renderables.
func (l *Loop) Counts() (opaque, transparent int) {
	return len(l.opaque), len(l.transparent)
}

// Run draws frames until ctx is done or a frame fails.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Frame(ctx); err != nil {
			return err
		}
	}
}

// Frame renders one frame and hands a buffer holding the previous one to
// the sender.
func (l *Loop) Frame(ctx context.Context) error {
	l.prof.Reset()

	if err := l.limiter.Wait(ctx, config.GetFPSLimit()); err != nil {
		return err
	}

	// Renderables registered from here on wait for the next frame.
	if n := l.source.Drain(&l.opaque, &l.transparent); n > 0 {
		l.logger.Debug("renderables added", "count", n)
	}

	snap := l.state.Update()
	width, height := snap.Resolution()
	l.device.Resize(width, height)

	stop := l.prof.Track("render.acquire")
	f, err := l.pipe.Acquire(ctx, l.work)
	stop()
	if err != nil {
		return err
	}

	if err := l.device.Readback(f); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	f.View = l.prev
	l.seq++
	f.Seq = l.seq

	l.device.Begin()
	stop = l.prof.Track("render.opaque")
	for _, r := range l.opaque {
		r.Render(snap)
		l.yield()
	}
	stop()

	l.device.DepthWrite(false)
	stop = l.prof.Track("render.transparent")
	for _, r := range l.transparent {
		r.Render(snap)
		l.yield()
	}
	stop()
	l.device.DepthWrite(true)

	stop = l.prof.Track("render.present")
	err = l.device.End()
	stop()
	if err != nil {
		return fmt.Errorf("present: %w", err)
	}
	l.prev = snap

	stop = l.prof.Track("render.submit")
	err = l.pipe.Submit(ctx, f, l.work)
	stop()
	if err != nil {
		return err
	}

	l.reportSlow()
	return nil
}

// yield runs at most one pending call without blocking.
func (l *Loop) yield() {
	select {
	case fn := <-l.work:
		fn()
	default:
	}
}

func (l *Loop) reportSlow() {
	limit := config.GetSlowFrameThreshold()
	if limit <= 0 {
		return
	}
	if d := l.prof.Elapsed(); d > limit {
		// Time spent blocked on the sender is backpressure, not slowness.
		busy := d - l.prof.Get("render.acquire") - l.prof.Get("render.submit")
		if busy > limit {
			l.logger.Warn("slow frame", "took", d.Round(time.Microsecond), "top", l.prof.Top(3))
		}
	}
}

// Dispose releases renderables in reverse registration order.
func (l *Loop) Dispose() {
	for i := len(l.transparent) - 1; i >= 0; i-- {
		if d, ok := l.transparent[i].(Disposer); ok {
			d.Dispose()
		}
	}
	for i := len(l.opaque) - 1; i >= 0; i-- {
		if d, ok := l.opaque[i].(Disposer); ok {
			d.Dispose()
		}
	}
	l.opaque, l.transparent = nil, nil
}
