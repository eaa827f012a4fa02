// Package core wires the render loop, the frame pipeline and the two socket
// tasks into one pipeline with an explicit lifetime.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"visualizer/internal/config"
	"visualizer/internal/gpu"
	"visualizer/internal/pipeline"
	"visualizer/internal/plugin"
	"visualizer/internal/render"
	"visualizer/internal/renderables/plane"
	"visualizer/internal/stream"
	"visualizer/internal/view"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrClosed is the cancellation cause used by Close.
var ErrClosed = errors.New("core: closed")

// Core is one pipeline instance streaming to a single peer.
type Core struct {
	cfg      config.Config
	registry *plugin.Registry
	logger   *slog.Logger

	startOnce sync.Once
	cancel    context.CancelCauseFunc
	done      chan struct{}
	err       error

	pipe   atomic.Pointer[pipeline.Pipeline]
	sender atomic.Pointer[stream.Sender]

	cursorMu sync.Mutex
	cursor   mgl32.Vec3
}

// New returns an idle pipeline. Factories queued on registry are drained by
// its render loop; a nil registry means the process-wide one.
func New(cfg config.Config, registry *plugin.Registry, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = plugin.Default()
	}
	return &Core{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Addr returns the peer address.
func (c *Core) Addr() string {
	return net.JoinHostPort(c.cfg.Peer.Host, strconv.Itoa(c.cfg.Peer.Port))
}

// Run sets up the graphics context, connects to the peer and runs until ctx
// is done or a stage fails. The calling goroutine is locked to its OS thread
// for the lifetime of the context.
func (c *Core) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	glctx, err := gpu.NewContext(c.logger)
	if err != nil {
		return err
	}
	defer glctx.Close()

	device, err := gpu.NewDevice(glctx, c.cfg.View.Width, c.cfg.View.Height, c.cfg.Render.Samples, c.logger)
	if err != nil {
		return fmt.Errorf("create framebuffers: %w", err)
	}
	defer device.Close()

	thread := gpu.NewThread()
	var buffers []*gpu.PixelBuffer
	pipe := pipeline.New(func() pipeline.Storage {
		pb := gpu.NewPixelBuffer(thread)
		buffers = append(buffers, pb)
		return pb
	})
	defer func() {
		for _, pb := range buffers {
			pb.Delete()
		}
	}()
	c.pipe.Store(pipe)

	state := view.New(c.cfg.View.Width, c.cfg.View.Height)
	loop := render.NewLoop(device, c.registry, state, pipe, thread.Work(), c.logger)
	defer loop.Dispose()

	ground, err := plane.New()
	if err != nil {
		return fmt.Errorf("create ground plane: %w", err)
	}
	loop.Add(ground)

	addr := c.Addr()
	c.logger.Info("connecting", "addr", addr)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()
	c.logger.Info("connected", "addr", addr)

	sender := stream.NewSender(conn, pipe, c.logger)
	sender.OnCursor = c.setCursor
	c.sender.Store(sender)
	decoder := stream.NewDecoder(conn, state, c.logger)

	err = pipeline.Run(ctx, loop.Run, sender.Run, decoder.Run, func(ctx context.Context) error {
		// Blocked socket reads and writes only return once the socket is
		// closed.
		<-ctx.Done()
		conn.Close()
		return nil
	})
	if err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
		c.logger.Error("pipeline failed", "err", err)
	}
	return err
}

// Start runs the pipeline on a new goroutine and returns immediately.
// Subsequent calls have no effect.
func (c *Core) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx, c.cancel = context.WithCancelCause(ctx)
		go func() {
			defer close(c.done)
			c.err = c.Run(ctx)
		}()
	})
}

// Wait blocks until a started pipeline stops and returns the error that
// stopped it. A pipeline stopped by Close returns nil.
func (c *Core) Wait() error {
	<-c.done
	if errors.Is(c.err, ErrClosed) {
		return nil
	}
	return c.err
}

// Done is closed when a started pipeline stops.
func (c *Core) Done() <-chan struct{} { return c.done }

// Close stops a started pipeline and waits for it.
func (c *Core) Close() error {
	c.startOnce.Do(func() { close(c.done) })
	if c.cancel == nil {
		return nil
	}
	c.cancel(ErrClosed)
	return c.Wait()
}

func (c *Core) setCursor(_ uint64, p mgl32.Vec3) {
	c.cursorMu.Lock()
	c.cursor = p
	c.cursorMu.Unlock()
}

// Cursor returns the world-space point under the viewer's cursor in the most
// recently transmitted frame.
func (c *Core) Cursor() mgl32.Vec3 {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()
	return c.cursor
}

// Stats collects pipeline, registry and sender counters.
type Stats struct {
	Pipeline   pipeline.Stats
	Plugins    plugin.Stats
	FramesSent uint64
	BytesSent  uint64
}

func (c *Core) Stats() Stats {
	var s Stats
	if p := c.pipe.Load(); p != nil {
		s.Pipeline = p.Stats()
	}
	s.Plugins = c.registry.Stats()
	if snd := c.sender.Load(); snd != nil {
		s.FramesSent, s.BytesSent = snd.Sent()
	}
	return s
}
