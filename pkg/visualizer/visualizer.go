// Package visualizer streams an interactively controlled 3D view to a
// remote viewer over TCP.
//
// Open starts the pipeline in the background. Renderables are added at any
// time, from any goroutine, by registering a factory:
//
//	visualizer.Register(func() (visualizer.Renderable, error) {
//		return newMesh()
//	})
//	v, err := visualizer.Open("127.0.0.1", 4000)
//
// Factories run on the render goroutine, so they may create OpenGL
// resources. A renderable appears from the frame after its factory ran.
package visualizer

import (
	"context"
	"log/slog"

	"visualizer/internal/config"
	"visualizer/internal/core"
	"visualizer/internal/plugin"
	"visualizer/internal/render"
	"visualizer/internal/view"
)

// Renderable is drawn once per frame with the frame's Context.
type Renderable = render.Renderable

// Context is the read-only camera and view data of one frame.
type Context = view.Snapshot

// Factory constructs a Renderable on the render goroutine.
type Factory = plugin.Factory

// Stats are the counters of a running pipeline.
type Stats = core.Stats

// Config is the full pipeline configuration, as read from a TOML file.
type Config = config.Config

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Register queues f for the next frame. It never blocks; false means the
// queue was full and f was dropped. Factories registered before Open are
// carried over to the opened pipeline.
func Register(f Factory) bool {
	return plugin.Register(f)
}

type options struct {
	cfg    config.Config
	logger *slog.Logger
}

// Option customizes Open.
type Option func(*options)

// WithConfig replaces the built-in defaults. The peer address passed to
// Open still takes precedence.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResolution sets the initial frame size until the viewer resizes.
func WithResolution(width, height int) Option {
	return func(o *options) { o.cfg.View.Width, o.cfg.View.Height = width, height }
}

// WithSamples sets the multisample count.
func WithSamples(n int) Option {
	return func(o *options) { o.cfg.Render.Samples = n }
}

func newOptions(host string, port uint16, opts []Option) (options, error) {
	o := options{cfg: config.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg.Peer.Host = host
	o.cfg.Peer.Port = int(port)
	return o, o.cfg.Validate()
}

// Visualizer is a running pipeline.
type Visualizer struct {
	core *core.Core
}

// Open starts a pipeline streaming to host:port and returns without waiting
// for the connection. Connection and rendering failures are reported by
// Wait.
func Open(host string, port uint16, opts ...Option) (*Visualizer, error) {
	o, err := newOptions(host, port, opts)
	if err != nil {
		return nil, err
	}
	c := core.New(o.cfg, prepare(o), o.logger)
	c.Start(context.Background())
	return &Visualizer{core: c}, nil
}

// prepare publishes the runtime settings of o and installs the plugin
// registry the pipeline drains.
func prepare(o options) *plugin.Registry {
	config.Apply(o.cfg)
	return plugin.ConfigureDefault(o.cfg.Plugins.QueueCapacity, o.logger)
}

// Wait blocks until the pipeline stops and returns the error that stopped
// it, or nil after Close.
func (v *Visualizer) Wait() error { return v.core.Wait() }

// Done is closed when the pipeline stops.
func (v *Visualizer) Done() <-chan struct{} { return v.core.Done() }

// Close stops the pipeline and releases its resources.
func (v *Visualizer) Close() error { return v.core.Close() }

func (v *Visualizer) Stats() Stats { return v.core.Stats() }
