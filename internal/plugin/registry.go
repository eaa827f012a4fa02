// Package plugin queues renderer factories submitted from any goroutine
// until the render loop drains them.
//
// Registration is best effort: when the queue is full the factory is
// dropped. A factory that fails or panics is dropped without affecting the
// loop or other factories.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"visualizer/internal/render"
)

// DefaultCapacity bounds the pending queue.
const DefaultCapacity = 1024

// ErrNilRenderable is reported when a factory returns no renderable.
var ErrNilRenderable = errors.New("plugin: factory returned nil renderable")

// Factory constructs one renderable. It runs on the render goroutine, so it
// may create GPU resources.
type Factory func() (render.Renderable, error)

// Registry is a bounded queue of pending factories. Register is safe from
// any goroutine; Drain must only be called by the render loop.
type Registry struct {
	queue  chan Factory
	logger *slog.Logger

	registered atomic.Uint64
	dropped    atomic.Uint64
	built      atomic.Uint64
	failed     atomic.Uint64
}

// NewRegistry returns a registry holding at most capacity pending factories.
func NewRegistry(capacity int, logger *slog.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{queue: make(chan Factory, capacity), logger: logger}
}

// Register enqueues f and reports whether it was accepted. It never blocks.
func (r *Registry) Register(f Factory) bool {
	if f == nil {
		return false
	}
	select {
	case r.queue <- f:
		r.registered.Add(1)
		return true
	default:
		r.dropped.Add(1)
		r.logger.Debug("plugin queue full, registration dropped")
		return false
	}
}

// Drain builds every factory pending at the time of the call and appends
// the results to opaque or transparent. At most one queue's worth is taken
// per call so a busy producer cannot stall a frame.
func (r *Registry) Drain(opaque, transparent *[]render.Renderable) int {
	added := 0
	for range cap(r.queue) {
		var f Factory
		select {
		case f = <-r.queue:
		default:
			return added
		}
		rd, err := build(f)
		if err != nil {
			r.failed.Add(1)
			r.logger.Warn("plugin construction failed", "err", err)
			continue
		}
		r.built.Add(1)
		if rd.Transparent() {
			*transparent = append(*transparent, rd)
		} else {
			*opaque = append(*opaque, rd)
		}
		added++
	}
	return added
}

func build(f Factory) (rd render.Renderable, err error) {
	defer func() {
		if p := recover(); p != nil {
			rd, err = nil, fmt.Errorf("plugin: factory panicked: %v", p)
		}
	}()
	rd, err = f()
	if err != nil {
		return nil, fmt.Errorf("plugin: factory failed: %w", err)
	}
	if rd == nil {
		return nil, ErrNilRenderable
	}
	return rd, nil
}

// Pending returns the number of queued factories.
func (r *Registry) Pending() int { return len(r.queue) }

// Stats counts registrations over the registry's lifetime.
type Stats struct {
	Registered uint64
	Dropped    uint64
	Built      uint64
	Failed     uint64
}

func (r *Registry) Stats() Stats {
	return Stats{
		Registered: r.registered.Load(),
		Dropped:    r.dropped.Load(),
		Built:      r.built.Load(),
		Failed:     r.failed.Load(),
	}
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultMu.RLock()
	r := defaultRegistry
	defaultMu.RUnlock()
	if r != nil {
		return r
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry(DefaultCapacity, nil)
	}
	return defaultRegistry
}

// ConfigureDefault replaces the process-wide registry with one of the given
// capacity and logger and returns it. Factories still pending on the old
// registry move to the new one; those that do not fit are dropped.
func ConfigureDefault(capacity int, logger *slog.Logger) *Registry {
	next := NewRegistry(capacity, logger)
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if prev := defaultRegistry; prev != nil {
	move:
		for {
			select {
			case f := <-prev.queue:
				next.Register(f)
			default:
				break move
			}
		}
	}
	defaultRegistry = next
	return next
}

// Register enqueues f on the process-wide registry.
func Register(f Factory) bool {
	Default()
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry.Register(f)
}
