// Package pipeline moves a fixed pool of frame buffers between the render
// stage and the sender stage.
//
// Two channels carry buffer ownership: toward the sender (capacity PoolSize)
// and back toward the render stage. A buffer is owned by exactly one of the
// render stage, a channel, or the sender stage at any time. The render stage
// blocks in Acquire when the sender has not returned a buffer yet, which
// throttles rendering to the network.
package pipeline

import (
	"context"
	"sync/atomic"
)

// PoolSize is the number of buffers in circulation.
const PoolSize = 2

// Pipeline owns the buffer pool and both ownership channels.
type Pipeline struct {
	toSender chan *Frame
	toRender chan *Frame

	rendering atomic.Int32
	sending   atomic.Int32
	submitted atomic.Uint64
	released  atomic.Uint64
}

// New allocates PoolSize frames, each backed by a storage from alloc, and
// seeds them toward the render stage.
func New(alloc func() Storage) *Pipeline {
	p := &Pipeline{
		toSender: make(chan *Frame, PoolSize),
		toRender: make(chan *Frame, PoolSize),
	}
	for range PoolSize {
		p.toRender <- &Frame{Storage: alloc()}
	}
	return p
}

// Acquire takes a buffer for the render stage. While waiting it runs any
// function received on work, so calls that must happen on the render
// goroutine make progress; work may be nil.
func (p *Pipeline) Acquire(ctx context.Context, work <-chan func()) (*Frame, error) {
	for {
		select {
		case f := <-p.toRender:
			p.rendering.Add(1)
			return f, nil
		case fn := <-work:
			fn()
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
}

// Submit hands a filled buffer to the sender stage, servicing work while the
// channel is full.
func (p *Pipeline) Submit(ctx context.Context, f *Frame, work <-chan func()) error {
	for {
		select {
		case p.toSender <- f:
			p.rendering.Add(-1)
			p.submitted.Add(1)
			return nil
		case fn := <-work:
			fn()
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

// Receive takes the next filled buffer for the sender stage.
func (p *Pipeline) Receive(ctx context.Context) (*Frame, error) {
	select {
	case f := <-p.toSender:
		p.sending.Add(1)
		return f, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// Release returns a transmitted buffer to the render stage.
func (p *Pipeline) Release(ctx context.Context, f *Frame) error {
	select {
	case p.toRender <- f:
		p.sending.Add(-1)
		p.released.Add(1)
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Stats is a point-in-time view of buffer ownership. Counts taken while both
// stages are running may be momentarily inconsistent.
type Stats struct {
	Rendering int // held by the render stage
	Queued    int // in transit toward the sender
	Sending   int // held by the sender stage
	Free      int // in transit toward the render stage

	Submitted uint64
	Released  uint64
}

// Total returns the number of buffers accounted for.
func (s Stats) Total() int { return s.Rendering + s.Queued + s.Sending + s.Free }

func (p *Pipeline) Stats() Stats {
	return Stats{
		Rendering: int(p.rendering.Load()),
		Queued:    len(p.toSender),
		Sending:   int(p.sending.Load()),
		Free:      len(p.toRender),
		Submitted: p.submitted.Load(),
		Released:  p.released.Load(),
	}
}
