// Package stream runs the two socket tasks: the frame sender and the input
// decoder.
package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"visualizer/internal/pipeline"
	"visualizer/internal/wire"

	"github.com/go-gl/mathgl/mgl32"
)

// Sender transmits completed frames in capture order.
type Sender struct {
	w      io.Writer
	pipe   *pipeline.Pipeline
	logger *slog.Logger

	// OnCursor, when set, receives the world-space point under the cursor
	// for every transmitted frame. The point is not part of the wire
	// protocol yet.
	OnCursor func(seq uint64, p mgl32.Vec3)

	sent  atomic.Uint64
	bytes atomic.Uint64
}

func NewSender(w io.Writer, pipe *pipeline.Pipeline, logger *slog.Logger) *Sender {
	return &Sender{w: w, pipe: pipe, logger: logger}
}

// Run sends frames until ctx is done or a write fails.
func (s *Sender) Run(ctx context.Context) error {
	s.logger.Debug("sender started")
	for {
		f, err := s.pipe.Receive(ctx)
		if err != nil {
			return err
		}
		if err := s.send(ctx, f); err != nil {
			return err
		}
		if err := s.pipe.Release(ctx, f); err != nil {
			return err
		}
	}
}

func (s *Sender) send(ctx context.Context, f *pipeline.Frame) error {
	color, depth, err := f.Storage.Map(ctx)
	if err != nil {
		return fmt.Errorf("map frame %d: %w", f.Seq, err)
	}
	werr := s.write(f, color, depth)
	if err := f.Storage.Unmap(ctx); err != nil && werr == nil {
		werr = fmt.Errorf("unmap frame %d: %w", f.Seq, err)
	}
	return werr
}

func (s *Sender) write(f *pipeline.Frame, color []byte, depth []float32) error {
	cursor := CursorPoint(f, depth)
	if s.OnCursor != nil {
		s.OnCursor(f.Seq, cursor)
	}

	h, err := wire.NewFrameHeader(f.Width, f.Height)
	if err != nil {
		return err
	}
	size := int(h.PayloadSize)
	if len(color) < size {
		return fmt.Errorf("frame %d: color surface holds %d bytes, need %d", f.Seq, len(color), size)
	}

	var hb [wire.HeaderSize]byte
	h.Put(hb[:])
	if _, err := s.w.Write(hb[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := s.w.Write(color[:size]); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	s.sent.Add(1)
	s.bytes.Add(uint64(wire.HeaderSize + size))
	return nil
}

// CursorPoint samples the depth under the last known cursor of the frame's
// snapshot and unprojects it to world space. The cursor is clamped to the
// captured surface.
func CursorPoint(f *pipeline.Frame, depth []float32) mgl32.Vec3 {
	if f.Width <= 0 || f.Height <= 0 || len(depth) < f.Pixels() {
		return mgl32.Vec3{}
	}
	x, y := f.View.Cursor()
	cx := min(max(int(x), 0), f.Width-1)
	cy := min(max(int(y), 0), f.Height-1)
	return f.View.CursorWorld(depth[cx+cy*f.Width])
}

// Sent returns the number of frames and bytes written.
func (s *Sender) Sent() (frames, bytes uint64) {
	return s.sent.Load(), s.bytes.Load()
}
