package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"visualizer/internal/view"
	"visualizer/internal/wire"
)

// Decoder applies viewer input to the view state, one message at a time in
// receipt order.
type Decoder struct {
	r      io.Reader
	state  *view.State
	logger *slog.Logger
}

func NewDecoder(r io.Reader, state *view.State, logger *slog.Logger) *Decoder {
	return &Decoder{r: r, state: state, logger: logger}
}

// Run reads until the reader fails. A short read is fatal. Cancellation is
// observed between messages; unblocking a pending read requires closing the
// underlying connection.
func (d *Decoder) Run(ctx context.Context) error {
	for {
		if err := context.Cause(ctx); err != nil {
			return err
		}
		m, err := wire.ReadInput(d.r)
		if err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return fmt.Errorf("read input: %w", err)
		}
		d.Apply(m)
	}
}

// Apply dispatches one decoded message. Unknown types are ignored.
func (d *Decoder) Apply(m wire.Input) {
	switch m.Type {
	case wire.Resize:
		d.state.Resize(m.X, m.Y)
	case wire.MouseDown:
		d.state.Press(view.Button(m.Z), m.X, m.Y)
	case wire.MouseUp:
		d.state.Release(view.Button(m.Z), m.X, m.Y)
	case wire.MouseDrag:
		d.state.Drag(m.X, m.Y)
	case wire.MouseMove:
		d.state.Move(m.X, m.Y)
	case wire.Scroll:
		d.state.Scroll(m.ScrollAmount())
	default:
		d.logger.Debug("ignoring input", "type", m.Type)
	}
}
