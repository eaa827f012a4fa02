package pipeline

import (
	"context"
	"errors"

	"visualizer/internal/view"
	"visualizer/internal/wire"
)

// ErrMapped is returned when a storage is mapped twice.
var ErrMapped = errors.New("pipeline: storage already mapped")

// Storage is the CPU-visible backing of a pooled frame: a BGR color
// surface and a float depth surface.
type Storage interface {
	// Reserve grows both surfaces to hold at least pixels entries. It is
	// only called by the render stage.
	Reserve(pixels int)
	// Map exposes the surfaces for reading until Unmap.
	Map(ctx context.Context) (color []byte, depth []float32, err error)
	Unmap(ctx context.Context) error
}

// Frame is one pooled buffer together with the capture it holds.
type Frame struct {
	// Seq numbers captures in submission order.
	Seq uint64
	// Width and Height are the resolution the pixels were captured at.
	Width, Height int
	// View is the snapshot the captured pixels were rendered with.
	View    view.Snapshot
	Storage Storage
}

// Pixels returns Width*Height.
func (f *Frame) Pixels() int { return f.Width * f.Height }

// PayloadSize returns the color payload length in bytes.
func (f *Frame) PayloadSize() int { return f.Pixels() * wire.BytesPerPixel }

// MemoryStorage is a Storage backed by Go slices.
type MemoryStorage struct {
	color  []byte
	depth  []float32
	mapped bool
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (m *MemoryStorage) Reserve(pixels int) {
	if n := pixels * wire.BytesPerPixel; len(m.color) < n {
		m.color = make([]byte, n)
	}
	if len(m.depth) < pixels {
		m.depth = make([]float32, pixels)
	}
}

func (m *MemoryStorage) Map(context.Context) ([]byte, []float32, error) {
	if m.mapped {
		return nil, nil, ErrMapped
	}
	m.mapped = true
	return m.color, m.depth, nil
}

func (m *MemoryStorage) Unmap(context.Context) error {
	m.mapped = false
	return nil
}

// Color exposes the color surface for writers such as test devices.
func (m *MemoryStorage) Color() []byte { return m.color }

// Depth exposes the depth surface.
func (m *MemoryStorage) Depth() []float32 { return m.depth }
