package render

import (
	"visualizer/internal/pipeline"
	"visualizer/internal/view"
)

// Renderable is a drawing unit registered with the loop. Transparent is
// consulted once, when the renderable is added.
type Renderable interface {
	Render(ctx view.Snapshot)
	Transparent() bool
}

// Disposer is implemented by renderables that own GPU resources.
type Disposer interface {
	Dispose()
}

// Source supplies newly constructed renderables at the start of each frame.
type Source interface {
	// Drain appends every pending renderable to opaque or transparent and
	// returns how many were added.
	Drain(opaque, transparent *[]Renderable) int
}

// Device is the graphics side of the loop. All methods are called from the
// loop's goroutine.
type Device interface {
	// Resize sets the size of the surface drawn next.
	Resize(width, height int)
	// Readback starts copying the last presented frame into f and records
	// its resolution in f.
	Readback(f *pipeline.Frame) error
	// Begin binds and clears the draw surface.
	Begin()
	// DepthWrite toggles depth buffer writes.
	DepthWrite(enabled bool)
	// End makes the drawn frame the readable one and presents it.
	End() error
}
