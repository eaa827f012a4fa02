// Package view holds the shared camera/view record mutated by viewer input
// and read by the render loop once per frame.
package view

import (
	"math"
	"sync"

	"visualizer/internal/camera"
	"visualizer/internal/wire"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var up = mgl32.Vec3{0, 1, 0}

// Button identifies a mouse button by its wire code.
type Button int32

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

const (
	orbitSensitivity = 400
	panSensitivity   = 100
	zoomSensitivity  = 400
	scrollFactor     = 0.1

	// MinZoom and MaxLogZoom bound the zoom so exp(logZoom) stays positive
	// and the camera distance can be squared in float32.
	MinZoom    = 1e-3
	MaxLogZoom = 30
)

var minLogZoom = math32.Log(MinZoom)

func clampLogZoom(lz float32) float32 {
	return min(max(lz, minLogZoom), MaxLogZoom)
}

// Defaults used by New.
const (
	DefaultYaw     = 1.0
	DefaultPitch   = 0.5
	DefaultLogZoom = 1.0
)

// State is the single mutable view record. All methods are safe for
// concurrent use.
type State struct {
	mu sync.Mutex

	width, height int
	yaw, pitch    float32
	focus         mgl32.Vec3
	position      mgl32.Vec3
	zoom          float32
	logZoom       float32

	mouseX, mouseY int32
	left           bool
	middle         bool
	right          bool
}

// New returns a state for a width x height view with the mouse centered.
func New(width, height int) *State {
	s := &State{
		width:   width,
		height:  height,
		yaw:     DefaultYaw,
		pitch:   DefaultPitch,
		logZoom: DefaultLogZoom,
		mouseX:  int32(width / 2),
		mouseY:  int32(height / 2),
	}
	s.zoom = math32.Exp(s.logZoom)
	s.position = s.orbit().Position()
	return s
}

func (s *State) orbit() camera.Orbit {
	return camera.Orbit{Yaw: s.yaw, Pitch: s.pitch, Zoom: s.zoom, Focus: s.focus}
}

// Resize sets the output resolution. Sizes a frame header cannot carry are
// ignored.
func (s *State) Resize(width, height int32) {
	if width <= 0 || height <= 0 || width > wire.MaxDimension || height > wire.MaxDimension {
		return
	}
	s.mu.Lock()
	s.width, s.height = int(width), int(height)
	s.mu.Unlock()
}

// Press marks b as held and records the cursor.
func (s *State) Press(b Button, x, y int32) {
	s.mu.Lock()
	s.setButton(b, true)
	s.mouseX, s.mouseY = x, y
	s.mu.Unlock()
}

// Release clears b and records the cursor.
func (s *State) Release(b Button, x, y int32) {
	s.mu.Lock()
	s.setButton(b, false)
	s.mouseX, s.mouseY = x, y
	s.mu.Unlock()
}

func (s *State) setButton(b Button, down bool) {
	switch b {
	case ButtonLeft:
		s.left = down
	case ButtonMiddle:
		s.middle = down
	case ButtonRight:
		s.right = down
	}
}

// Move records the cursor without other effects.
func (s *State) Move(x, y int32) {
	s.mu.Lock()
	s.mouseX, s.mouseY = x, y
	s.mu.Unlock()
}

// Drag applies the cursor delta since the last recorded position: left
// orbits, right pans the focus, middle zooms.
func (s *State) Drag(x, y int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dx := float32(x - s.mouseX)
	dy := float32(y - s.mouseY)

	if s.left {
		s.yaw = camera.WrapAngle(s.yaw - dx/orbitSensitivity)
		s.pitch = camera.ClampPitch(s.pitch + dy/orbitSensitivity)
	}
	if s.right {
		sy, cy := math32.Sincos(s.yaw)
		sp := math32.Sin(s.pitch)
		// Pan in the ground plane; vertical drag is foreshortened by pitch.
		px := -dx/panSensitivity*cy - dy/panSensitivity*sy*sp
		pz := dx/panSensitivity*sy - dy/panSensitivity*cy*sp
		s.focus = s.focus.Add(mgl32.Vec3{px, 0, pz}.Mul(s.zoom))
	}
	if s.middle {
		s.setZoom(s.zoom + dy/zoomSensitivity)
	}
	s.mouseX, s.mouseY = x, y
}

// setZoom keeps zoom == exp(logZoom).
func (s *State) setZoom(z float32) {
	if z < MinZoom {
		z = MinZoom
	}
	s.logZoom = clampLogZoom(math32.Log(z))
	s.zoom = math32.Exp(s.logZoom)
}

// Scroll adds a tenth of amount to the log-zoom accumulator. Non-finite
// amounts are ignored.
func (s *State) Scroll(amount float64) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	s.mu.Lock()
	lz := float64(s.logZoom) + amount*scrollFactor
	s.logZoom = float32(max(min(lz, MaxLogZoom), float64(minLogZoom)))
	s.zoom = math32.Exp(s.logZoom)
	s.mu.Unlock()
}

// Update recomputes zoom and camera position and returns a snapshot of the
// result. The render loop calls it once per frame.
func (s *State) Update() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = math32.Exp(s.logZoom)
	s.position = s.orbit().Position()
	return s.snapshot()
}

// Snapshot returns a copy of the current state without recomputing.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *State) snapshot() Snapshot {
	o := s.orbit()
	aspect := float32(1)
	if s.height > 0 {
		aspect = float32(s.width) / float32(s.height)
	}
	return Snapshot{
		width:    s.width,
		height:   s.height,
		yaw:      s.yaw,
		pitch:    s.pitch,
		focus:    s.focus,
		position: s.position,
		zoom:     s.zoom,
		logZoom:  s.logZoom,
		mouseX:   s.mouseX,
		mouseY:   s.mouseY,
		buttons:  [3]bool{s.left, s.middle, s.right},
		matrix:   o.Projection(aspect).Mul4(mgl32.LookAtV(s.position, s.focus, up)),
	}
}
