package view

import (
	"visualizer/internal/camera"

	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot is an immutable copy of the view taken once per frame. Every
// renderable drawn in a frame sees the same Snapshot.
type Snapshot struct {
	width, height  int
	yaw, pitch     float32
	focus          mgl32.Vec3
	position       mgl32.Vec3
	zoom           float32
	logZoom        float32
	mouseX, mouseY int32
	buttons        [3]bool
	matrix         mgl32.Mat4
}

// Resolution returns the output size in pixels.
func (s Snapshot) Resolution() (width, height int) { return s.width, s.height }

// Position returns the camera position in world space.
func (s Snapshot) Position() mgl32.Vec3 { return s.position }

// Focus returns the point the camera orbits.
func (s Snapshot) Focus() mgl32.Vec3 { return s.focus }

// CameraScale returns the zoom factor.
func (s Snapshot) CameraScale() float32 { return s.zoom }

// Matrix returns projection * view.
func (s Snapshot) Matrix() mgl32.Mat4 { return s.matrix }

func (s Snapshot) Yaw() float32     { return s.yaw }
func (s Snapshot) Pitch() float32   { return s.pitch }
func (s Snapshot) LogZoom() float32 { return s.logZoom }

// Cursor returns the last known mouse position in window coordinates.
func (s Snapshot) Cursor() (x, y int32) { return s.mouseX, s.mouseY }

// Held reports whether b was down when the snapshot was taken.
func (s Snapshot) Held(b Button) bool {
	if b < ButtonLeft || b > ButtonRight {
		return false
	}
	return s.buttons[b-1]
}

// CursorWorld unprojects the cursor through a depth sample in [0, 1] and
// returns the world-space point under it.
func (s Snapshot) CursorWorld(depth float32) mgl32.Vec3 {
	if s.width == 0 || s.height == 0 {
		return mgl32.Vec3{}
	}
	ndc := mgl32.Vec3{
		float32(s.mouseX)*2/float32(s.width) - 1,
		float32(s.mouseY)*2/float32(s.height) - 1,
		depth*2 - 1,
	}
	return camera.Unproject(s.matrix.Inv(), ndc)
}
