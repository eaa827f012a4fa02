package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// BaseRadius is the camera distance from the focus point at zoom 1.
	BaseRadius = 4.0
	// FOV is the fixed vertical field of view in degrees.
	FOV = 90.0

	nearFactor = 0.01
	farFactor  = 1000.0
)

var up = mgl32.Vec3{0, 1, 0}

// Orbit describes a camera circling a focus point
type Orbit struct {
	Yaw   float32
	Pitch float32
	Zoom  float32
	Focus mgl32.Vec3
}

// Position returns the world-space camera position.
func (o Orbit) Position() mgl32.Vec3 {
	sy, cy := math32.Sincos(o.Yaw)
	sp, cp := math32.Sincos(o.Pitch)
	r := o.Zoom * BaseRadius
	return o.Focus.Add(mgl32.Vec3{r * sy * cp, -r * sp, r * cy * cp})
}

func (o Orbit) View() mgl32.Mat4 {
	return mgl32.LookAtV(o.Position(), o.Focus, up)
}

// Projection scales the clip planes with zoom so depth precision holds at
// every zoom level.
func (o Orbit) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(FOV), aspect, nearFactor*o.Zoom, farFactor*o.Zoom)
}

// Matrix returns projection * view.
func (o Orbit) Matrix(aspect float32) mgl32.Mat4 {
	return o.Projection(aspect).Mul4(o.View())
}

// WrapAngle maps a into (-pi, pi].
func WrapAngle(a float32) float32 {
	a = math32.Mod(a+math32.Pi, 2*math32.Pi)
	if a <= 0 {
		a += 2 * math32.Pi
	}
	return a - math32.Pi
}

// ClampPitch limits p to [-pi/2, pi/2].
func ClampPitch(p float32) float32 {
	return mgl32.Clamp(p, -math32.Pi/2, math32.Pi/2)
}

// Unproject maps a normalized device coordinate back to world space using
// the inverse of a projection*view matrix.
func Unproject(inverse mgl32.Mat4, ndc mgl32.Vec3) mgl32.Vec3 {
	p := inverse.Mul4x1(ndc.Vec4(1))
	if p.W() == 0 {
		return p.Vec3()
	}
	return p.Vec3().Mul(1 / p.W())
}
