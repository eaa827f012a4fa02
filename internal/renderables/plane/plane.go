// Package plane draws the translucent ground grid under the camera focus.
package plane

import (
	_ "embed"

	"visualizer/internal/gpu"
	"visualizer/internal/view"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var (
	//go:embed shaders/plane.vert
	vertSrc string
	//go:embed shaders/plane.frag
	fragSrc string
)

// Plane is a quad in the y=0 plane centered on the focus. Its corners are
// generated in the vertex shader.
type Plane struct {
	program *gpu.Program
	vao     uint32
}

// New compiles the grid program. It must be called on the GL goroutine.
func New() (*Plane, error) {
	program, err := gpu.NewProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, err
	}
	p := &Plane{program: program}
	// Core profile draws need a bound vertex array even without attributes.
	gl.GenVertexArrays(1, &p.vao)
	return p, nil
}

func (p *Plane) Transparent() bool { return true }

func (p *Plane) Render(ctx view.Snapshot) {
	w, h := ctx.Resolution()

	p.program.Use()
	p.program.SetVec2("size", float32(w), float32(h))
	p.program.SetVec3("offset", ctx.Focus())
	p.program.SetFloat("scale", 1/ctx.CameraScale())
	p.program.SetMatrix4("mvp", ctx.Matrix())

	gl.BindVertexArray(p.vao)
	// Visible from below as well.
	gl.Disable(gl.CULL_FACE)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.Enable(gl.CULL_FACE)
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (p *Plane) Dispose() {
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	p.program.Delete()
}
