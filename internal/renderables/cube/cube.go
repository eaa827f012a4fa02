// Package cube is a sample opaque renderable: a unit cube at the origin,
// colored by position.
package cube

import (
	_ "embed"

	"visualizer/internal/gpu"
	"visualizer/internal/view"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var (
	//go:embed shaders/cube.vert
	vertSrc string
	//go:embed shaders/cube.frag
	fragSrc string
)

// Vertices is a single triangle strip covering all six faces, wound
// clockwise when seen from outside.
var Vertices = []float32{
	-1, 1, 1, 1, 1, 1,
	-1, -1, 1, 1, -1, 1,
	1, -1, -1, 1, 1, 1,
	1, 1, -1, -1, 1, 1,
	-1, 1, -1, -1, -1, 1,
	-1, -1, -1, 1, -1, -1,
	-1, 1, -1, 1, 1, -1,
}

// VertexCount is the number of strip vertices in Vertices.
const VertexCount = 14

type Cube struct {
	program  *gpu.Program
	vao, vbo uint32
}

// New uploads the mesh and compiles the program. It must be called on the
// GL goroutine.
func New() (*Cube, error) {
	program, err := gpu.NewProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, err
	}
	c := &Cube{program: program}

	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)

	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(Vertices)*4, gl.Ptr(Vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
	return c, nil
}

func (c *Cube) Transparent() bool { return false }

func (c *Cube) Render(ctx view.Snapshot) {
	w, h := ctx.Resolution()
	c.program.Use()
	c.program.SetVec2("size", float32(w), float32(h))
	c.program.SetMatrix4("mvp", ctx.Matrix())

	gl.BindVertexArray(c.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, VertexCount)
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (c *Cube) Dispose() {
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
	}
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
	}
	c.program.Delete()
}
