// Package gpu owns the OpenGL context and the framebuffers frames are drawn
// into and read back from.
package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var glInitOnce sync.Once

// Context is a hidden window whose GL context is current on the goroutine
// that created it. That goroutine must be locked to its OS thread.
type Context struct {
	window *glfw.Window
}

// NewContext creates a hidden window with an OpenGL 4.1 core context and
// makes it current.
func NewContext(logger *slog.Logger) (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(100, 100, "visualizer", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	// Frame pacing is done by the render loop.
	glfw.SwapInterval(0)

	logger.Info("OpenGL context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	applySettings()
	return &Context{window: window}, nil
}

// applySettings sets the fixed pipeline state every frame is drawn with.
func applySettings() {
	gl.Enable(gl.MULTISAMPLE)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CW)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
}

// SwapBuffers presents the default framebuffer of the hidden window.
func (c *Context) SwapBuffers() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

// MaxSamples returns the largest multisample count the driver supports.
func (c *Context) MaxSamples() int {
	var n int32
	gl.GetIntegerv(gl.MAX_SAMPLES, &n)
	return int(n)
}

// Close destroys the window and terminates glfw.
func (c *Context) Close() {
	c.window.Destroy()
	glfw.Terminate()
}
