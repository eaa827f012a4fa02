package gpu

import (
	"fmt"
	"log/slog"

	"visualizer/internal/config"
	"visualizer/internal/pipeline"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// target is a framebuffer with color and depth renderbuffers.
type target struct {
	fbo, color, depth uint32
	width, height     int
	samples           int32
}

func newTarget(width, height int, samples int32) (target, error) {
	t := target{width: width, height: height, samples: samples}
	w, h := int32(width), int32(height)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenRenderbuffers(1, &t.color)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.color)
	if samples > 0 {
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, gl.RGBA8, w, h)
	} else {
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.RGBA8, w, h)
	}
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, t.color)

	gl.GenRenderbuffers(1, &t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	if samples > 0 {
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, gl.DEPTH_COMPONENT24, w, h)
	} else {
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
	}
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.delete()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return target{}, fmt.Errorf("framebuffer %dx%d (%d samples) incomplete: 0x%x", width, height, samples, status)
	}
	return t, nil
}

func (t *target) delete() {
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteRenderbuffers(1, &t.color)
	gl.DeleteRenderbuffers(1, &t.depth)
	*t = target{}
}

// Device draws into a multisampled framebuffer and resolves each finished
// frame into a single-sampled one that readbacks copy from.
type Device struct {
	ctx     *Context
	samples int32
	logger  *slog.Logger

	width, height int
	draw, read    target
}

// NewDevice creates both framebuffers at width x height. samples is clamped
// to what the driver supports. It must be called on the context's goroutine.
func NewDevice(ctx *Context, width, height, samples int, logger *slog.Logger) (*Device, error) {
	if limit := ctx.MaxSamples(); samples > limit {
		logger.Warn("reducing sample count", "requested", samples, "max", limit)
		samples = limit
	}
	d := &Device{ctx: ctx, samples: int32(samples), logger: logger, width: width, height: height}

	var err error
	if d.draw, err = newTarget(width, height, d.samples); err != nil {
		return nil, err
	}
	if d.read, err = newTarget(width, height, 0); err != nil {
		d.draw.delete()
		return nil, err
	}
	// The first readback happens before anything is resolved.
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.read.fbo)
	d.clear()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return d, nil
}

// Resize sets the size the next frame is drawn at. The readable framebuffer
// keeps its size until a frame of the new size is resolved into it.
func (d *Device) Resize(width, height int) {
	d.width, d.height = width, height
}

// Readback queues a copy of the readable framebuffer into the frame's pixel
// buffers. The copy completes asynchronously; mapping the buffers waits for
// it.
func (d *Device) Readback(f *pipeline.Frame) error {
	pb, ok := f.Storage.(*PixelBuffer)
	if !ok {
		return fmt.Errorf("readback needs a pixel buffer, got %T", f.Storage)
	}
	f.Width, f.Height = d.read.width, d.read.height
	pb.Reserve(f.Pixels())

	w, h := int32(f.Width), int32(f.Height)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, d.read.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)

	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.color)
	gl.ReadPixels(0, 0, w, h, gl.BGR, gl.UNSIGNED_BYTE, gl.PtrOffset(0))
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.depth)
	gl.ReadPixels(0, 0, w, h, gl.DEPTH_COMPONENT, gl.FLOAT, gl.PtrOffset(0))

	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("readback %dx%d: GL error 0x%x", w, h, e)
	}
	return nil
}

// Begin binds the draw framebuffer, recreating it first if the size
// changed, and clears it.
func (d *Device) Begin() {
	if d.draw.width != d.width || d.draw.height != d.height {
		t, err := newTarget(d.width, d.height, d.samples)
		if err != nil {
			// Keep drawing at the old size.
			d.logger.Error("resize draw framebuffer", "err", err)
		} else {
			d.draw.delete()
			d.draw = t
		}
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.draw.fbo)
	gl.Viewport(0, 0, int32(d.draw.width), int32(d.draw.height))
	applySettings()
	gl.DepthMask(true)
	d.clear()
}

func (d *Device) clear() {
	c := config.GetClearColor()
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) DepthWrite(enabled bool) { gl.DepthMask(enabled) }

// End resolves the draw framebuffer into the readable one and presents.
func (d *Device) End() error {
	if d.read.width != d.draw.width || d.read.height != d.draw.height {
		t, err := newTarget(d.draw.width, d.draw.height, 0)
		if err != nil {
			return fmt.Errorf("resize read framebuffer: %w", err)
		}
		d.read.delete()
		d.read = t
	}

	w, h := int32(d.draw.width), int32(d.draw.height)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, d.draw.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, d.read.fbo)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.DEPTH_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	d.ctx.SwapBuffers()
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("resolve %dx%d: GL error 0x%x", w, h, e)
	}
	return nil
}

// Close releases both framebuffers.
func (d *Device) Close() {
	d.draw.delete()
	d.read.delete()
}
