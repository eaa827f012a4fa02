package gpu

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"visualizer/internal/pipeline"
	"visualizer/internal/wire"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// PixelBuffer is a pipeline.Storage backed by two pixel pack buffers, one
// for BGR color and one for float depth. Reserve runs on the GL goroutine;
// Map and Unmap marshal onto it through the thread.
type PixelBuffer struct {
	thread       *Thread
	color, depth uint32
	capacity     int
	mapped       bool
}

var _ pipeline.Storage = (*PixelBuffer)(nil)

// NewPixelBuffer allocates empty buffers. It must be called on the GL
// goroutine.
func NewPixelBuffer(thread *Thread) *PixelBuffer {
	pb := &PixelBuffer{thread: thread}
	gl.GenBuffers(1, &pb.color)
	gl.GenBuffers(1, &pb.depth)
	return pb
}

// Reserve grows both buffers to hold pixels entries. Contents are discarded
// on growth.
func (pb *PixelBuffer) Reserve(pixels int) {
	if pixels <= pb.capacity {
		return
	}
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.color)
	gl.BufferData(gl.PIXEL_PACK_BUFFER, pixels*wire.BytesPerPixel, nil, gl.STREAM_READ)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.depth)
	gl.BufferData(gl.PIXEL_PACK_BUFFER, pixels*4, nil, gl.STREAM_READ)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	pb.capacity = pixels
}

// Map waits for the pending readback and exposes both buffers until Unmap.
func (pb *PixelBuffer) Map(ctx context.Context) (color []byte, depth []float32, err error) {
	if pb.mapped {
		return nil, nil, pipeline.ErrMapped
	}
	n := pb.capacity
	if n == 0 {
		return nil, nil, nil
	}
	err = pb.thread.Call(ctx, func() error {
		defer gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.color)
		cp := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, n*wire.BytesPerPixel, gl.MAP_READ_BIT)
		if cp == nil {
			return errors.New("map color buffer failed")
		}
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.depth)
		dp := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, n*4, gl.MAP_READ_BIT)
		if dp == nil {
			gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.color)
			gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
			return errors.New("map depth buffer failed")
		}
		color = unsafe.Slice((*byte)(cp), n*wire.BytesPerPixel)
		depth = unsafe.Slice((*float32)(dp), n)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("map pixel buffer: %w", err)
	}
	pb.mapped = true
	return color, depth, nil
}

// Unmap invalidates the slices returned by Map.
func (pb *PixelBuffer) Unmap(ctx context.Context) error {
	if !pb.mapped {
		return nil
	}
	err := pb.thread.Call(ctx, func() error {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.color)
		gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pb.depth)
		gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("unmap pixel buffer: %w", err)
	}
	pb.mapped = false
	return nil
}

// Delete frees both buffers. It must be called on the GL goroutine.
func (pb *PixelBuffer) Delete() {
	gl.DeleteBuffers(1, &pb.color)
	gl.DeleteBuffers(1, &pb.depth)
	pb.capacity = 0
}
