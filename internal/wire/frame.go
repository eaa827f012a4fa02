// Package wire implements the binary framing shared with the viewer.
//
// Frames flow server -> viewer as a fixed 12 byte header followed by the raw
// BGR payload. Input flows viewer -> server as fixed 16 byte messages. All
// multi-byte fields are big-endian on the wire regardless of host order; the
// magic is the one exception and always travels as the bytes DE AD.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Magic identifies a frame header. It is stored in little-endian order,
	// which puts the bytes DE AD on the wire.
	Magic uint16 = 0xADDE

	// HeaderSize includes two bytes of zero padding after the height so the
	// payload size sits on a four byte boundary.
	HeaderSize = 12

	// BytesPerPixel is the size of one BGR payload pixel.
	BytesPerPixel = 3

	// MaxDimension is the largest width or height a header can carry.
	MaxDimension = 1<<16 - 1
)

var (
	ErrBadMagic    = errors.New("wire: bad frame magic")
	ErrShortBuffer = errors.New("wire: buffer too short")
	ErrPayloadSize = errors.New("wire: payload size does not match frame size")
)

// FrameHeader precedes every frame payload.
type FrameHeader struct {
	Width       uint16
	Height      uint16
	PayloadSize uint32
}

// NewFrameHeader builds the header for a width x height BGR frame.
func NewFrameHeader(width, height int) (FrameHeader, error) {
	if width < 0 || height < 0 || width > MaxDimension || height > MaxDimension {
		return FrameHeader{}, fmt.Errorf("wire: frame size %dx%d out of range", width, height)
	}
	return FrameHeader{
		Width:       uint16(width),
		Height:      uint16(height),
		PayloadSize: uint32(width) * uint32(height) * BytesPerPixel,
	}, nil
}

// Put encodes h into b, which must hold at least HeaderSize bytes.
func (h FrameHeader) Put(b []byte) {
	_ = b[HeaderSize-1]
	binary.LittleEndian.PutUint16(b[0:], Magic)
	binary.BigEndian.PutUint16(b[2:], h.Width)
	binary.BigEndian.PutUint16(b[4:], h.Height)
	b[6], b[7] = 0, 0
	binary.BigEndian.PutUint32(b[8:], h.PayloadSize)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h FrameHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	h.Put(b)
	return b, nil
}

// ParseFrameHeader decodes a header and checks its magic and payload size.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	if len(b) < HeaderSize {
		return FrameHeader{}, ErrShortBuffer
	}
	if binary.LittleEndian.Uint16(b[0:]) != Magic {
		return FrameHeader{}, ErrBadMagic
	}
	h := FrameHeader{
		Width:       binary.BigEndian.Uint16(b[2:]),
		Height:      binary.BigEndian.Uint16(b[4:]),
		PayloadSize: binary.BigEndian.Uint32(b[8:]),
	}
	if uint64(h.PayloadSize) != uint64(h.Width)*uint64(h.Height)*BytesPerPixel {
		return FrameHeader{}, fmt.Errorf("%w: %dx%d with %d bytes", ErrPayloadSize, h.Width, h.Height, h.PayloadSize)
	}
	return h, nil
}

// ReadFrame reads one header and its payload from r. buf is reused when it
// is large enough.
func ReadFrame(r io.Reader, buf []byte) (FrameHeader, []byte, error) {
	var hb [HeaderSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return FrameHeader{}, nil, err
	}
	h, err := ParseFrameHeader(hb[:])
	if err != nil {
		return FrameHeader{}, nil, err
	}
	n := int(h.PayloadSize)
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	if _, err := io.ReadFull(r, buf); err != nil {
		return h, nil, fmt.Errorf("wire: frame payload: %w", err)
	}
	return h, buf, nil
}
