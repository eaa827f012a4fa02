package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameHeaderRoundTrip(t *testing.T) {
	h, err := NewFrameHeader(800, 600)
	require.NoError(t, err)
	require.Equal(t, uint32(1440000), h.PayloadSize)

	b, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, HeaderSize)

	got, err := ParseFrameHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(800), got.Width)
	assert.Equal(t, uint16(600), got.Height)
	assert.Equal(t, uint32(1440000), got.PayloadSize)
}

func TestFrameHeaderLayout(t *testing.T) {
	h := FrameHeader{Width: 800, Height: 600, PayloadSize: 1440000}
	var b [HeaderSize]byte
	h.Put(b[:])
	want := []byte{
		0xDE, 0xAD, // magic
		0x03, 0x20, // 800
		0x02, 0x58, // 600
		0x00, 0x00, // padding
		0x00, 0x15, 0xF9, 0x00, // 1440000
	}
	assert.Equal(t, want, b[:])
}

func TestFrameHeaderRejectsBadMagic(t *testing.T) {
	b := make([]byte, HeaderSize)
	_, err := ParseFrameHeader(b)
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = ParseFrameHeader(b[:4])
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestReadFrameRejectsPayloadMismatch(t *testing.T) {
	// 2x2 claims 12 bytes; send a header claiming 100.
	h := FrameHeader{Width: 2, Height: 2, PayloadSize: 100}
	var hb [HeaderSize]byte
	h.Put(hb[:])
	r := bytes.NewReader(append(hb[:], make([]byte, 100)...))

	_, _, err := ReadFrame(r, nil)
	assert.ErrorIs(t, err, ErrPayloadSize)

	_, err = ParseFrameHeader(hb[:])
	assert.ErrorIs(t, err, ErrPayloadSize)
}

func TestNewFrameHeaderRange(t *testing.T) {
	_, err := NewFrameHeader(MaxDimension+1, 1)
	assert.Error(t, err)
	_, err = NewFrameHeader(-1, 1)
	assert.Error(t, err)
}

func TestReadFrame(t *testing.T) {
	h, err := NewFrameHeader(2, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	hb, _ := h.MarshalBinary()
	buf.Write(hb)
	buf.Write([]byte{1, 2, 3, 4, 5, 6})

	got, payload, err := ReadFrame(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, payload)

	buf.Write(hb)
	buf.Write([]byte{1, 2})
	_, _, err = ReadFrame(&buf, payload)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestInputLayout(t *testing.T) {
	m := Input{X: 1, Y: -1, Z: 3, Type: MouseDown}
	b, err := m.MarshalBinary()
	require.NoError(t, err)
	want := []byte{
		0, 0, 0, 1,
		0xFF, 0xFF, 0xFF, 0xFF,
		0, 0, 0, 3,
		0, 0, 0, 2,
	}
	assert.Equal(t, want, b)

	got, err := ParseInput(b)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestReadInputShort(t *testing.T) {
	_, err := ReadInput(bytes.NewReader(make([]byte, InputSize-3)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadInput(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestScrollPacking(t *testing.T) {
	for _, amt := range []float64{0, 1, -1, 3.25, 1e-300, -12345.678} {
		m := NewScroll(amt)
		assert.Equal(t, Scroll, m.Type)
		assert.Equal(t, amt, m.ScrollAmount())
	}

	// The first eight bytes of the message are the big-endian double.
	b, _ := NewScroll(1).MarshalBinary()
	assert.Equal(t, []byte{0x3F, 0xF0, 0, 0, 0, 0, 0, 0}, b[:8])
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "mouse_drag", MouseDrag.String())
	assert.Equal(t, "unknown", MessageType(42).String())
}
