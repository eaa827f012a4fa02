package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// InputSize is the size of one input message on the wire.
const InputSize = 16

// MessageType tags an input message.
type MessageType uint32

const (
	Resize MessageType = iota
	MouseClick
	MouseDown
	MouseUp
	MouseWheel
	Scroll
	MouseDrag
	MouseMove
)

var messageTypeNames = [...]string{
	Resize:     "resize",
	MouseClick: "mouse_click",
	MouseDown:  "mouse_down",
	MouseUp:    "mouse_up",
	MouseWheel: "mouse_wheel",
	Scroll:     "scroll",
	MouseDrag:  "mouse_drag",
	MouseMove:  "mouse_move",
}

func (t MessageType) String() string {
	if int(t) < len(messageTypeNames) {
		return messageTypeNames[t]
	}
	return "unknown"
}

// Input is one viewer event. The meaning of X, Y and Z depends on Type.
type Input struct {
	X, Y, Z int32
	Type    MessageType
}

// Put encodes m into b, which must hold at least InputSize bytes.
func (m Input) Put(b []byte) {
	_ = b[InputSize-1]
	binary.BigEndian.PutUint32(b[0:], uint32(m.X))
	binary.BigEndian.PutUint32(b[4:], uint32(m.Y))
	binary.BigEndian.PutUint32(b[8:], uint32(m.Z))
	binary.BigEndian.PutUint32(b[12:], uint32(m.Type))
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Input) MarshalBinary() ([]byte, error) {
	b := make([]byte, InputSize)
	m.Put(b)
	return b, nil
}

// ParseInput decodes one message.
func ParseInput(b []byte) (Input, error) {
	if len(b) < InputSize {
		return Input{}, ErrShortBuffer
	}
	return Input{
		X:    int32(binary.BigEndian.Uint32(b[0:])),
		Y:    int32(binary.BigEndian.Uint32(b[4:])),
		Z:    int32(binary.BigEndian.Uint32(b[8:])),
		Type: MessageType(binary.BigEndian.Uint32(b[12:])),
	}, nil
}

// ReadInput reads exactly one message. A truncated message yields
// io.ErrUnexpectedEOF.
func ReadInput(r io.Reader) (Input, error) {
	var b [InputSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Input{}, err
	}
	return ParseInput(b[:])
}

// ScrollAmount reinterprets X and Y as the high and low words of a float64.
// Together the two fields carry the big-endian bytes of the double.
func (m Input) ScrollAmount() float64 {
	return math.Float64frombits(uint64(uint32(m.X))<<32 | uint64(uint32(m.Y)))
}

// NewScroll packs amount into a scroll message.
func NewScroll(amount float64) Input {
	bits := math.Float64bits(amount)
	return Input{
		X:    int32(uint32(bits >> 32)),
		Y:    int32(uint32(bits)),
		Type: Scroll,
	}
}
