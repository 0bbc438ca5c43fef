package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FrameSize is the exact length of an encoded frame.
//
// Layout (big-endian):
//
//	 0: sequence     u32
//	 4: axes         6 x i16, snapshot order
//	16: buttons     10 x u8,  snapshot order
const FrameSize = 4 + NumAxes*2 + NumButtons

const (
	axesOff    = 4
	buttonsOff = axesOff + NumAxes*2
)

// ErrMalformedFrame is returned by Decode for any datagram that is not a
// valid frame. Such datagrams are dropped by the receiver.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is one transmitted unit: a sequence number plus a snapshot.
//
// The sequence is a plain modulo 2^32 counter used for diagnostics only.
type Frame struct {
	Sequence uint32
	Snapshot Snapshot
}

// Encode serializes a snapshot and sequence number into a new FrameSize buffer.
func Encode(s Snapshot, seq uint32) []byte {
	return AppendFrame(make([]byte, 0, FrameSize), s, seq)
}

// AppendFrame appends the encoded frame to dst and returns the extended slice.
func AppendFrame(dst []byte, s Snapshot, seq uint32) []byte {
	dst = binary.BigEndian.AppendUint32(dst, seq)
	for _, v := range s.Axes {
		dst = binary.BigEndian.AppendUint16(dst, uint16(v))
	}
	return append(dst, s.Buttons[:]...)
}

// Decode parses exactly one frame. Any buffer whose length differs from
// FrameSize yields an error wrapping ErrMalformedFrame.
func Decode(b []byte) (Frame, error) {
	var f Frame
	if len(b) != FrameSize {
		return f, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedFrame, len(b), FrameSize)
	}
	f.Sequence = binary.BigEndian.Uint32(b[0:4])
	for i := range f.Snapshot.Axes {
		o := axesOff + i*2
		f.Snapshot.Axes[i] = int16(binary.BigEndian.Uint16(b[o : o+2]))
	}
	copy(f.Snapshot.Buttons[:], b[buttonsOff:FrameSize])
	return f, nil
}

// MarshalBinary encodes the frame to the fixed 26-byte wire format.
func (f Frame) MarshalBinary() ([]byte, error) {
	return Encode(f.Snapshot, f.Sequence), nil
}

// UnmarshalBinary decodes the fixed 26-byte wire format.
func (f *Frame) UnmarshalBinary(data []byte) error {
	d, err := Decode(data)
	if err != nil {
		return err
	}
	*f = d
	return nil
}
