package viiper

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// XInput button bits as understood by VIIPER's xbox360 device.
const (
	ButtonDPadUp    uint32 = 0x0001
	ButtonDPadDown  uint32 = 0x0002
	ButtonDPadLeft  uint32 = 0x0004
	ButtonDPadRight uint32 = 0x0008
	ButtonLB        uint32 = 0x0100
	ButtonRB        uint32 = 0x0200
	ButtonA         uint32 = 0x1000
	ButtonB         uint32 = 0x2000
	ButtonX         uint32 = 0x4000
	ButtonY         uint32 = 0x8000
)

// XInputStateSize is the length of one encoded XInputState.
const XInputStateSize = 14

var buttonBits = [protocol.NumButtons]uint32{
	ButtonA, ButtonB, ButtonX, ButtonY, ButtonLB, ButtonRB,
	ButtonDPadUp, ButtonDPadDown, ButtonDPadLeft, ButtonDPadRight,
}

// XInputState is the client to device stream format of a VIIPER xbox360 pad.
// Layout (little-endian): buttons u32, LT u8, RT u8, LX i16, LY i16, RX i16, RY i16.
type XInputState struct {
	Buttons uint32
	LT, RT  uint8
	LX, LY  int16
	RX, RY  int16
}

// FromSnapshot converts a relayed snapshot. XInput reports up as positive Y,
// so both Y axes are inverted; triggers are scaled from [0, 32767] to [0, 255].
func FromSnapshot(s protocol.Snapshot) XInputState {
	x := XInputState{
		LX: s.Axes[protocol.AxisLeftStickX],
		LY: invert(s.Axes[protocol.AxisLeftStickY]),
		RX: s.Axes[protocol.AxisRightStickX],
		RY: invert(s.Axes[protocol.AxisRightStickY]),
		LT: trigger(s.Axes[protocol.AxisLeftTrigger]),
		RT: trigger(s.Axes[protocol.AxisRightTrigger]),
	}
	for i, bit := range buttonBits {
		if s.Buttons[i] != 0 {
			x.Buttons |= bit
		}
	}
	return x
}

func invert(v int16) int16 {
	if v == math.MinInt16 {
		return math.MaxInt16
	}
	return -v
}

func trigger(v int16) uint8 {
	if v <= 0 {
		return 0
	}
	return uint8(v >> 7)
}

// MarshalBinary encodes XInputState to 14 bytes.
func (x XInputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, XInputStateSize)
	binary.LittleEndian.PutUint32(b[0:4], x.Buttons)
	b[4] = x.LT
	b[5] = x.RT
	binary.LittleEndian.PutUint16(b[6:8], uint16(x.LX))
	binary.LittleEndian.PutUint16(b[8:10], uint16(x.LY))
	binary.LittleEndian.PutUint16(b[10:12], uint16(x.RX))
	binary.LittleEndian.PutUint16(b[12:14], uint16(x.RY))
	return b, nil
}

// UnmarshalBinary decodes 14 bytes into XInputState.
func (x *XInputState) UnmarshalBinary(data []byte) error {
	if len(data) < XInputStateSize {
		return io.ErrUnexpectedEOF
	}
	x.Buttons = binary.LittleEndian.Uint32(data[0:4])
	x.LT = data[4]
	x.RT = data[5]
	x.LX = int16(binary.LittleEndian.Uint16(data[6:8]))
	x.LY = int16(binary.LittleEndian.Uint16(data[8:10]))
	x.RX = int16(binary.LittleEndian.Uint16(data[10:12]))
	x.RY = int16(binary.LittleEndian.Uint16(data[12:14]))
	return nil
}
