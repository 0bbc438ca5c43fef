package viiper

import (
	"encoding/binary"
	"io"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// Steam Deck button bits (low word of SteamDeckState.Buttons).
const (
	DeckButtonR2        uint64 = 0x0001
	DeckButtonL2        uint64 = 0x0002
	DeckButtonR1        uint64 = 0x0004
	DeckButtonL1        uint64 = 0x0008
	DeckButtonY         uint64 = 0x0010
	DeckButtonB         uint64 = 0x0020
	DeckButtonX         uint64 = 0x0040
	DeckButtonA         uint64 = 0x0080
	DeckButtonDPadUp    uint64 = 0x0100
	DeckButtonDPadRight uint64 = 0x0200
	DeckButtonDPadLeft  uint64 = 0x0400
	DeckButtonDPadDown  uint64 = 0x0800
	DeckButtonSteam     uint64 = 0x2000
)

// SteamDeckStateSize is the length of one encoded SteamDeckState.
const SteamDeckStateSize = 52

var deckButtonBits = [protocol.NumButtons]uint64{
	DeckButtonA, DeckButtonB, DeckButtonX, DeckButtonY, DeckButtonL1, DeckButtonR1,
	DeckButtonDPadUp, DeckButtonDPadDown, DeckButtonDPadLeft, DeckButtonDPadRight,
}

// SteamDeckState is the client to device stream format of a VIIPER steamdeck
// device: buttons u64, four trackpad i16, accel/gyro/quaternion i16 x10,
// triggers u16 x2, sticks i16 x4, pad pressure u16 x2, all little-endian.
// The relay carries no trackpad or motion data, those fields stay zero.
type SteamDeckState struct {
	Buttons uint64

	LeftPadX, LeftPadY   int16
	RightPadX, RightPadY int16

	AccelX, AccelY, AccelZ int16
	GyroX, GyroY, GyroZ    int16

	GyroQuatW, GyroQuatX, GyroQuatY, GyroQuatZ int16

	TriggerRawL, TriggerRawR uint16

	LeftStickX, LeftStickY   int16
	RightStickX, RightStickY int16

	PressurePadLeft, PressurePadRight uint16
}

// SteamDeckFromSnapshot converts a relayed snapshot. The Deck reports up as
// positive Y, like XInput. A pressed analog trigger also sets its digital bit.
func SteamDeckFromSnapshot(s protocol.Snapshot) SteamDeckState {
	d := SteamDeckState{
		LeftStickX:  s.Axes[protocol.AxisLeftStickX],
		LeftStickY:  invert(s.Axes[protocol.AxisLeftStickY]),
		RightStickX: s.Axes[protocol.AxisRightStickX],
		RightStickY: invert(s.Axes[protocol.AxisRightStickY]),
		TriggerRawL: rawTrigger(s.Axes[protocol.AxisLeftTrigger]),
		TriggerRawR: rawTrigger(s.Axes[protocol.AxisRightTrigger]),
	}
	for i, bit := range deckButtonBits {
		if s.Buttons[i] != 0 {
			d.Buttons |= bit
		}
	}
	if d.TriggerRawL > 0 {
		d.Buttons |= DeckButtonL2
	}
	if d.TriggerRawR > 0 {
		d.Buttons |= DeckButtonR2
	}
	return d
}

func rawTrigger(v int16) uint16 {
	if v <= 0 {
		return 0
	}
	return uint16(v)
}

// MarshalBinary encodes SteamDeckState to the fixed 52-byte wire format.
func (s SteamDeckState) MarshalBinary() ([]byte, error) {
	b := make([]byte, SteamDeckStateSize)
	binary.LittleEndian.PutUint64(b[0:8], s.Buttons)
	o := 8
	for _, v := range s.words() {
		binary.LittleEndian.PutUint16(b[o:o+2], v)
		o += 2
	}
	return b, nil
}

// UnmarshalBinary decodes SteamDeckState from the fixed 52-byte wire format.
func (s *SteamDeckState) UnmarshalBinary(data []byte) error {
	if len(data) < SteamDeckStateSize {
		return io.ErrUnexpectedEOF
	}
	s.Buttons = binary.LittleEndian.Uint64(data[0:8])
	o := 8
	next := func() uint16 {
		v := binary.LittleEndian.Uint16(data[o : o+2])
		o += 2
		return v
	}
	i16 := func() int16 { return int16(next()) }

	s.LeftPadX, s.LeftPadY, s.RightPadX, s.RightPadY = i16(), i16(), i16(), i16()
	s.AccelX, s.AccelY, s.AccelZ = i16(), i16(), i16()
	s.GyroX, s.GyroY, s.GyroZ = i16(), i16(), i16()
	s.GyroQuatW, s.GyroQuatX, s.GyroQuatY, s.GyroQuatZ = i16(), i16(), i16(), i16()
	s.TriggerRawL, s.TriggerRawR = next(), next()
	s.LeftStickX, s.LeftStickY, s.RightStickX, s.RightStickY = i16(), i16(), i16(), i16()
	s.PressurePadLeft, s.PressurePadRight = next(), next()
	return nil
}

// words lists the 22 16-bit fields after Buttons in wire order.
func (s SteamDeckState) words() [22]uint16 {
	return [22]uint16{
		uint16(s.LeftPadX), uint16(s.LeftPadY), uint16(s.RightPadX), uint16(s.RightPadY),
		uint16(s.AccelX), uint16(s.AccelY), uint16(s.AccelZ),
		uint16(s.GyroX), uint16(s.GyroY), uint16(s.GyroZ),
		uint16(s.GyroQuatW), uint16(s.GyroQuatX), uint16(s.GyroQuatY), uint16(s.GyroQuatZ),
		s.TriggerRawL, s.TriggerRawR,
		uint16(s.LeftStickX), uint16(s.LeftStickY), uint16(s.RightStickX), uint16(s.RightStickY),
		s.PressurePadLeft, s.PressurePadRight,
	}
}
