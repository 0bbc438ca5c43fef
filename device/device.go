// Package device holds the collaborators of the relay: sources that read a
// physical controller and sinks that drive a virtual one.
package device

import (
	"errors"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// ErrUnavailable reports that an input or output device cannot be opened or
// stopped working. It is fatal for the process.
var ErrUnavailable = errors.New("device unavailable")

// Source polls a local controller.
type Source interface {
	// ReadSnapshot returns the current normalized controller state. Values
	// are clamped by the source.
	ReadSnapshot() (protocol.Snapshot, error)
	Close() error
}

// Sink drives a virtual controller. Field updates are buffered and only
// become visible to consumers of the device at Commit.
type Sink interface {
	SetAxis(a protocol.Axis, v int16)
	SetButton(b protocol.Button, v uint8)
	Commit() error
	Close() error
}

// Apply writes a full snapshot to the sink and commits it.
func Apply(s Sink, snap protocol.Snapshot) error {
	for i, v := range snap.Axes {
		s.SetAxis(protocol.Axis(i), v)
	}
	for i, v := range snap.Buttons {
		s.SetButton(protocol.Button(i), v)
	}
	return s.Commit()
}

// DPadHat translates the four D-pad buttons into hat axis values in
// [-1, 1]: x is right minus left, y is down minus up.
func DPadHat(s protocol.Snapshot) (x, y int32) {
	x = int32(bit(s.Buttons[protocol.ButtonDPadRight])) - int32(bit(s.Buttons[protocol.ButtonDPadLeft]))
	y = int32(bit(s.Buttons[protocol.ButtonDPadDown])) - int32(bit(s.Buttons[protocol.ButtonDPadUp]))
	return x, y
}

func bit(v uint8) uint8 {
	if v != 0 {
		return 1
	}
	return 0
}
