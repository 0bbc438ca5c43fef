package device

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// Mapping maps raw joystick indices onto snapshot fields. A negative index
// leaves the field at zero.
type Mapping struct {
	Axes    [protocol.NumAxes]int
	Buttons [protocol.NumButtons]int
	// FullRangeTriggers rescales triggers reported over [-32768, 32767]
	// (rest at the minimum) onto [0, 32767].
	FullRangeTriggers bool
}

// SteamDeckMapping is the layout the Steam Deck reports through the joystick
// API: sticks and triggers on axes 0..5, bumpers on 9/10 and the D-pad on
// 11..14.
var SteamDeckMapping = Mapping{
	Axes:    [protocol.NumAxes]int{0, 1, 2, 3, 4, 5},
	Buttons: [protocol.NumButtons]int{0, 1, 2, 3, 9, 10, 11, 12, 13, 14},
}

// ParseMapping builds a mapping from index lists. Empty lists keep the
// SteamDeckMapping entries.
func ParseMapping(axes, buttons []int) (Mapping, error) {
	m := SteamDeckMapping
	if len(axes) > 0 {
		if len(axes) != protocol.NumAxes {
			return m, fmt.Errorf("axis map needs %d entries, got %d", protocol.NumAxes, len(axes))
		}
		copy(m.Axes[:], axes)
	}
	if len(buttons) > 0 {
		if len(buttons) != protocol.NumButtons {
			return m, fmt.Errorf("button map needs %d entries, got %d", protocol.NumButtons, len(buttons))
		}
		copy(m.Buttons[:], buttons)
	}
	return m, nil
}

// RawState is what a joystick driver reports: axis values in its own range
// and pressed flags, both addressed by driver index.
type RawState interface {
	RawAxis(i int) (int, bool)
	RawButton(i int) bool
}

// Snapshot converts a raw state into a clamped snapshot.
func (m Mapping) Snapshot(raw RawState) protocol.Snapshot {
	var s protocol.Snapshot
	for i, idx := range m.Axes {
		if idx < 0 {
			continue
		}
		v, ok := raw.RawAxis(idx)
		if !ok {
			continue
		}
		switch {
		case protocol.Axis(i).IsStick():
			s.Axes[i] = int16(Clamp(v, math.MinInt16, math.MaxInt16))
		case m.FullRangeTriggers:
			s.Axes[i] = int16((Clamp(v, math.MinInt16, math.MaxInt16) - math.MinInt16) / 2)
		default:
			s.Axes[i] = int16(Clamp(v, 0, math.MaxInt16))
		}
	}
	for i, idx := range m.Buttons {
		if idx >= 0 && raw.RawButton(idx) {
			s.Buttons[i] = 1
		}
	}
	return s
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
