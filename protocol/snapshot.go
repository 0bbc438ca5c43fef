// Package protocol defines the controller snapshot exchanged between the
// transmitter and the receiver and its fixed 26-byte datagram encoding.
package protocol

import "fmt"

const (
	// NumAxes is the number of analog axes carried by every snapshot.
	NumAxes = 6
	// NumButtons is the number of digital buttons carried by every snapshot.
	NumButtons = 10
)

// Axis indexes Snapshot.Axes.
type Axis int

const (
	AxisLeftStickX Axis = iota
	AxisLeftStickY
	AxisRightStickX
	AxisRightStickY
	AxisLeftTrigger
	AxisRightTrigger
)

// Button indexes Snapshot.Buttons.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonL1
	ButtonR1
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
)

var axisNames = [NumAxes]string{
	"leftStickX", "leftStickY", "rightStickX", "rightStickY", "leftTrigger", "rightTrigger",
}

var buttonNames = [NumButtons]string{
	"A", "B", "X", "Y", "L1", "R1", "dpadUp", "dpadDown", "dpadLeft", "dpadRight",
}

func (a Axis) String() string {
	if a < 0 || int(a) >= NumAxes {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// IsStick reports whether the axis belongs to one of the two analog sticks.
func (a Axis) IsStick() bool { return a >= AxisLeftStickX && a <= AxisRightStickY }

func (b Button) String() string {
	if b < 0 || int(b) >= NumButtons {
		return fmt.Sprintf("button(%d)", int(b))
	}
	return buttonNames[b]
}

// Snapshot is the complete normalized state of one controller at one instant.
//
// Axes are ordered [leftStickX, leftStickY, rightStickX, rightStickY,
// leftTrigger, rightTrigger]; only non-negative trigger values are meaningful.
// Buttons are ordered [A, B, X, Y, L1, R1, dpadUp, dpadDown, dpadLeft,
// dpadRight] and hold 0 or 1.
type Snapshot struct {
	Axes    [NumAxes]int16
	Buttons [NumButtons]uint8
}

// Axis returns the value of a single axis.
func (s Snapshot) Axis(a Axis) int16 { return s.Axes[a] }

// Pressed reports whether a button is held.
func (s Snapshot) Pressed(b Button) bool { return s.Buttons[b] != 0 }

func (s Snapshot) String() string {
	return fmt.Sprintf("axes=%v buttons=%v", s.Axes, s.Buttons)
}
