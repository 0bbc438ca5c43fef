//go:build linux

// Package uinput exposes the relayed controller as a Linux virtual gamepad.
package uinput

import (
	"errors"
	"fmt"
	"log/slog"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// DevicePath is the uinput control node.
const DevicePath = "/dev/uinput"

// DefaultName is the name the virtual controller registers with.
const DefaultName = "deckrc virtual controller"

func init() {
	device.RegisterSink("uinput", func(o device.SinkOptions) (device.Sink, error) {
		return Create(o)
	})
}

var axisCodes = [protocol.NumAxes]evdev.EvCode{
	evdev.ABS_X, evdev.ABS_Y, evdev.ABS_RX, evdev.ABS_RY, evdev.ABS_Z, evdev.ABS_RZ,
}

var buttonCodes = [protocol.NumButtons]evdev.EvCode{
	evdev.BTN_SOUTH, evdev.BTN_EAST, evdev.BTN_NORTH, evdev.BTN_WEST,
	evdev.BTN_TL, evdev.BTN_TR,
	evdev.BTN_DPAD_UP, evdev.BTN_DPAD_DOWN, evdev.BTN_DPAD_LEFT, evdev.BTN_DPAD_RIGHT,
}

// eventWriter is what the sink writes events to.
type eventWriter interface {
	WriteOne(ev *evdev.InputEvent) error
	Close() error
}

// Sink drives a uinput gamepad.
type Sink struct {
	dev     eventWriter
	dpad    device.DPadMode
	pending protocol.Snapshot
	logger  *slog.Logger
}

// CheckAccess verifies that the uinput node can be opened for writing.
func CheckAccess() error { return checkAccess(DevicePath) }

func checkAccess(path string) error {
	if err := unix.Access(path, unix.W_OK); err != nil {
		hint := "load the module with 'modprobe uinput'"
		if errors.Is(err, unix.EACCES) {
			hint = "run as root or grant write access to " + path
		}
		return fmt.Errorf("%w: %s: %v (%s)", device.ErrUnavailable, path, err, hint)
	}
	return nil
}

// Capabilities returns the event codes the virtual controller declares.
func Capabilities(dpad device.DPadMode) map[evdev.EvType][]evdev.EvCode {
	keys := []evdev.EvCode{
		evdev.BTN_SOUTH, evdev.BTN_EAST, evdev.BTN_NORTH, evdev.BTN_WEST,
		evdev.BTN_TL, evdev.BTN_TR,
	}
	abs := append([]evdev.EvCode(nil), axisCodes[:]...)
	if dpad == device.DPadButtonsMode {
		keys = append(keys, evdev.BTN_DPAD_UP, evdev.BTN_DPAD_DOWN, evdev.BTN_DPAD_LEFT, evdev.BTN_DPAD_RIGHT)
	} else {
		abs = append(abs, evdev.ABS_HAT0X, evdev.ABS_HAT0Y)
	}
	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keys,
		evdev.EV_ABS: abs,
	}
}

// Create registers a new virtual gamepad.
func Create(o device.SinkOptions) (*Sink, error) {
	if err := CheckAccess(); err != nil {
		return nil, err
	}
	name := o.Name
	if name == "" {
		name = DefaultName
	}
	dev, err := createDevice(DevicePath, name, evdev.InputID{
		BusType: 0x06, // BUS_VIRTUAL
		Vendor:  0xdec0,
		Product: 0x0001,
		Version: 1,
	}, o.DPad)
	if err != nil {
		return nil, fmt.Errorf("%w: create uinput device: %v", device.ErrUnavailable, err)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Virtual controller created", "name", name, "dpad", o.DPad)
	return newSink(dev, o.DPad, logger), nil
}

func newSink(dev eventWriter, dpad device.DPadMode, logger *slog.Logger) *Sink {
	return &Sink{dev: dev, dpad: dpad, logger: logger}
}

func (s *Sink) SetAxis(a protocol.Axis, v int16)     { s.pending.Axes[a] = v }
func (s *Sink) SetButton(b protocol.Button, v uint8) { s.pending.Buttons[b] = v }

// Commit writes every axis and button followed by one SYN_REPORT, so readers
// of the device observe the whole tick at once.
func (s *Sink) Commit() error {
	for i, code := range axisCodes {
		if err := s.write(evdev.EV_ABS, code, int32(s.pending.Axes[i])); err != nil {
			return err
		}
	}
	for i := protocol.ButtonA; i <= protocol.ButtonR1; i++ {
		if err := s.write(evdev.EV_KEY, buttonCodes[i], int32(s.pending.Buttons[i])); err != nil {
			return err
		}
	}
	if s.dpad == device.DPadButtonsMode {
		for i := protocol.ButtonDPadUp; i <= protocol.ButtonDPadRight; i++ {
			if err := s.write(evdev.EV_KEY, buttonCodes[i], int32(s.pending.Buttons[i])); err != nil {
				return err
			}
		}
	} else {
		x, y := device.DPadHat(s.pending)
		if err := s.write(evdev.EV_ABS, evdev.ABS_HAT0X, x); err != nil {
			return err
		}
		if err := s.write(evdev.EV_ABS, evdev.ABS_HAT0Y, y); err != nil {
			return err
		}
	}
	return s.write(evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

func (s *Sink) write(typ evdev.EvType, code evdev.EvCode, v int32) error {
	if err := s.dev.WriteOne(&evdev.InputEvent{Type: typ, Code: code, Value: v}); err != nil {
		return fmt.Errorf("%w: write uinput event: %v", device.ErrUnavailable, err)
	}
	return nil
}

func (s *Sink) Close() error {
	s.logger.Info("Virtual controller released")
	return s.dev.Close()
}
