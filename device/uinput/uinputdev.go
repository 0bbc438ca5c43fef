//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
)

// From linux/uinput.h.
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567

	maxNameSize = 80
	absSize     = 64
)

// userDev is struct uinput_user_dev.
type userDev struct {
	Name       [maxNameSize]byte
	ID         evdev.InputID
	EffectsMax uint32
	Absmax     [absSize]int32
	Absmin     [absSize]int32
	Absfuzz    [absSize]int32
	Absflat    [absSize]int32
}

// inputEvent is struct input_event.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// AbsRange is the declared [Min, Max] of an absolute axis.
type AbsRange struct{ Min, Max int32 }

// AbsRanges returns the ranges the virtual controller declares: sticks span
// the full int16 range, triggers [0, 32767] and the hat [-1, 1].
func AbsRanges(dpad device.DPadMode) map[evdev.EvCode]AbsRange {
	stick := AbsRange{Min: -32768, Max: 32767}
	trigger := AbsRange{Min: 0, Max: 32767}
	r := map[evdev.EvCode]AbsRange{
		evdev.ABS_X: stick, evdev.ABS_Y: stick,
		evdev.ABS_RX: stick, evdev.ABS_RY: stick,
		evdev.ABS_Z: trigger, evdev.ABS_RZ: trigger,
	}
	if dpad != device.DPadButtonsMode {
		r[evdev.ABS_HAT0X] = AbsRange{Min: -1, Max: 1}
		r[evdev.ABS_HAT0Y] = AbsRange{Min: -1, Max: 1}
	}
	return r
}

func newUserDev(name string, id evdev.InputID, dpad device.DPadMode) userDev {
	d := userDev{ID: id}
	copy(d.Name[:maxNameSize-1], name)
	for code, r := range AbsRanges(dpad) {
		d.Absmin[code] = r.Min
		d.Absmax[code] = r.Max
	}
	return d
}

// uinputDevice is an open /dev/uinput handle with a created device.
type uinputDevice struct {
	f io.WriteCloser
	// destroy runs UI_DEV_DESTROY; nil when not backed by a real node.
	destroy func() error
}

// createDevice declares capabilities and axis ranges on a fresh uinput
// handle and creates the device.
func createDevice(path, name string, id evdev.InputID, dpad device.DPadMode) (*uinputDevice, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	fd := int(f.Fd())
	fail := func(step string, err error) (*uinputDevice, error) {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	for typ, codes := range Capabilities(dpad) {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, int(typ)); err != nil {
			return fail("UI_SET_EVBIT", err)
		}
		req := uint(uiSetKeyBit)
		if typ == evdev.EV_ABS {
			req = uiSetAbsBit
		}
		for _, c := range codes {
			if err := unix.IoctlSetInt(fd, req, int(c)); err != nil {
				return fail("UI_SET_BIT", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, newUserDev(name, id, dpad)); err != nil {
		return fail("encode uinput_user_dev", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fail("write uinput_user_dev", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fail("UI_DEV_CREATE", err)
	}
	return &uinputDevice{
		f:       f,
		destroy: func() error { return unix.IoctlSetInt(fd, uiDevDestroy, 0) },
	}, nil
}

func (d *uinputDevice) WriteOne(ev *evdev.InputEvent) error {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.NativeEndian, inputEvent{Type: uint16(ev.Type), Code: uint16(ev.Code), Value: ev.Value})
	_, err := d.f.Write(buf.Bytes())
	return err
}

func (d *uinputDevice) Close() error {
	var err error
	if d.destroy != nil {
		err = d.destroy()
	}
	if cerr := d.f.Close(); err == nil {
		err = cerr
	}
	return err
}
