//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

type fakeDev struct {
	events []evdev.InputEvent
	err    error
	closed bool
}

func (f *fakeDev) WriteOne(ev *evdev.InputEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeDev) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDev) value(typ evdev.EvType, code evdev.EvCode) (int32, bool) {
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].Type == typ && f.events[i].Code == code {
			return f.events[i].Value, true
		}
	}
	return 0, false
}

var snap = protocol.Snapshot{
	Axes:    [protocol.NumAxes]int16{100, -200, 300, -400, 500, 600},
	Buttons: [protocol.NumButtons]uint8{1, 0, 0, 1, 0, 1, 1, 0, 0, 1},
}

func TestCommitHatMode(t *testing.T) {
	dev := &fakeDev{}
	s := newSink(dev, device.DPadHatMode, slog.Default())

	require.NoError(t, device.Apply(s, snap))

	last := dev.events[len(dev.events)-1]
	assert.Equal(t, evdev.EvType(evdev.EV_SYN), last.Type)
	assert.Equal(t, evdev.EvCode(evdev.SYN_REPORT), last.Code)

	v, ok := dev.value(evdev.EV_ABS, evdev.ABS_RY)
	require.True(t, ok)
	assert.Equal(t, int32(-400), v)
	v, _ = dev.value(evdev.EV_ABS, evdev.ABS_RZ)
	assert.Equal(t, int32(600), v)
	v, _ = dev.value(evdev.EV_KEY, evdev.BTN_WEST)
	assert.Equal(t, int32(1), v)

	x, _ := dev.value(evdev.EV_ABS, evdev.ABS_HAT0X)
	y, _ := dev.value(evdev.EV_ABS, evdev.ABS_HAT0Y)
	assert.Equal(t, int32(1), x)
	assert.Equal(t, int32(-1), y)

	_, ok = dev.value(evdev.EV_KEY, evdev.BTN_DPAD_UP)
	assert.False(t, ok, "hat mode must not emit D-pad keys")
	assert.Len(t, dev.events, protocol.NumAxes+6+2+1)
}

func TestCommitButtonsMode(t *testing.T) {
	dev := &fakeDev{}
	s := newSink(dev, device.DPadButtonsMode, slog.Default())

	require.NoError(t, device.Apply(s, snap))

	v, ok := dev.value(evdev.EV_KEY, evdev.BTN_DPAD_UP)
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
	v, _ = dev.value(evdev.EV_KEY, evdev.BTN_DPAD_RIGHT)
	assert.Equal(t, int32(1), v)
	_, ok = dev.value(evdev.EV_ABS, evdev.ABS_HAT0X)
	assert.False(t, ok)
	assert.Len(t, dev.events, protocol.NumAxes+protocol.NumButtons+1)
}

func TestCommitErrorIsUnavailable(t *testing.T) {
	dev := &fakeDev{err: errors.New("no such device")}
	s := newSink(dev, device.DPadHatMode, slog.Default())
	assert.ErrorIs(t, s.Commit(), device.ErrUnavailable)
}

func TestCapabilities(t *testing.T) {
	hat := Capabilities(device.DPadHatMode)
	assert.Contains(t, hat[evdev.EV_ABS], evdev.EvCode(evdev.ABS_HAT0X))
	assert.NotContains(t, hat[evdev.EV_KEY], evdev.EvCode(evdev.BTN_DPAD_UP))

	btn := Capabilities(device.DPadButtonsMode)
	assert.Contains(t, btn[evdev.EV_KEY], evdev.EvCode(evdev.BTN_DPAD_UP))
	assert.NotContains(t, btn[evdev.EV_ABS], evdev.EvCode(evdev.ABS_HAT0X))
}

func TestCloseReleasesDevice(t *testing.T) {
	dev := &fakeDev{}
	require.NoError(t, newSink(dev, device.DPadHatMode, slog.Default()).Close())
	assert.True(t, dev.closed)
}

func TestCheckAccess(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "uinput")
	err := checkAccess(missing)
	assert.ErrorIs(t, err, device.ErrUnavailable)
	assert.ErrorContains(t, err, "modprobe uinput")

	require.NoError(t, os.WriteFile(missing, nil, 0o600))
	assert.NoError(t, checkAccess(missing))
}

func TestUserDevDeclaresAxisRanges(t *testing.T) {
	id := evdev.InputID{BusType: 0x06, Vendor: 0xdec0, Product: 1, Version: 1}
	d := newUserDev(DefaultName, id, device.DPadHatMode)

	assert.Equal(t, DefaultName, string(bytes.TrimRight(d.Name[:], "\x00")))
	assert.Equal(t, id, d.ID)
	for _, code := range []evdev.EvCode{evdev.ABS_X, evdev.ABS_Y, evdev.ABS_RX, evdev.ABS_RY} {
		assert.Equal(t, int32(-32768), d.Absmin[code], code)
		assert.Equal(t, int32(32767), d.Absmax[code], code)
	}
	for _, code := range []evdev.EvCode{evdev.ABS_Z, evdev.ABS_RZ} {
		assert.Equal(t, int32(0), d.Absmin[code], code)
		assert.Equal(t, int32(32767), d.Absmax[code], code)
	}
	for _, code := range []evdev.EvCode{evdev.ABS_HAT0X, evdev.ABS_HAT0Y} {
		assert.Equal(t, int32(-1), d.Absmin[code], code)
		assert.Equal(t, int32(1), d.Absmax[code], code)
	}

	// every declared abs capability has a non-degenerate range
	for _, code := range Capabilities(device.DPadHatMode)[evdev.EV_ABS] {
		assert.Less(t, d.Absmin[code], d.Absmax[code], code)
	}
	assert.Equal(t, binary.Size(userDev{}), maxNameSize+8+4+4*absSize*4)
}

func TestUserDevButtonsModeHasNoHat(t *testing.T) {
	d := newUserDev("pad", evdev.InputID{}, device.DPadButtonsMode)
	assert.Zero(t, d.Absmax[evdev.ABS_HAT0X])
	assert.Zero(t, d.Absmax[evdev.ABS_HAT0Y])
	assert.Equal(t, int32(32767), d.Absmax[evdev.ABS_X])
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestUinputDeviceWritesInputEvents(t *testing.T) {
	var out bytes.Buffer
	dev := &uinputDevice{f: nopWriteCloser{&out}}

	require.NoError(t, dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_ABS, Code: evdev.ABS_RZ, Value: -7}))
	require.NoError(t, dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}))
	require.Equal(t, 2*binary.Size(inputEvent{}), out.Len())

	var ev inputEvent
	require.NoError(t, binary.Read(&out, binary.NativeEndian, &ev))
	assert.Equal(t, uint16(evdev.EV_ABS), ev.Type)
	assert.Equal(t, uint16(evdev.ABS_RZ), ev.Code)
	assert.Equal(t, int32(-7), ev.Value)
	assert.NoError(t, dev.Close())
}
