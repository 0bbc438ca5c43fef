package joystick

import (
	"errors"
	"testing"

	"github.com/0xcafed00d/joystick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

type fakeJoystick struct {
	state  joystick.State
	err    error
	closed bool
}

func (f *fakeJoystick) AxisCount() int                { return len(f.state.AxisData) }
func (f *fakeJoystick) ButtonCount() int              { return 32 }
func (f *fakeJoystick) Name() string                  { return "fake" }
func (f *fakeJoystick) Read() (joystick.State, error) { return f.state, f.err }
func (f *fakeJoystick) Close()                        { f.closed = true }

func TestReadSnapshotMapsSteamDeckLayout(t *testing.T) {
	js := &fakeJoystick{state: joystick.State{
		AxisData: []int{100, -100, 32767, -32767, 0, 20000},
		Buttons:  1<<0 | 1<<10 | 1<<11,
	}}
	src := newSource(js, device.SteamDeckMapping)

	s, err := src.ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, [protocol.NumAxes]int16{100, -100, 32767, -32767, 0, 20000}, s.Axes)
	assert.True(t, s.Pressed(protocol.ButtonA))
	assert.True(t, s.Pressed(protocol.ButtonR1))
	assert.True(t, s.Pressed(protocol.ButtonDPadUp))
	assert.False(t, s.Pressed(protocol.ButtonB))

	require.NoError(t, src.Close())
	assert.True(t, js.closed)
}

func TestReadSnapshotShortAxisData(t *testing.T) {
	js := &fakeJoystick{state: joystick.State{AxisData: []int{5, 6}}}
	s, err := newSource(js, device.SteamDeckMapping).ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, [protocol.NumAxes]int16{5, 6, 0, 0, 0, 0}, s.Axes)
}

func TestReadSnapshotErrorIsUnavailable(t *testing.T) {
	js := &fakeJoystick{err: errors.New("no such device")}
	_, err := newSource(js, device.SteamDeckMapping).ReadSnapshot()
	assert.ErrorIs(t, err, device.ErrUnavailable)
}

func TestRawButtonBounds(t *testing.T) {
	r := rawState(joystick.State{Buttons: 1 << 31})
	assert.True(t, r.RawButton(31))
	assert.False(t, r.RawButton(32))
	assert.False(t, r.RawButton(-1))
}
