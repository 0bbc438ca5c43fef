package viiper

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

func TestSteamDeckFromSnapshot(t *testing.T) {
	var snap protocol.Snapshot
	snap.Axes = [protocol.NumAxes]int16{1234, 2345, -32768, -32768, 0, -50}
	snap.Buttons[protocol.ButtonA] = 1
	snap.Buttons[protocol.ButtonB] = 1
	snap.Buttons[protocol.ButtonL1] = 1

	d := SteamDeckFromSnapshot(snap)
	assert.Equal(t, int16(1234), d.LeftStickX)
	assert.Equal(t, int16(-2345), d.LeftStickY)
	assert.Equal(t, int16(-32768), d.RightStickX)
	assert.Equal(t, int16(32767), d.RightStickY)
	assert.Zero(t, d.TriggerRawL)
	assert.Zero(t, d.TriggerRawR)
	assert.Equal(t, DeckButtonA|DeckButtonB|DeckButtonL1, d.Buttons)
}

func TestSteamDeckStateBinary(t *testing.T) {
	in := SteamDeckState{
		Buttons:     DeckButtonDPadUp | DeckButtonSteam,
		LeftStickX:  1234,
		LeftStickY:  -2345,
		TriggerRawL: 0x7fff,
	}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, SteamDeckStateSize)

	assert.Equal(t, []byte{0x00, 0x21, 0, 0, 0, 0, 0, 0}, b[:8])
	// 8 bytes of buttons, then 14 words of pad and motion data.
	assert.Equal(t, []byte{0xff, 0x7f, 0x00, 0x00}, b[36:40])
	assert.Equal(t, []byte{0xd2, 0x04, 0xd7, 0xf6}, b[40:44])

	var out SteamDeckState
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
	assert.ErrorIs(t, out.UnmarshalBinary(b[:51]), io.ErrUnexpectedEOF)
}
