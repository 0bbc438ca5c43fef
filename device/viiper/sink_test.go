package viiper

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// fakeServer mimics the subset of the VIIPER API the sink uses.
type fakeServer struct {
	mu     sync.Mutex
	buses  string
	calls  []string
	kind   string
	states chan []byte
	addr   string
}

func newFakeServer(t *testing.T, buses string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	s := &fakeServer{buses: buses, states: make(chan []byte, 16), addr: ln.Addr().String()}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go s.handle(c)
		}
	}()
	return s
}

func (s *fakeServer) handle(c net.Conn) {
	defer c.Close()
	r := bufio.NewReader(c)
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}
	line = strings.TrimSuffix(line, "\n")
	s.mu.Lock()
	s.calls = append(s.calls, line)
	s.mu.Unlock()

	var reply string
	switch {
	case line == "bus/list":
		reply = `{"buses":` + s.buses + `}`
	case line == "bus/create":
		reply = `{"busId":1}`
	case strings.HasPrefix(line, "bus/1/add ") || strings.HasPrefix(line, "bus/2/add "):
		kind := line[len("bus/1/add "):]
		s.mu.Lock()
		s.kind = kind
		s.mu.Unlock()
		reply = `{"id":"` + line[4:5] + `-1","type":"` + kind + `"}`
	case line == "bus/1/remove 1" || line == "bus/2/remove 1":
		reply = `{"busId":1,"devId":"1"}`
	case line == "bus/remove 1":
		reply = `{"busId":1}`
	case line == "bus/1/1" || line == "bus/2/1":
		size := XInputStateSize
		s.mu.Lock()
		if s.kind == "steamdeck" {
			size = SteamDeckStateSize
		}
		s.mu.Unlock()
		for {
			buf := make([]byte, size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return
			}
			s.states <- buf
		}
	default:
		reply = `{"error":"unknown path"}`
	}
	_, _ = c.Write([]byte(reply + "\n"))
}

func (s *fakeServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func TestFromSnapshot(t *testing.T) {
	var snap protocol.Snapshot
	snap.Axes = [protocol.NumAxes]int16{100, -32768, -200, 300, 32767, 256}
	snap.Buttons[protocol.ButtonA] = 1
	snap.Buttons[protocol.ButtonR1] = 1
	snap.Buttons[protocol.ButtonDPadLeft] = 1

	x := FromSnapshot(snap)
	assert.Equal(t, int16(100), x.LX)
	assert.Equal(t, int16(32767), x.LY)
	assert.Equal(t, int16(-200), x.RX)
	assert.Equal(t, int16(-300), x.RY)
	assert.Equal(t, uint8(255), x.LT)
	assert.Equal(t, uint8(2), x.RT)
	assert.Equal(t, ButtonA|ButtonRB|ButtonDPadLeft, x.Buttons)
}

func TestXInputStateBinary(t *testing.T) {
	in := XInputState{Buttons: ButtonY | ButtonDPadUp, LT: 7, RT: 200, LX: -1, LY: 2, RX: -32768, RY: 32767}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, XInputStateSize)
	assert.Equal(t, []byte{0x01, 0x80, 0x00, 0x00, 7, 200, 0xff, 0xff, 0x02, 0x00, 0x00, 0x80, 0xff, 0x7f}, b)

	var out XInputState
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
	assert.ErrorIs(t, out.UnmarshalBinary(b[:5]), io.ErrUnexpectedEOF)
}

func TestSinkCreatesBusAndStreams(t *testing.T) {
	srv := newFakeServer(t, "[]")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := Connect(ctx, srv.addr, "", nil)
	require.NoError(t, err)

	var snap protocol.Snapshot
	snap.Axes[protocol.AxisLeftStickX] = 1234
	snap.Buttons[protocol.ButtonB] = 1
	require.NoError(t, device.Apply(s, snap))

	select {
	case b := <-srv.states:
		var st XInputState
		require.NoError(t, st.UnmarshalBinary(b))
		assert.Equal(t, int16(1234), st.LX)
		assert.Equal(t, ButtonB, st.Buttons)
	case <-time.After(2 * time.Second):
		t.Fatal("no state streamed")
	}

	require.NoError(t, s.Close())
	assert.Eventually(t, func() bool {
		calls := srv.Calls()
		return len(calls) == 6 && calls[5] == "bus/remove 1"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"bus/list", "bus/create", "bus/1/add xbox360", "bus/1/1", "bus/1/remove 1", "bus/remove 1"}, srv.Calls())
}

func TestSinkReusesLowestBus(t *testing.T) {
	srv := newFakeServer(t, "[2,5]")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := Connect(ctx, srv.addr, DefaultDevice, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	calls := srv.Calls()
	assert.Contains(t, calls, "bus/2/add xbox360")
	assert.NotContains(t, calls, "bus/create")
	assert.NotContains(t, calls, "bus/remove 1")
}

func TestConnectUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = Connect(ctx, addr, "", nil)
	assert.ErrorIs(t, err, device.ErrUnavailable)
}

func TestCommitAfterServerGone(t *testing.T) {
	srv := newFakeServer(t, "[1]")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := Connect(ctx, srv.addr, "", nil)
	require.NoError(t, err)
	_ = s.conn.Close()

	assert.ErrorIs(t, s.Commit(), device.ErrUnavailable)
}

func TestSinkSteamDeckDevice(t *testing.T) {
	srv := newFakeServer(t, "[1]")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := Connect(ctx, srv.addr, "steamdeck", nil)
	require.NoError(t, err)
	defer s.Close()

	var snap protocol.Snapshot
	snap.Axes[protocol.AxisRightStickY] = 1000
	snap.Axes[protocol.AxisRightTrigger] = 32767
	snap.Buttons[protocol.ButtonDPadUp] = 1
	require.NoError(t, device.Apply(s, snap))

	select {
	case b := <-srv.states:
		require.Len(t, b, SteamDeckStateSize)
		var st SteamDeckState
		require.NoError(t, st.UnmarshalBinary(b))
		assert.Equal(t, int16(-1000), st.RightStickY)
		assert.Equal(t, uint16(32767), st.TriggerRawR)
		assert.Equal(t, DeckButtonDPadUp|DeckButtonR2, st.Buttons)
	case <-time.After(2 * time.Second):
		t.Fatal("no state streamed")
	}
	assert.Contains(t, srv.Calls(), "bus/1/add steamdeck")
}

func TestConnectUnknownDevice(t *testing.T) {
	_, err := Connect(context.Background(), "127.0.0.1:1", "dualshock", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, device.ErrUnavailable)
	assert.Contains(t, err.Error(), "steamdeck")
}
