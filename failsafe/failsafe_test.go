package failsafe_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/failsafe"
	th "github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/testing"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

const timeout = time.Second

var sample = protocol.Snapshot{
	Axes:    [protocol.NumAxes]int16{1000, -2000, 3000, -4000, 500, 600},
	Buttons: [protocol.NumButtons]uint8{1, 0, 1, 0, 1, 0, 1, 0, 0, 1},
}

func TestDecide(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	type testCase struct {
		name     string
		age      time.Duration
		wantMode failsafe.Mode
		wantAxes [protocol.NumAxes]int16
	}

	cases := []testCase{
		{
			name:     "fresh",
			age:      0,
			wantMode: failsafe.Live,
			wantAxes: sample.Axes,
		},
		{
			name:     "half timeout",
			age:      timeout / 2,
			wantMode: failsafe.Live,
			wantAxes: sample.Axes,
		},
		{
			name:     "exactly timeout",
			age:      timeout,
			wantMode: failsafe.Live,
			wantAxes: sample.Axes,
		},
		{
			name:     "just past timeout",
			age:      timeout + time.Nanosecond,
			wantMode: failsafe.Stale,
			wantAxes: [protocol.NumAxes]int16{0, 0, 0, 0, 500, 600},
		},
		{
			name:     "long stale",
			age:      time.Hour,
			wantMode: failsafe.Stale,
			wantAxes: [protocol.NumAxes]int16{0, 0, 0, 0, 500, 600},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := failsafe.Decide(sample, now.Add(-tc.age), now, timeout)
			assert.Equal(t, tc.wantMode, out.Mode)
			assert.Equal(t, tc.wantAxes, out.Snapshot.Axes)
			assert.Equal(t, sample.Buttons, out.Snapshot.Buttons, "buttons are never reset")
		})
	}
}

func TestDecideNeutralTriggersPolicy(t *testing.T) {
	now := time.Now()
	p := failsafe.Policy{NeutralTriggers: true}

	out := p.Decide(sample, now.Add(-2*timeout), now, timeout)
	assert.Equal(t, failsafe.Stale, out.Mode)
	assert.Equal(t, [protocol.NumAxes]int16{}, out.Snapshot.Axes)
	assert.Equal(t, sample.Buttons, out.Snapshot.Buttons)

	out = p.Decide(sample, now, now, timeout)
	assert.Equal(t, sample, out.Snapshot)
}

func TestMachineStartsZeroAndGoesStale(t *testing.T) {
	clk := th.NewFakeClock()
	m := failsafe.New(timeout, clk)

	out, err := m.Tick(nil)
	require.NoError(t, err)
	assert.Equal(t, failsafe.Live, out.Mode)
	assert.Equal(t, protocol.Snapshot{}, out.Snapshot)

	clk.Advance(timeout + time.Millisecond)
	out, _ = m.Tick(nil)
	assert.Equal(t, failsafe.Stale, out.Mode)
	assert.Equal(t, protocol.Snapshot{}, out.Snapshot)
}

func TestMachineNeutralOnTimeout(t *testing.T) {
	clk := th.NewFakeClock()
	m := failsafe.New(timeout, clk)
	m.Accept(protocol.Frame{Sequence: 1, Snapshot: sample})

	clk.Advance(timeout + time.Millisecond)

	var emitted []failsafe.Output
	out, err := m.Tick(func(o failsafe.Output) error {
		emitted = append(emitted, o)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, emitted, 1)
	assert.Equal(t, out, emitted[0])
	assert.Equal(t, failsafe.Stale, out.Mode)
	assert.Equal(t, [protocol.NumAxes]int16{0, 0, 0, 0, 500, 600}, out.Snapshot.Axes)
	assert.Equal(t, sample.Buttons, out.Snapshot.Buttons)
}

func TestMachineHoldLive(t *testing.T) {
	clk := th.NewFakeClock()
	m := failsafe.New(timeout, clk)
	m.Accept(protocol.Frame{Sequence: 1, Snapshot: sample})
	clk.Advance(timeout / 2)

	out, err := m.Tick(nil)
	require.NoError(t, err)
	assert.Equal(t, failsafe.Live, out.Mode)
	assert.Equal(t, sample, out.Snapshot)
}

func TestMachineImmediateRecovery(t *testing.T) {
	clk := th.NewFakeClock()
	m := failsafe.New(timeout, clk)
	m.Accept(protocol.Frame{Sequence: 1, Snapshot: sample})
	clk.Advance(10 * timeout)

	out, _ := m.Tick(nil)
	require.Equal(t, failsafe.Stale, out.Mode)

	next := protocol.Snapshot{
		Axes:    [protocol.NumAxes]int16{-7, 8, -9, 10, 0, 32767},
		Buttons: [protocol.NumButtons]uint8{0, 1, 0, 0, 0, 0, 0, 0, 1, 0},
	}
	m.Accept(protocol.Frame{Sequence: 2, Snapshot: next})

	out, _ = m.Tick(nil)
	assert.Equal(t, failsafe.Live, out.Mode)
	assert.Equal(t, next, out.Snapshot, "a late frame fully replaces the stale state")
}

func TestMachineEmitErrorIsReturned(t *testing.T) {
	m := failsafe.New(timeout, th.NewFakeClock())
	boom := errors.New("boom")

	_, err := m.Tick(func(failsafe.Output) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestMachineStatus(t *testing.T) {
	clk := th.NewFakeClock()
	m := failsafe.New(timeout, clk)
	m.Accept(protocol.Frame{Sequence: 41, Snapshot: sample})
	m.Accept(protocol.Frame{Sequence: 42, Snapshot: sample})
	clk.Advance(250 * time.Millisecond)

	st := m.Status()
	assert.Equal(t, uint32(42), st.LastSequence)
	assert.Equal(t, uint64(2), st.Frames)
	assert.Equal(t, 250*time.Millisecond, st.SinceLast)
	assert.Equal(t, timeout, st.Timeout)
	assert.Equal(t, failsafe.Live, st.Output.Mode)
}

func TestMachineDefaults(t *testing.T) {
	m := failsafe.New(0, nil)
	assert.Equal(t, failsafe.DefaultTimeout, m.Timeout())
	out, _ := m.Tick(nil)
	assert.Equal(t, failsafe.Live, out.Mode)
}

func TestMachineConcurrentAcceptAndTick(t *testing.T) {
	m := failsafe.New(timeout, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s := sample
			s.Axes[0] = int16(i)
			m.Accept(protocol.Frame{Sequence: uint32(i), Snapshot: s})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_, _ = m.Tick(func(o failsafe.Output) error {
				if o.Snapshot.Buttons != sample.Buttons && o.Snapshot != (protocol.Snapshot{}) {
					t.Errorf("torn snapshot: %v", o.Snapshot)
				}
				return nil
			})
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(1000), m.Status().Frames)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "live", failsafe.Live.String())
	assert.Equal(t, "stale", failsafe.Stale.String())
	assert.Equal(t, "unknown", failsafe.Mode(5).String())
}
