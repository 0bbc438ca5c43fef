// Package failsafe decides what the receiver actuates on every tick.
//
// The receiver keeps the last validly decoded snapshot and the time it
// arrived. While that snapshot is younger than the timeout it is emitted
// unchanged (Live). Once it is older (Stale) the analog sticks are forced to
// neutral; triggers and buttons keep their last value. A new frame always
// replaces the previous state in full, there is no smoothing.
package failsafe

import (
	"sync"
	"time"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// DefaultTimeout is the staleness window used when none is configured.
const DefaultTimeout = time.Second

// Mode is the failsafe state evaluated on each tick.
type Mode int

const (
	Live Mode = iota
	Stale
)

func (m Mode) String() string {
	switch m {
	case Live:
		return "live"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Clock abstracts time so tests can drive the state machine.
//
// Values returned by the system clock carry a monotonic reading, so the
// elapsed time computed from them is unaffected by wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the process clock.
func SystemClock() Clock { return systemClock{} }

// Policy selects which axes are neutralized when stale.
type Policy struct {
	// NeutralTriggers additionally zeroes both triggers when stale.
	NeutralTriggers bool
}

// Output is the decision for one tick.
type Output struct {
	Mode     Mode
	Snapshot protocol.Snapshot
}

// Decide is the pure tick decision: given the last snapshot, when it was
// received and the current time, it returns what must be emitted.
// An age equal to the timeout is still Live.
func Decide(last protocol.Snapshot, lastReceipt, now time.Time, timeout time.Duration) Output {
	return Policy{}.Decide(last, lastReceipt, now, timeout)
}

// Decide is like the package level Decide but honours the policy.
func (p Policy) Decide(last protocol.Snapshot, lastReceipt, now time.Time, timeout time.Duration) Output {
	if now.Sub(lastReceipt) <= timeout {
		return Output{Mode: Live, Snapshot: last}
	}
	out := Output{Mode: Stale, Snapshot: last}
	for a := protocol.AxisLeftStickX; a <= protocol.AxisRightStickY; a++ {
		out.Snapshot.Axes[a] = 0
	}
	if p.NeutralTriggers {
		out.Snapshot.Axes[protocol.AxisLeftTrigger] = 0
		out.Snapshot.Axes[protocol.AxisRightTrigger] = 0
	}
	return out
}

// Status is a read-only view of the machine used for diagnostics.
type Status struct {
	Output       Output
	Timeout      time.Duration
	SinceLast    time.Duration
	LastSequence uint32
	Frames       uint64
}

// Machine owns the receiver state. Accept is its only writer; Tick reads,
// decides and emits while holding the same lock.
type Machine struct {
	mu          sync.Mutex
	clock       Clock
	timeout     time.Duration
	policy      Policy
	last        protocol.Snapshot
	lastReceipt time.Time
	lastSeq     uint32
	frames      uint64
}

// New creates a machine whose last receipt time is the construction time, so
// it starts Live with an all-zero snapshot and turns Stale after timeout.
func New(timeout time.Duration, clock Clock) *Machine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Machine{
		clock:       clock,
		timeout:     timeout,
		lastReceipt: clock.Now(),
	}
}

// WithPolicy sets the stale policy. It must be called before the machine is shared.
func (m *Machine) WithPolicy(p Policy) *Machine {
	m.policy = p
	return m
}

// Timeout returns the configured staleness window.
func (m *Machine) Timeout() time.Duration { return m.timeout }

// Accept records a validly decoded frame as the new last known good state.
func (m *Machine) Accept(f protocol.Frame) {
	now := m.clock.Now()
	m.mu.Lock()
	m.last = f.Snapshot
	m.lastReceipt = now
	m.lastSeq = f.Sequence
	m.frames++
	m.mu.Unlock()
}

// Tick evaluates the current state and hands the decision to emit. The
// decision and the emission happen atomically with respect to Accept.
// A nil emit only evaluates.
func (m *Machine) Tick(emit func(Output) error) (Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.policy.Decide(m.last, m.lastReceipt, m.clock.Now(), m.timeout)
	if emit == nil {
		return out, nil
	}
	return out, emit(out)
}

// Status returns a consistent copy of the machine state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	return Status{
		Output:       m.policy.Decide(m.last, m.lastReceipt, now, m.timeout),
		Timeout:      m.timeout,
		SinceLast:    now.Sub(m.lastReceipt),
		LastSequence: m.lastSeq,
		Frames:       m.frames,
	}
}
