package testing

import (
	"errors"
	"sync"
	"time"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// StaticSource always returns the same snapshot until Set is called.
type StaticSource struct {
	mu     sync.Mutex
	snap   protocol.Snapshot
	err    error
	reads  int
	closed bool
}

func NewStaticSource(s protocol.Snapshot) *StaticSource { return &StaticSource{snap: s} }

func (s *StaticSource) Set(snap protocol.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Fail makes every following read return err.
func (s *StaticSource) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *StaticSource) ReadSnapshot() (protocol.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.snap, s.err
}

func (s *StaticSource) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *StaticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *StaticSource) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// RecordingSink records every committed snapshot.
type RecordingSink struct {
	mu        sync.Mutex
	pending   protocol.Snapshot
	committed []protocol.Snapshot
	failAfter int
	closed    bool
}

var _ device.Sink = (*RecordingSink)(nil)

func NewRecordingSink() *RecordingSink { return &RecordingSink{failAfter: -1} }

// FailAfter makes Commit return device.ErrUnavailable once n commits succeeded.
func (s *RecordingSink) FailAfter(n int) {
	s.mu.Lock()
	s.failAfter = n
	s.mu.Unlock()
}

func (s *RecordingSink) SetAxis(a protocol.Axis, v int16) {
	s.mu.Lock()
	s.pending.Axes[a] = v
	s.mu.Unlock()
}

func (s *RecordingSink) SetButton(b protocol.Button, v uint8) {
	s.mu.Lock()
	s.pending.Buttons[b] = v
	s.mu.Unlock()
}

func (s *RecordingSink) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter >= 0 && len(s.committed) >= s.failAfter {
		return errors.Join(device.ErrUnavailable, errors.New("fake sink unplugged"))
	}
	s.committed = append(s.committed, s.pending)
	return nil
}

func (s *RecordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *RecordingSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Last returns the most recent committed snapshot.
func (s *RecordingSink) Last() (protocol.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.committed) == 0 {
		return protocol.Snapshot{}, false
	}
	return s.committed[len(s.committed)-1], true
}

func (s *RecordingSink) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}
