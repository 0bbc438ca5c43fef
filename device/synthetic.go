package device

import (
	"log/slog"
	"sync"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

func init() {
	RegisterSource("synthetic", func(SourceOptions) (Source, error) { return NewSynthetic(), nil })
	RegisterSink("log", func(o SinkOptions) (Sink, error) { return NewLogSink(o.Logger), nil })
}

// Synthetic is a deterministic source for running without hardware. Sticks
// sweep their full range, triggers ramp up and one button at a time is held
// for 30 reads.
type Synthetic struct {
	mu sync.Mutex
	n  uint64
}

func NewSynthetic() *Synthetic { return &Synthetic{} }

func (s *Synthetic) ReadSnapshot() (protocol.Snapshot, error) {
	s.mu.Lock()
	n := s.n
	s.n++
	s.mu.Unlock()

	phase := int(n % 256)
	var snap protocol.Snapshot
	snap.Axes[protocol.AxisLeftStickX] = int16(phase*256 - 32768)
	snap.Axes[protocol.AxisLeftStickY] = int16(32767 - phase*256)
	snap.Axes[protocol.AxisRightStickX] = int16((phase+64)%256*256 - 32768)
	snap.Axes[protocol.AxisRightStickY] = int16((phase+128)%256*256 - 32768)
	snap.Axes[protocol.AxisLeftTrigger] = int16(phase * 128)
	snap.Axes[protocol.AxisRightTrigger] = int16((255 - phase) * 128)
	snap.Buttons[(n/30)%protocol.NumButtons] = 1
	return snap, nil
}

func (s *Synthetic) Close() error { return nil }

// LogSink logs committed snapshots at debug level whenever they change.
type LogSink struct {
	logger  *slog.Logger
	pending protocol.Snapshot
	last    protocol.Snapshot
	commits uint64
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) SetAxis(a protocol.Axis, v int16)     { s.pending.Axes[a] = v }
func (s *LogSink) SetButton(b protocol.Button, v uint8) { s.pending.Buttons[b] = v }

func (s *LogSink) Commit() error {
	s.commits++
	if s.commits == 1 || s.pending != s.last {
		s.logger.Debug("virtual controller", "axes", s.pending.Axes, "buttons", s.pending.Buttons)
	}
	s.last = s.pending
	return nil
}

func (s *LogSink) Close() error { return nil }
