package relay

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/log"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// TransmitterConfig configures the sending side.
type TransmitterConfig struct {
	// Dest is the receiver host:port.
	Dest string
	// Rate is the poll and send rate in Hz.
	Rate int
	// StartSequence is the sequence number of the first frame.
	StartSequence uint32
}

// Transmitter owns the UDP socket, the source and the sequence counter.
type Transmitter struct {
	conn   net.Conn
	src    device.Source
	period time.Duration
	seq    uint32
	buf    []byte
	logger *slog.Logger
	raw    log.RawLogger
	stats  counters
}

// Dial opens the UDP socket towards cfg.Dest. The source is owned by the
// returned Transmitter and closed with it.
func Dial(cfg TransmitterConfig, src device.Source, logger *slog.Logger, raw log.RawLogger) (*Transmitter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	conn, err := net.Dial("udp", cfg.Dest)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransportBind, cfg.Dest, err)
	}
	return &Transmitter{
		conn:   conn,
		src:    src,
		period: Period(cfg.Rate),
		seq:    cfg.StartSequence,
		buf:    make([]byte, 0, protocol.FrameSize),
		logger: logger.With("dest", conn.RemoteAddr().String()),
		raw:    raw,
	}, nil
}

// Run sends one frame per period until ctx is done or the source fails.
func (t *Transmitter) Run(ctx context.Context) error {
	t.logger.Info("Transmitting", "rate", int64(time.Second/t.period), "period", t.period)
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Transmitter stopped", "sent", t.stats.sent.Load(), "nextSequence", t.seq)
			return nil
		case <-ticker.C:
			if err := t.Step(); err != nil {
				return err
			}
		}
	}
}

// Step polls the source once and sends the resulting frame. Only a source
// failure is returned; send errors are transient and merely counted.
func (t *Transmitter) Step() error {
	snap, err := t.src.ReadSnapshot()
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	t.buf = protocol.AppendFrame(t.buf[:0], snap, t.seq)
	seq := t.seq
	t.seq++

	if t.raw.Enabled() {
		t.raw.Log(true, t.conn.RemoteAddr(), t.buf)
	}
	if _, err := t.conn.Write(t.buf); err != nil {
		t.stats.transient.Add(1)
		t.logger.Debug("send failed", "seq", seq, "error", err)
		return nil
	}
	t.stats.sent.Add(1)
	t.logger.Log(context.Background(), log.LevelTrace, "sent", "seq", seq)
	return nil
}

// Sequence returns the sequence number the next frame will carry.
func (t *Transmitter) Sequence() uint32 { return t.seq }

// Stats returns the transmit counters.
func (t *Transmitter) Stats() Stats { return t.stats.snapshot() }

// Close releases the socket and the source.
func (t *Transmitter) Close() error {
	err := t.conn.Close()
	if serr := t.src.Close(); err == nil {
		err = serr
	}
	return err
}
