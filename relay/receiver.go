package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/failsafe"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/log"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

// ReceiverConfig configures the receiving side.
type ReceiverConfig struct {
	// Listen is the local host:port to bind.
	Listen string
	// TickRate is the actuation rate in Hz.
	TickRate int
}

// Receiver decodes frames on arrival and actuates the sink on every tick.
type Receiver struct {
	conn    net.PacketConn
	machine *failsafe.Machine
	sink    device.Sink
	period  time.Duration
	logger  *slog.Logger
	raw     log.RawLogger
	stats   counters
}

// Listen binds the UDP socket. Failure matches ErrTransportBind. The sink is
// owned by the returned Receiver and closed with it.
func Listen(cfg ReceiverConfig, m *failsafe.Machine, sink device.Sink, logger *slog.Logger, raw log.RawLogger) (*Receiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	conn, err := net.ListenPacket("udp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %v", ErrTransportBind, cfg.Listen, err)
	}
	return &Receiver{
		conn:    conn,
		machine: m,
		sink:    sink,
		period:  Period(cfg.TickRate),
		logger:  logger,
		raw:     raw,
	}, nil
}

// Addr returns the bound local address.
func (r *Receiver) Addr() net.Addr { return r.conn.LocalAddr() }

// Status returns the failsafe state.
func (r *Receiver) Status() failsafe.Status { return r.machine.Status() }

// Stats returns the receive counters.
func (r *Receiver) Stats() Stats { return r.stats.snapshot() }

// Run reads datagrams in a background goroutine and actuates the sink on
// every tick until ctx is done. A sink failure stops the receiver and is
// returned.
func (r *Receiver) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.logger.Info("Receiving", "listen", r.Addr().String(), "timeout", r.machine.Timeout(), "tick", r.period)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.readLoop(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	mode := failsafe.Live
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Receiver stopped", "frames", r.stats.received.Load(), "malformed", r.stats.malformed.Load())
			return nil
		case <-ticker.C:
			out, err := r.machine.Tick(func(o failsafe.Output) error {
				return device.Apply(r.sink, o.Snapshot)
			})
			r.stats.ticks.Add(1)
			if err != nil {
				return fmt.Errorf("actuate: %w", err)
			}
			if out.Mode != mode {
				r.logModeChange(out.Mode)
				mode = out.Mode
			}
		}
	}
}

func (r *Receiver) logModeChange(m failsafe.Mode) {
	st := r.machine.Status()
	if m == failsafe.Stale {
		r.logger.Warn("Link lost, sticks neutral", "sinceLast", st.SinceLast.Round(time.Millisecond), "lastSeq", st.LastSequence)
		return
	}
	r.logger.Info("Link restored", "seq", st.LastSequence)
}

func (r *Receiver) readLoop(ctx context.Context) {
	buf := make([]byte, maxDatagram)
	for ctx.Err() == nil {
		_ = r.conn.SetReadDeadline(time.Now().Add(r.period))
		n, peer, err := r.conn.ReadFrom(buf)
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
			case errors.Is(err, net.ErrClosed):
				return
			default:
				r.stats.transient.Add(1)
				r.logger.Debug("receive failed", "error", err)
			}
			continue
		}
		if r.raw.Enabled() {
			r.raw.Log(false, peer, buf[:n])
		}
		f, err := protocol.Decode(buf[:n])
		if err != nil {
			r.stats.malformed.Add(1)
			r.logger.Debug("dropped datagram", "peer", peer, "error", err)
			continue
		}
		r.machine.Accept(f)
		r.stats.received.Add(1)
		r.logger.Log(ctx, log.LevelTrace, "frame", "seq", f.Sequence, "peer", peer)
	}
}

// Close releases the socket and the sink.
func (r *Receiver) Close() error {
	err := r.conn.Close()
	if serr := r.sink.Close(); err == nil {
		err = serr
	}
	return err
}
