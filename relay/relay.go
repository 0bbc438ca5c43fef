// Package relay moves controller snapshots over UDP.
//
// The Transmitter polls a device.Source at a fixed rate and sends one frame
// per poll. The Receiver decodes frames as they arrive and, independently,
// actuates a device.Sink on every tick of its own clock through the
// failsafe machine.
package relay

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrTransportBind reports that the UDP socket could not be created. It is
// fatal at startup.
var ErrTransportBind = errors.New("transport bind failure")

const (
	// DefaultRate is the transmit and tick rate in Hz.
	DefaultRate = 60
	// DefaultPort is the UDP port both ends default to.
	DefaultPort = 5005

	// maxDatagram bounds reads; anything longer than a frame is malformed
	// anyway, so truncation cannot turn a bad datagram into a good one.
	maxDatagram = 2048
)

// Period converts a rate in Hz to a ticker period.
func Period(hz int) time.Duration {
	if hz <= 0 {
		hz = DefaultRate
	}
	return time.Second / time.Duration(hz)
}

// Stats is a point-in-time copy of the relay counters.
type Stats struct {
	Sent            uint64
	Received        uint64
	Malformed       uint64
	TransientErrors uint64
	Ticks           uint64
}

type counters struct {
	sent      atomic.Uint64
	received  atomic.Uint64
	malformed atomic.Uint64
	transient atomic.Uint64
	ticks     atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Sent:            c.sent.Load(),
		Received:        c.received.Load(),
		Malformed:       c.malformed.Load(),
		TransientErrors: c.transient.Load(),
		Ticks:           c.ticks.Load(),
	}
}
