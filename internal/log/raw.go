package log

import (
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// RawLogger dumps every datagram sent or received.
type RawLogger interface {
	// Log records one datagram. outbound is true for packets this process sent.
	Log(outbound bool, peer net.Addr, data []byte)
	Enabled() bool
}

type rawLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewRaw returns a RawLogger writing hex dumps to w. A nil writer disables it.
func NewRaw(w io.Writer) RawLogger {
	if w == nil {
		return nopRaw{}
	}
	return &rawLogger{w: w}
}

func (l *rawLogger) Enabled() bool { return true }

func (l *rawLogger) Log(outbound bool, peer net.Addr, data []byte) {
	dir := "<<"
	if outbound {
		dir = ">>"
	}
	p := "-"
	if peer != nil {
		p = peer.String()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %s %s %d bytes\n%s", time.Now().Format("15:04:05.000000"), dir, p, len(data), hex.Dump(data))
}

type nopRaw struct{}

func (nopRaw) Log(bool, net.Addr, []byte) {}
func (nopRaw) Enabled() bool              { return false }
