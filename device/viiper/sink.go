// Package viiper drives a virtual controller hosted by a VIIPER USB-IP
// server. The sink adds an xbox360 or steamdeck device over the server's API
// and streams its input state on every commit.
package viiper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/apiclient"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

const (
	DefaultDevice = "xbox360"
	setupTimeout  = 5 * time.Second
	writeTimeout  = time.Second
)

// profile describes how one VIIPER device type is fed.
type profile struct {
	encode func(protocol.Snapshot) []byte
	// feedback is the size of one device to client packet.
	feedback int
}

var profiles = map[string]profile{
	"xbox360": {
		encode: func(s protocol.Snapshot) []byte {
			b, _ := FromSnapshot(s).MarshalBinary()
			return b
		},
		feedback: 2,
	},
	"steamdeck": {
		encode: func(s protocol.Snapshot) []byte {
			b, _ := SteamDeckFromSnapshot(s).MarshalBinary()
			return b
		},
		feedback: 64,
	},
}

// DeviceTypes lists the supported VIIPER device types.
func DeviceTypes() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func init() {
	device.RegisterSink("viiper", func(o device.SinkOptions) (device.Sink, error) {
		ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()
		return Connect(ctx, o.ViiperAddr, o.ViiperDevice, o.Logger)
	})
}

type busListResponse struct {
	Buses []uint32 `json:"buses"`
}

type busResponse struct {
	BusID uint32 `json:"busId"`
}

type deviceAddResponse struct {
	ID string `json:"id"`
}

// Sink streams committed snapshots to a VIIPER device.
type Sink struct {
	transport  *apiclient.Transport
	kind       string
	profile    profile
	conn       net.Conn
	busID      uint32
	devID      string
	createdBus bool
	pending    protocol.Snapshot
	logger     *slog.Logger
}

// Connect attaches a new device of the given kind (DefaultDevice when empty)
// to the lowest existing bus, creating a bus when none exists, and opens its
// input stream.
func Connect(ctx context.Context, addr, kind string, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if kind == "" {
		kind = DefaultDevice
	}
	p, ok := profiles[kind]
	if !ok {
		return nil, fmt.Errorf("unknown viiper device %q (available: %v)", kind, DeviceTypes())
	}
	s := &Sink{
		transport: apiclient.NewTransport(addr),
		kind:      kind,
		profile:   p,
		logger:    logger.With("viiper", addr, "type", kind),
	}
	if err := s.setup(ctx); err != nil {
		s.teardown()
		return nil, fmt.Errorf("%w: viiper %s: %v", device.ErrUnavailable, addr, err)
	}
	s.logger.Info("Virtual controller attached", "bus", s.busID, "device", s.devID)
	return s, nil
}

func (s *Sink) setup(ctx context.Context) error {
	buses, err := apiclient.Call[busListResponse](ctx, s.transport, "bus/list", nil, nil)
	if err != nil {
		return fmt.Errorf("bus list: %w", err)
	}
	if len(buses.Buses) == 0 {
		created, err := apiclient.Call[busResponse](ctx, s.transport, "bus/create", nil, nil)
		if err != nil {
			return fmt.Errorf("bus create: %w", err)
		}
		s.busID = created.BusID
		s.createdBus = true
	} else {
		s.busID = slices.Min(buses.Buses)
	}

	params := map[string]string{"id": fmt.Sprint(s.busID)}
	added, err := apiclient.Call[deviceAddResponse](ctx, s.transport, "bus/{id}/add", s.kind, params)
	if err != nil {
		return fmt.Errorf("device add: %w", err)
	}
	s.devID = added.ID
	if i := strings.Index(added.ID, "-"); i >= 0 {
		s.devID = added.ID[i+1:]
	}

	conn, err := s.transport.Dial(ctx)
	if err != nil {
		return fmt.Errorf("stream dial: %w", err)
	}
	if _, err := fmt.Fprintf(conn, "bus/%d/%s\n", s.busID, s.devID); err != nil {
		_ = conn.Close()
		return fmt.Errorf("stream activate: %w", err)
	}
	s.conn = conn
	go s.drainFeedback(conn)
	return nil
}

// drainFeedback consumes rumble/haptics packets so the server never blocks
// on us.
func (s *Sink) drainFeedback(conn net.Conn) {
	buf := make([]byte, s.profile.feedback)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		s.logger.Debug("feedback", "bytes", len(buf), "head", buf[:2])
	}
}

func (s *Sink) SetAxis(a protocol.Axis, v int16)     { s.pending.Axes[a] = v }
func (s *Sink) SetButton(b protocol.Button, v uint8) { s.pending.Buttons[b] = v }

// Commit writes one input state packet.
func (s *Sink) Commit() error {
	pkt := s.profile.encode(s.pending)
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.conn.Write(pkt); err != nil {
		return fmt.Errorf("%w: viiper stream: %v", device.ErrUnavailable, err)
	}
	return nil
}

// Close closes the stream and removes the device (and the bus if this sink
// created it).
func (s *Sink) Close() error {
	s.teardown()
	s.logger.Info("Virtual controller detached", "bus", s.busID, "device", s.devID)
	return nil
}

func (s *Sink) teardown() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	if s.devID != "" {
		params := map[string]string{"id": fmt.Sprint(s.busID)}
		if _, err := s.transport.DoCtx(ctx, "bus/{id}/remove", s.devID, params); err != nil {
			s.logger.Warn("device remove failed", "error", err)
		}
		s.devID = ""
	}
	if s.createdBus {
		if _, err := s.transport.DoCtx(ctx, "bus/remove", fmt.Sprint(s.busID), nil); err != nil {
			s.logger.Warn("bus remove failed", "error", err)
		}
		s.createdBus = false
	}
}
