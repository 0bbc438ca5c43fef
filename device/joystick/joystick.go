// Package joystick reads a controller through the Linux joystick API
// (/dev/input/jsN).
package joystick

import (
	"fmt"
	"log/slog"

	"github.com/0xcafed00d/joystick"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

func init() {
	device.RegisterSource("joystick", func(o device.SourceOptions) (device.Source, error) {
		return Open(o)
	})
}

// Source adapts a joystick device to device.Source.
type Source struct {
	js      joystick.Joystick
	mapping device.Mapping
}

// Open opens joystick o.DeviceIndex.
func Open(o device.SourceOptions) (*Source, error) {
	js, err := joystick.Open(o.DeviceIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: open joystick %d: %v", device.ErrUnavailable, o.DeviceIndex, err)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Opened joystick", "index", o.DeviceIndex, "name", js.Name(), "axes", js.AxisCount(), "buttons", js.ButtonCount())
	return newSource(js, o.Mapping), nil
}

func newSource(js joystick.Joystick, m device.Mapping) *Source {
	return &Source{js: js, mapping: m}
}

func (s *Source) ReadSnapshot() (protocol.Snapshot, error) {
	st, err := s.js.Read()
	if err != nil {
		return protocol.Snapshot{}, fmt.Errorf("%w: read joystick: %v", device.ErrUnavailable, err)
	}
	return s.mapping.Snapshot(rawState(st)), nil
}

func (s *Source) Close() error {
	s.js.Close()
	return nil
}

type rawState joystick.State

func (r rawState) RawAxis(i int) (int, bool) {
	if i < 0 || i >= len(r.AxisData) {
		return 0, false
	}
	return r.AxisData[i], true
}

func (r rawState) RawButton(i int) bool {
	if i < 0 || i >= 32 {
		return false
	}
	return r.Buttons&(1<<uint(i)) != 0
}
