//go:build sdl

// Package sdljoy reads a controller through SDL2's joystick subsystem. It
// needs cgo and the SDL2 development headers, so it is only built with the
// "sdl" build tag.
package sdljoy

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

func init() {
	device.RegisterSource("sdl", func(o device.SourceOptions) (device.Source, error) {
		return Open(o)
	})
}

// Source polls an SDL joystick. SDL is not safe for concurrent use, so all
// calls are serialized.
type Source struct {
	mu      sync.Mutex
	joy     *sdl.Joystick
	mapping device.Mapping
}

// Open initializes the SDL joystick subsystem and opens joystick o.DeviceIndex.
func Open(o device.SourceOptions) (*Source, error) {
	if err := sdl.Init(sdl.INIT_JOYSTICK); err != nil {
		return nil, fmt.Errorf("%w: sdl init: %v", device.ErrUnavailable, err)
	}
	if n := sdl.NumJoysticks(); o.DeviceIndex >= n {
		sdl.Quit()
		return nil, fmt.Errorf("%w: joystick %d not found (%d connected)", device.ErrUnavailable, o.DeviceIndex, n)
	}
	joy := sdl.JoystickOpen(o.DeviceIndex)
	if joy == nil {
		err := sdl.GetError()
		sdl.Quit()
		return nil, fmt.Errorf("%w: open joystick %d: %v", device.ErrUnavailable, o.DeviceIndex, err)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Opened SDL joystick", "index", o.DeviceIndex, "name", joy.Name(), "axes", joy.NumAxes(), "buttons", joy.NumButtons())
	return &Source{joy: joy, mapping: o.Mapping}, nil
}

func (s *Source) ReadSnapshot() (protocol.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joy == nil {
		return protocol.Snapshot{}, fmt.Errorf("%w: joystick closed", device.ErrUnavailable)
	}
	sdl.JoystickUpdate()
	if !s.joy.Attached() {
		return protocol.Snapshot{}, fmt.Errorf("%w: joystick detached", device.ErrUnavailable)
	}
	return s.mapping.Snapshot(joyState{s.joy}), nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joy != nil {
		s.joy.Close()
		s.joy = nil
		sdl.Quit()
	}
	return nil
}

type joyState struct{ joy *sdl.Joystick }

func (j joyState) RawAxis(i int) (int, bool) {
	if i < 0 || i >= j.joy.NumAxes() {
		return 0, false
	}
	return int(j.joy.Axis(i)), true
}

func (j joyState) RawButton(i int) bool {
	if i < 0 || i >= j.joy.NumButtons() {
		return false
	}
	return j.joy.Button(i) != 0
}
