package device

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// DPadMode selects how a sink exposes the D-pad.
type DPadMode string

const (
	DPadHatMode     DPadMode = "hat"
	DPadButtonsMode DPadMode = "buttons"
)

// SourceOptions configures a source created through the registry.
type SourceOptions struct {
	DeviceIndex int
	Mapping     Mapping
	Logger      *slog.Logger
}

// SinkOptions configures a sink created through the registry.
type SinkOptions struct {
	Name         string
	DPad         DPadMode
	ViiperAddr   string
	ViiperDevice string
	Logger       *slog.Logger
}

type (
	SourceFactory func(o SourceOptions) (Source, error)
	SinkFactory   func(o SinkOptions) (Sink, error)
)

var (
	regMu   sync.RWMutex
	sources = map[string]SourceFactory{}
	sinks   = map[string]SinkFactory{}
)

// RegisterSource makes a source available under name. Backends call it from
// their init function.
func RegisterSource(name string, f SourceFactory) {
	regMu.Lock()
	defer regMu.Unlock()
	sources[name] = f
}

// RegisterSink makes a sink available under name.
func RegisterSink(name string, f SinkFactory) {
	regMu.Lock()
	defer regMu.Unlock()
	sinks[name] = f
}

// OpenSource creates the named source.
func OpenSource(name string, o SourceOptions) (Source, error) {
	regMu.RLock()
	f, ok := sources[name]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown source %q (available: %v)", name, SourceNames())
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return f(o)
}

// OpenSink creates the named sink.
func OpenSink(name string, o SinkOptions) (Sink, error) {
	regMu.RLock()
	f, ok := sinks[name]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sink %q (available: %v)", name, SinkNames())
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.DPad == "" {
		o.DPad = DPadHatMode
	}
	return f(o)
}

// SourceNames lists registered sources in sorted order.
func SourceNames() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// SinkNames lists registered sinks in sorted order.
func SinkNames() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(sinks))
	for n := range sinks {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
