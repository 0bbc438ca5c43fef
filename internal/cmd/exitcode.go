package cmd

import (
	"errors"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/relay"
)

// Process exit statuses.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitTransportBind     = 3
	ExitDeviceUnavailable = 4
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, relay.ErrTransportBind):
		return ExitTransportBind
	case errors.Is(err, device.ErrUnavailable):
		return ExitDeviceUnavailable
	default:
		return ExitFailure
	}
}
