//go:build !linux && !windows

package cmd

import (
	"errors"
	"log/slog"
)

var errInstallUnsupported = errors.New("install is supported on Linux (systemd) and Windows only")

func install(*slog.Logger, []string) error { return errInstallUnsupported }

func uninstall(*slog.Logger) error { return errInstallUnsupported }
