//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	unitName = "deckrc-receive.service"
	unitDir  = "/etc/systemd/system"
)

var systemctl = func(args ...string) error {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func install(logger *slog.Logger, args []string) error {
	if os.Geteuid() != 0 {
		return errors.New("install must run as root to write " + unitDir)
	}
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}

	path := filepath.Join(unitDir, unitName)
	if err := os.WriteFile(path, []byte(systemdUnit(exePath, args)), 0o644); err != nil {
		return err
	}
	if err := systemctl("daemon-reload"); err != nil {
		return err
	}
	if err := systemctl("enable", "--now", unitName); err != nil {
		return err
	}

	logger.Info("deckrc receiver installed as systemd service", "unit", path, "exe", exePath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	if os.Geteuid() != 0 {
		return errors.New("uninstall must run as root")
	}
	path := filepath.Join(unitDir, unitName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("deckrc service not installed")
		return nil
	}
	if err := systemctl("disable", "--now", unitName); err != nil {
		logger.Warn("failed to stop service", "error", err)
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	if err := systemctl("daemon-reload"); err != nil {
		return err
	}

	logger.Info("deckrc service removed", "unit", path)
	return nil
}

// systemdUnit renders the service unit. The receiver needs /dev/uinput, so it
// runs as root and waits for the network.
func systemdUnit(exe string, args []string) string {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, strconv.Quote(exe))
	for _, a := range args {
		if strings.ContainsAny(a, " \t\"\\") {
			a = strconv.Quote(a)
		}
		quoted = append(quoted, a)
	}

	var b strings.Builder
	b.WriteString("[Unit]\n")
	b.WriteString("Description=deckrc controller relay receiver\n")
	b.WriteString("Wants=network-online.target\n")
	b.WriteString("After=network-online.target\n\n")
	b.WriteString("[Service]\n")
	b.WriteString("ExecStartPre=-/sbin/modprobe uinput\n")
	fmt.Fprintf(&b, "ExecStart=%s\n", strings.Join(quoted, " "))
	b.WriteString("Restart=on-failure\n")
	b.WriteString("RestartSec=2\n\n")
	b.WriteString("[Install]\n")
	b.WriteString("WantedBy=multi-user.target\n")
	return b.String()
}
