//go:build windows

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath  = `Software\Microsoft\Windows\CurrentVersion\Run`
	runValueKey = "deckrc"
)

// install registers the receiver in the per-user Run key and starts it.
// A previous entry is overwritten; an already running receiver keeps its
// port until it exits.
func install(logger *slog.Logger, args []string) error {
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}

	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(runValueKey, autorunCommand(exePath, args)); err != nil {
		return fmt.Errorf("write run key: %w", err)
	}

	if err := exec.Command(exePath, args...).Start(); err != nil {
		return fmt.Errorf("start receiver: %w", err)
	}

	logger.Info("deckrc receiver registered for Windows autorun", "exe", exePath, "args", args)
	return nil
}

func uninstall(logger *slog.Logger) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		logger.Info("deckrc autorun entry not present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(runValueKey); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run key value: %w", err)
	}

	logger.Info("deckrc autorun entry removed; stop a running receiver with Ctrl+C or Task Manager")
	return nil
}

func autorunCommand(exe string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, strconv.Quote(exe))
	for _, a := range args {
		if strings.ContainsAny(a, " \t\"") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
