package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Install sets up the receiver to start automatically.
type Install struct {
	Args []string `arg:"" optional:"" passthrough:"" help:"Arguments appended to 'deckrc receive' (e.g. --sink viiper)"`
}

// Uninstall removes the receiver startup configuration.
type Uninstall struct{}

func (c *Install) Run(logger *slog.Logger) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	if strings.Contains(exe, "go-build") {
		return errors.New("cannot install from 'go run'")
	}

	return install(logger, receiveCommand(c.Args))
}

func (c *Uninstall) Run(logger *slog.Logger) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	if strings.Contains(exe, "go-build") {
		return errors.New("cannot uninstall from 'go run'")
	}

	return uninstall(logger)
}

func receiveCommand(extra []string) []string {
	return append([]string{"receive"}, extra...)
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}

	return filepath.Abs(exe)
}
