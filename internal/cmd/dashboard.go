package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/apiclient"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/dashboard"
)

// Dashboard shows controller state live in the terminal.
type Dashboard struct {
	Remote      string `help:"Receiver status API address (host:port); shows the receiver's view"`
	Source      string `help:"Local controller source shown when --remote is not set" default:"synthetic"`
	DeviceIndex int    `help:"Controller index for the source" default:"0"`
	Refresh     int    `help:"Refresh rate in Hz" default:"60"`
}

// Run is called by Kong when the dashboard command is executed.
func (d *Dashboard) Run(logger *slog.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("dashboard needs an interactive terminal")
	}
	refresh := d.Refresh
	if refresh <= 0 {
		refresh = 60
	}
	interval := time.Second / time.Duration(refresh)

	var model dashboard.Model
	if d.Remote != "" {
		model = dashboard.New("deckrc receiver "+d.Remote, dashboard.RemotePoller(apiclient.New(d.Remote)), interval)
	} else {
		src, err := device.OpenSource(d.Source, device.SourceOptions{
			DeviceIndex: d.DeviceIndex,
			Mapping:     device.SteamDeckMapping,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		defer src.Close()
		model = dashboard.New(fmt.Sprintf("deckrc source %s #%d", d.Source, d.DeviceIndex), dashboard.LocalPoller(src), interval)
	}

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
