// Package config defines the CLI structure and configuration for deckrc.
package config

import (
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"DECKRC_LOG_LEVEL"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"DECKRC_LOG_FILE"`
	RawFile string `help:"Hex dump of every datagram to this file (default: none; stdout at trace level)" env:"DECKRC_LOG_RAW_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Config string `help:"Configuration file (JSON, YAML or TOML by extension)" type:"path" env:"DECKRC_CONFIG"`
	Log    `embed:"" prefix:"log."`

	Transmit  cmd.Transmit   `cmd:"" help:"Read the local controller and stream it to a receiver"`
	Receive   cmd.Receive    `cmd:"" help:"Receive controller frames and drive a virtual controller"`
	Dashboard cmd.Dashboard  `cmd:"" help:"Show controller state live in the terminal"`
	Show      cmd.ShowConfig `cmd:"" name:"config" help:"Print the effective configuration"`
	Install   cmd.Install    `cmd:"" help:"Start the receiver automatically at boot"`
	Uninstall cmd.Uninstall  `cmd:"" help:"Remove the receiver autostart"`
	Version   cmd.Version    `cmd:"" help:"Print version information"`
}
