package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/cmd"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/config"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/configpaths"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/log"

	_ "github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device/joystick" // Register sources and sinks
	_ "github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device/viiper"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("deckrc"),
		kong.Description(Description()),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		os.Exit(cmd.ExitFailure)
	}

	rawLogger := setupRawLogger(&cli, logger, &closeFiles)

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))
	ctx.Bind(cmd.BuildInfo{Version: Version, Commit: Commit, Date: Date})
	ctx.Bind(cmd.ConfigSources{JSON: jsonPaths, YAML: yamlPaths, TOML: tomlPaths})

	err = ctx.Run()
	for _, c := range closeFiles {
		_ = c.Close()
	}
	if err != nil {
		logger.Error("deckrc stopped", "command", ctx.Command(), "error", err)
		os.Exit(cmd.ExitCode(err))
	}
}

func findUserConfig(args []string) string {
	for i, a := range args {
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("DECKRC_CONFIG")
}

func setupRawLogger(cli *config.CLI, logger *slog.Logger, closeFiles *[]io.Closer) log.RawLogger {
	if cli.Log.RawFile != "" {
		f, err := os.OpenFile(cli.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cli.Log.RawFile, "error", err)
			return log.NewRaw(nil)
		}
		*closeFiles = append(*closeFiles, f)
		return log.NewRaw(f)
	}
	if cli.Log.Level == "trace" {
		return log.NewRaw(os.Stdout)
	}
	return log.NewRaw(nil)
}
