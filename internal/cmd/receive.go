package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/failsafe"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/log"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/server/api"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/server/api/handler"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/relay"
)

// Receive accepts frames and drives a virtual controller with failsafe.
type Receive struct {
	Listen          string        `help:"UDP listen address" default:"0.0.0.0:5005" env:"DECKRC_LISTEN"`
	Timeout         time.Duration `help:"Time without frames before the sticks are neutralized" default:"1s" env:"DECKRC_TIMEOUT"`
	TickRate        int           `help:"Actuation rate in Hz" default:"60" env:"DECKRC_TICK_RATE"`
	Sink            string        `help:"Virtual controller backend (uinput, viiper, log)" default:"uinput" env:"DECKRC_SINK"`
	DPad            string        `name:"dpad" help:"D-pad exposure for uinput: hat or buttons" enum:"hat,buttons" default:"hat" env:"DECKRC_DPAD"`
	NeutralTriggers bool          `help:"Also zero the triggers when the link is stale" env:"DECKRC_NEUTRAL_TRIGGERS"`
	DeviceName      string        `help:"Name of the virtual controller" default:"deckrc virtual controller" env:"DECKRC_DEVICE_NAME"`
	ViiperAddr      string        `help:"VIIPER API address for the viiper sink" default:"localhost:3242" env:"DECKRC_VIIPER_ADDR"`
	ViiperDevice    string        `help:"VIIPER device type to emulate" enum:"xbox360,steamdeck" default:"xbox360" env:"DECKRC_VIIPER_DEVICE"`

	API api.ServerConfig `embed:"" prefix:"api."`
}

// Run is called by Kong when the receive command is executed.
func (r *Receive) Run(logger *slog.Logger, rawLogger log.RawLogger, info BuildInfo) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.run(ctx, logger, rawLogger, info)
}

func (r *Receive) run(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, info BuildInfo) error {
	if r.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", r.Timeout)
	}

	sink, err := device.OpenSink(r.Sink, device.SinkOptions{
		Name:         r.DeviceName,
		DPad:         device.DPadMode(r.DPad),
		ViiperAddr:   r.ViiperAddr,
		ViiperDevice: r.ViiperDevice,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	machine := failsafe.New(r.Timeout, failsafe.SystemClock()).
		WithPolicy(failsafe.Policy{NeutralTriggers: r.NeutralTriggers})

	logger.Info("Starting deckrc receiver", "listen", r.Listen, "sink", r.Sink, "timeout", r.Timeout, "tickRate", r.TickRate)
	rx, err := relay.Listen(relay.ReceiverConfig{Listen: r.Listen, TickRate: r.TickRate}, machine, sink, logger, rawLogger)
	if err != nil {
		_ = sink.Close()
		return err
	}
	defer rx.Close()

	if r.API.Addr != "" {
		apiSrv := api.New(r.API, logger)
		apiSrv.Router().Register("ping", handler.Ping(info.Version))
		apiSrv.Router().Register("status", handler.Status(rx))
		if err := apiSrv.Start(); err != nil {
			return fmt.Errorf("status api: %w", err)
		}
		defer apiSrv.Close()
	}

	return rx.Run(ctx)
}
