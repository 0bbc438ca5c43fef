package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/log"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/relay"
)

// Transmit reads the local controller and streams it to a receiver.
type Transmit struct {
	Dest              string `help:"Receiver address (host:port)" default:"127.0.0.1:5005" env:"DECKRC_DEST"`
	Rate              int    `help:"Frames per second" default:"60" env:"DECKRC_TX_RATE"`
	Source            string `help:"Controller source (joystick, sdl, synthetic)" default:"joystick" env:"DECKRC_SOURCE"`
	DeviceIndex       int    `help:"Controller index for the source" default:"0" env:"DECKRC_DEVICE_INDEX"`
	AxisMap           []int  `help:"Raw axis index for LX,LY,RX,RY,LT,RT (-1 unmaps)" sep:","`
	ButtonMap         []int  `help:"Raw button index for A,B,X,Y,L1,R1,Up,Down,Left,Right (-1 unmaps)" sep:","`
	FullRangeTriggers bool   `help:"Rescale triggers that rest at -32768 onto 0..32767" env:"DECKRC_FULL_RANGE_TRIGGERS"`
	StartSequence     uint32 `help:"Sequence number of the first frame" default:"0" hidden:""`
}

// Run is called by Kong when the transmit command is executed.
func (t *Transmit) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return t.run(ctx, logger, rawLogger)
}

func (t *Transmit) run(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	mapping, err := device.ParseMapping(t.AxisMap, t.ButtonMap)
	if err != nil {
		return err
	}
	mapping.FullRangeTriggers = t.FullRangeTriggers
	src, err := device.OpenSource(t.Source, device.SourceOptions{
		DeviceIndex: t.DeviceIndex,
		Mapping:     mapping,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting deckrc transmitter", "source", t.Source, "device", t.DeviceIndex, "dest", t.Dest)
	tx, err := relay.Dial(relay.TransmitterConfig{
		Dest:          t.Dest,
		Rate:          t.Rate,
		StartSequence: t.StartSequence,
	}, src, logger, rawLogger)
	if err != nil {
		_ = src.Close()
		return err
	}
	defer tx.Close()

	return tx.Run(ctx)
}
