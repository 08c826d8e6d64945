package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	itimerlogging "github.com/spikeekips/itimer/util/logging"
)

var (
	logging *itimerlogging.Logging
	log     *zerolog.Logger
)

type LogFlags struct {
	Level      string `name:"log.level" help:"log level" default:"info"`
	Format     string `name:"log.format" help:"log format" enum:"terminal,json" default:"terminal"`
	File       string `name:"log.file" help:"log file; stderr if empty" type:"path"`
	ForceColor bool   `name:"log.force-color" help:"force colored terminal log"`
}

func main() {
	var cli struct {
		Run runCommand `cmd:"" help:"run signalers and print every signal"`
		LogFlags `embed:""`
	}

	kctx := kong.Parse(&cli, kong.Name("itimer-example"), kong.Description("signaler demo"))

	if err := setupLogging(cli.LogFlags); err != nil {
		kctx.FatalIfErrorf(err)
	}

	log.Debug().Str("command", kctx.Command()).Msg("start command")

	err := func() error {
		defer log.Debug().Msg("stopped")

		return kctx.Run()
	}()
	if err != nil {
		log.Error().Err(err).Msg("stopped by error")
	}

	kctx.FatalIfErrorf(err)
}

func setupLogging(flags LogFlags) error {
	level, err := itimerlogging.ParseLevel(flags.Level)
	if err != nil {
		return err
	}

	output := os.Stderr

	switch {
	case len(flags.File) > 0:
		w, err := itimerlogging.Output(flags.File)
		if err != nil {
			return err
		}

		logging = itimerlogging.Setup(w, level, flags.Format, flags.ForceColor)
	default:
		logging = itimerlogging.Setup(output, level, flags.Format, flags.ForceColor)
	}

	log = itimerlogging.NewLogging(func(lctx zerolog.Context) zerolog.Context {
		return lctx.Str("module", "main")
	}).SetLogging(logging).Log()

	return nil
}
