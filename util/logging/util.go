package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

func Setup(
	output io.Writer,
	level zerolog.Level,
	format string,
	forceColor bool,
) *Logging {
	o := output
	if format == "terminal" {
		useColor := forceColor
		if f, ok := output.(*os.File); ok && !useColor {
			useColor = isatty.IsTerminal(f.Fd())
		}

		o = zerolog.ConsoleWriter{
			Out:        o,
			TimeFormat: time.RFC3339Nano,
			NoColor:    !useColor,
		}
	}

	z := zerolog.New(o).With().Timestamp()

	if level <= zerolog.DebugLevel {
		z = z.Caller()
	}

	return NewLogging(nil).SetLogger(z.Logger().Level(level))
}

func ParseLevel(s string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level, %q", s)
	}

	return lvl, nil
}

// Output opens f for appending; writes go through a non-blocking diode buffer.
func Output(f string) (io.Writer, error) {
	out, err := os.OpenFile(filepath.Clean(f), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644) //nolint:gosec //...
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file, %q", f)
	}

	return diode.NewWriter(out, 1000, 0, nil), nil //nolint:gomnd //...
}
