package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spikeekips/itimer/signaler"
	"github.com/spikeekips/itimer/util"
	"github.com/spikeekips/itimer/util/localtime"
	itimerlogging "github.com/spikeekips/itimer/util/logging"
	"golang.org/x/sync/errgroup"
)

type runCommand struct {
	out        signalWriter
	dispatcher *signaler.Dispatcher
	timeSource signaler.TimeSource
	Config     string        `help:"timers config file" type:"existingfile" placeholder:"FILE"`
	NTPServer  string        `name:"ntp-server" help:"stamp signals with the time synced to this NTP server"`
	Output     string        `help:"output format" enum:"text,json" default:"text"`
	Interval   time.Duration `help:"default interval of real timers; 0 uses the built-in default of system and periodic timers" default:"1s"`
	Duration   time.Duration `help:"stop after this duration" default:"5s"`
	NTPPort    int           `name:"ntp-port" help:"NTP server port" default:"123"`
}

type namedSignaler struct {
	signaler.Signaler
	kind string
}

func (cmd *runCommand) Run() error {
	c, err := loadTimersConfig(cmd.Config, cmd.Interval)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd.out = newSignalWriter(cmd.Output, os.Stdout)

	if err := cmd.prepareTimeSource(ctx); err != nil {
		return err
	}

	cmd.dispatcher = signaler.NewDispatcher(100) //nolint:gomnd //...
	_ = cmd.dispatcher.SetLogging(logging)

	if err := cmd.dispatcher.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start dispatcher")
	}

	defer func() {
		_ = cmd.dispatcher.Stop()
	}()

	signalers, err := cmd.newSignalers(c)
	if err != nil {
		return err
	}

	defer func() {
		for i := range signalers {
			if err := signalers[i].Close(); err != nil {
				log.Error().Err(err).Str("kind", signalers[i].kind).Msg("failed to close")
			}
		}
	}()

	chainTestSignalers(signalers)

	log.Info().Time("now", cmd.timeSource()).Msg("start")

	if err := startSignalers(ctx, signalers); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(cmd.Duration):
	}

	for i := range signalers {
		if err := signalers[i].Stop(); err != nil {
			log.Error().Err(err).Str("kind", signalers[i].kind).Msg("failed to stop")
		}
	}

	log.Info().Time("now", cmd.timeSource()).Msg("stop")

	return nil
}

func (cmd *runCommand) prepareTimeSource(ctx context.Context) error {
	if len(cmd.NTPServer) < 1 {
		cmd.timeSource = signaler.DefaultTimeSource()

		return nil
	}

	ts, err := localtime.NewTimeSyncer(cmd.NTPServer, cmd.NTPPort, time.Minute*10) //nolint:gomnd //...
	if err != nil {
		return err
	}

	_ = ts.SetLogging(logging)

	if err := ts.Start(ctx); err != nil {
		return err
	}

	localtime.SetDefaultTimeSyncer(ts)

	log.Debug().Stringer("offset", ts.Offset()).Msg("time synced")

	cmd.timeSource = localtime.Now

	return nil
}

func (cmd *runCommand) newSignalers(c timersConfig) ([]namedSignaler, error) {
	signalers := make([]namedSignaler, len(c.Timers))

	for i := range c.Timers {
		s, err := cmd.newSignaler(c.Timers[i])
		if err != nil {
			for j := range signalers[:i] {
				_ = signalers[j].Close()
			}

			return nil, errors.WithMessagef(err, "%dth timer", i)
		}

		if l, ok := s.(itimerlogging.Logger); ok {
			_ = l.SetLogging(logging)
		}

		signalers[i] = namedSignaler{Signaler: s, kind: c.Timers[i].Kind}

		kind := c.Timers[i].Kind

		if _, err := s.OnElapsed(func(source signaler.Signaler, e signaler.ElapsedSignal) {
			if err := cmd.out.write(kind, source, e); err != nil {
				log.Error().Err(err).Msg("failed to write signal")
			}
		}); err != nil {
			return nil, err
		}
	}

	return signalers, nil
}

func (cmd *runCommand) newSignaler(c timerConfig) (signaler.Signaler, error) {
	switch c.Kind {
	case kindThreading:
		return signaler.NewThreadingTimer(c.Interval, c.autoReset(), cmd.timeSource)
	case kindSystem:
		if c.Interval == 0 {
			return signaler.NewDefaultSystemTimer(c.autoReset(), cmd.timeSource, cmd.dispatcher)
		}

		return signaler.NewSystemTimer(c.Interval, c.autoReset(), cmd.timeSource, cmd.dispatcher)
	case kindPeriodic:
		if c.Interval == 0 {
			return signaler.NewDefaultPeriodicTimer(cmd.timeSource)
		}

		return signaler.NewPeriodicTimer(c.Interval, cmd.timeSource)
	case kindTest:
		return signaler.NewTestSignalerWithInterval(c.Interval, c.autoReset(), cmd.timeSource, c.RequireStart)
	default:
		return nil, errors.Errorf("unknown kind, %q", c.Kind)
	}
}

// chainTestSignalers ticks every test signaler whenever the first real timer
// fires.
func chainTestSignalers(signalers []namedSignaler) {
	var source signaler.Signaler

	var tests []*signaler.TestSignaler

	for i := range signalers {
		switch t := signalers[i].Signaler.(type) {
		case *signaler.TestSignaler:
			tests = append(tests, t)
		default:
			if source == nil {
				source = t
			}
		}
	}

	if source == nil || len(tests) < 1 {
		return
	}

	_, _ = source.OnElapsed(func(signaler.Signaler, signaler.ElapsedSignal) {
		for i := range tests {
			if err := tests[i].Tick(); err != nil {
				log.Error().Err(err).Msg("failed to tick test signaler")
			}
		}
	})
}

func startSignalers(ctx context.Context, signalers []namedSignaler) error {
	eg, _ := errgroup.WithContext(ctx)

	for i := range signalers {
		s := signalers[i]

		eg.Go(func() error {
			return errors.WithMessagef(s.Start(), "failed to start %q", s.kind)
		})
	}

	return eg.Wait()
}

type signalWriter interface {
	write(kind string, source signaler.Signaler, e signaler.ElapsedSignal) error
}

type textSignalWriter struct {
	w io.Writer
	sync.Mutex
}

func (w *textSignalWriter) write(kind string, source signaler.Signaler, e signaler.ElapsedSignal) error {
	w.Lock()
	defer w.Unlock()

	s := fmt.Sprintf("%-10s %s %s", kind, source.ID(), util.RFC3339(e.SignalTime()))

	if t, ok := e.(signaler.TickSignal); ok {
		s += fmt.Sprintf(" tick=%d", t.TickCount())
	}

	_, err := fmt.Fprintln(w.w, s)

	return errors.WithStack(err)
}

type jsonSignal struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	SignalTime string `json:"signal_time"`
	TickCount  int    `json:"tick_count,omitempty"`
}

type jsonSignalWriter struct {
	w *util.JSONLineWriter
	sync.Mutex
}

func (w *jsonSignalWriter) write(kind string, source signaler.Signaler, e signaler.ElapsedSignal) error {
	w.Lock()
	defer w.Unlock()

	j := jsonSignal{
		Kind:       kind,
		ID:         source.ID(),
		SignalTime: util.RFC3339(e.SignalTime()),
	}

	if t, ok := e.(signaler.TickSignal); ok {
		j.TickCount = t.TickCount()
	}

	return w.w.Write(j)
}

func newSignalWriter(format string, w io.Writer) signalWriter {
	if format == "json" {
		return &jsonSignalWriter{w: util.NewJSONLineWriter(w)}
	}

	return &textSignalWriter{w: w}
}
