package signaler

import (
	"context"
	"sync"
	"time"

	"github.com/spikeekips/itimer/util"
	"github.com/spikeekips/itimer/util/logging"
)

// PeriodicTimer always auto-resets. Each start runs one wait loop; the loop
// waits for the next tick, raises the elapsed signal and waits again until its
// context is canceled.
type PeriodicTimer struct {
	*base
	daemon *util.ContextDaemon
	sync.Mutex
	closed bool
}

// NewDefaultPeriodicTimer creates PeriodicTimer with DefaultInterval.
func NewDefaultPeriodicTimer(timeSource TimeSource) (*PeriodicTimer, error) {
	return NewPeriodicTimer(DefaultInterval, timeSource)
}

func NewPeriodicTimer(interval time.Duration, timeSource TimeSource) (*PeriodicTimer, error) {
	b, err := newBase("periodic-timer", interval, true, timeSource)
	if err != nil {
		return nil, err
	}

	t := &PeriodicTimer{base: b}
	t.daemon = util.NewContextDaemon("periodic-timer-"+b.id, t.loop)

	return t, nil
}

func (t *PeriodicTimer) SetLogging(l *logging.Logging) *logging.Logging {
	_ = t.daemon.SetLogging(l)

	return t.base.SetLogging(l)
}

// Enabled is false once the context of the running loop is canceled, either by
// Stop or by the context given to StartWithContext.
func (t *PeriodicTimer) Enabled() bool {
	return t.daemon.IsStarted()
}

func (t *PeriodicTimer) Start() error {
	return t.StartWithContext(context.Background(), t.Interval())
}

func (t *PeriodicTimer) StartWithInterval(interval time.Duration) error {
	return t.StartWithContext(context.Background(), interval)
}

// StartWithContext cancels the running loop and starts a new one bound to
// ctx. The new loop does not wait for its first tick before the previous loop
// has returned.
func (t *PeriodicTimer) StartWithContext(ctx context.Context, interval time.Duration) error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return ErrClosed.Call()
	}

	switch err := ValidateInterval(interval); {
	case err != nil:
		return err
	case interval < 1:
		return ErrRange.Errorf("periodic timer needs positive interval")
	}

	if err := t.setInterval(interval); err != nil {
		return err
	}

	t.daemon.Restart(ctx)

	t.Log().Debug().Stringer("interval", interval).Msg("started")

	return nil
}

func (t *PeriodicTimer) Stop() error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return nil
	}

	t.stop()

	return nil
}

func (t *PeriodicTimer) Close() error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return nil
	}

	t.stop()
	t.closed = true

	t.Log().Debug().Msg("closed")

	return nil
}

func (t *PeriodicTimer) stop() {
	if err := t.daemon.Stop(); err == nil {
		t.Log().Debug().Msg("stopped")
	}
}

func (t *PeriodicTimer) loop(ctx context.Context) error {
	ticker := time.NewTicker(t.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if ctx.Err() != nil {
			return nil
		}

		t.raise(t, NewTimerSignal(t.timeSource()))
	}
}
