package signaler

import (
	"context"
	"sync"
	"time"

	"github.com/spikeekips/itimer/util"
	"github.com/spikeekips/itimer/util/logging"
)

// SyncContext delivers a callback on the goroutine it owns.
type SyncContext interface {
	Invoke(func()) error
}

// SystemTimer fires from a time.Ticker loop. When a SyncContext is set, the
// elapsed handlers run through it instead of on the loop goroutine.
type SystemTimer struct {
	*base
	daemon      *util.ContextDaemon
	ticker      *time.Ticker
	syncContext *util.Locked[SyncContext]
	lastTick    *util.Locked[time.Time]
	sync.Mutex
	closed bool
}

// NewDefaultSystemTimer creates SystemTimer with DefaultInterval.
func NewDefaultSystemTimer(autoReset bool, timeSource TimeSource, syncContext SyncContext) (*SystemTimer, error) {
	return NewSystemTimer(DefaultInterval, autoReset, timeSource, syncContext)
}

// NewSystemTimer creates SystemTimer. When timeSource is nil, each signal is
// stamped with the tick time of the underlying ticker and TimeSource returns
// the latest tick time; syncContext may be nil.
func NewSystemTimer(
	interval time.Duration,
	autoReset bool,
	timeSource TimeSource,
	syncContext SyncContext,
) (*SystemTimer, error) {
	b, err := newBase("system-timer", interval, autoReset, timeSource)
	if err != nil {
		return nil, err
	}

	t := &SystemTimer{
		base:        b,
		ticker:      time.NewTicker(MaxInterval),
		syncContext: util.NewLocked(syncContext),
		lastTick:    util.NewLocked(time.Time{}),
	}
	t.ticker.Stop()

	if timeSource == nil {
		t.timeSource = t.tickTime
	}

	t.daemon = util.NewContextDaemon("system-timer-"+b.id, t.loop)

	return t, nil
}

func (t *SystemTimer) SetLogging(l *logging.Logging) *logging.Logging {
	_ = t.daemon.SetLogging(l)

	return t.base.SetLogging(l)
}

func (t *SystemTimer) SyncContext() SyncContext {
	return t.syncContext.Value()
}

func (t *SystemTimer) SetSyncContext(sc SyncContext) *SystemTimer {
	_ = t.syncContext.SetValue(sc)

	return t
}

// Enabled stays true while the handlers of a non auto-reset fire are running.
func (t *SystemTimer) Enabled() bool {
	return t.daemon.IsStarted()
}

func (t *SystemTimer) Start() error {
	t.Lock()
	defer t.Unlock()

	return t.start()
}

func (t *SystemTimer) StartWithInterval(interval time.Duration) error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return ErrClosed.Call()
	}

	if err := t.setInterval(interval); err != nil {
		return err
	}

	return t.start()
}

func (t *SystemTimer) Stop() error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return nil
	}

	t.stop()

	return nil
}

func (t *SystemTimer) Close() error {
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

func (t *SystemTimer) start() error {
	if t.closed {
		return ErrClosed.Call()
	}

	interval := t.Interval()
	if interval < 1 {
		return ErrRange.Errorf("system timer needs positive interval")
	}

	t.daemon.Restart(context.Background())

	t.Log().Debug().Stringer("interval", interval).Bool("auto_reset", t.AutoReset()).Msg("started")

	return nil
}

func (t *SystemTimer) stop() {
	_ = t.daemon.Stop()
	t.ticker.Stop()

	t.Log().Debug().Msg("stopped")
}

func (t *SystemTimer) loop(ctx context.Context) error {
	select {
	case <-t.ticker.C:
	default:
	}

	t.ticker.Reset(t.Interval())
	defer t.ticker.Stop()

	for {
		var tick time.Time

		select {
		case <-ctx.Done():
			return nil
		case tick = <-t.ticker.C:
		}

		if ctx.Err() != nil {
			return nil
		}

		if !t.AutoReset() {
			t.ticker.Stop()
		}

		t.fire(tick)

		if !t.AutoReset() {
			return nil
		}
	}
}

func (t *SystemTimer) fire(tick time.Time) {
	_ = t.lastTick.SetValue(tick)

	e := NewTimerSignal(t.timeSource())

	sc := t.SyncContext()
	if sc == nil {
		t.raise(t, e)

		return
	}

	if err := sc.Invoke(func() { t.raise(t, e) }); err != nil {
		t.Log().Error().Err(err).Object("signal", e).Msg("failed to invoke through sync context")
	}
}

// tickTime returns the time of the latest tick, or the current time before the
// first tick.
func (t *SystemTimer) tickTime() time.Time {
	if i := t.lastTick.Value(); !i.IsZero() {
		return i
	}

	return time.Now()
}
