package signaler

import (
	"sync"
	"time"
)

// ThreadingTimer fires on the runtime timer goroutines through time.AfterFunc.
// Handlers of consecutive fires may run in parallel when a handler takes
// longer than the interval.
type ThreadingTimer struct {
	*base
	due   time.Time
	timer *time.Timer
	sync.Mutex
	enabled bool
	closed  bool
}

func NewThreadingTimer(interval time.Duration, autoReset bool, timeSource TimeSource) (*ThreadingTimer, error) {
	b, err := newBase("threading-timer", interval, autoReset, timeSource)
	if err != nil {
		return nil, err
	}

	t := &ThreadingTimer{base: b}

	t.timer = time.AfterFunc(MaxInterval, t.fire)
	_ = t.timer.Stop()

	return t, nil
}

func (t *ThreadingTimer) Enabled() bool {
	t.Lock()
	defer t.Unlock()

	return t.enabled
}

func (t *ThreadingTimer) Start() error {
	t.Lock()
	defer t.Unlock()

	return t.arm()
}

func (t *ThreadingTimer) StartWithInterval(interval time.Duration) error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return ErrClosed.Call()
	}

	if err := t.setInterval(interval); err != nil {
		return err
	}

	return t.arm()
}

func (t *ThreadingTimer) Stop() error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return nil
	}

	_ = t.timer.Stop()
	t.enabled = false

	t.Log().Debug().Msg("stopped")

	return nil
}

func (t *ThreadingTimer) Close() error {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return nil
	}

	_ = t.timer.Stop()
	t.enabled = false
	t.closed = true

	t.Log().Debug().Msg("closed")

	return nil
}

func (t *ThreadingTimer) arm() error {
	if t.closed {
		return ErrClosed.Call()
	}

	interval := t.Interval()

	_ = t.timer.Stop()
	t.due = time.Now().Add(interval)
	_ = t.timer.Reset(interval)
	t.enabled = true

	t.Log().Debug().Stringer("interval", interval).Bool("auto_reset", t.AutoReset()).Msg("started")

	return nil
}

// fire drops fires scheduled before Stop and fires of a previous start which
// reach the lock before the current deadline; a dispatch which already passed
// the check still completes after Stop returns.
func (t *ThreadingTimer) fire() {
	if !t.rearm() {
		return
	}

	t.raise(t, NewTimerSignal(t.timeSource()))
}

func (t *ThreadingTimer) rearm() bool {
	t.Lock()
	defer t.Unlock()

	if !t.enabled {
		return false
	}

	now := time.Now()
	if now.Before(t.due) {
		return false
	}

	switch interval := t.Interval(); {
	case t.AutoReset() && interval > 0:
		t.due = now.Add(interval)
		_ = t.timer.Reset(interval)
	default:
		t.enabled = false
	}

	return true
}
