package signaler

import (
	"sync/atomic"
	"time"
)

type StateHandler func(*TestSignaler)

// TestSignaler never fires by itself. Signals are raised synchronously on the
// caller's goroutine by the Tick methods, so tests can drive code depending on
// Signaler without real time.
type TestSignaler struct {
	tickCount  int64
	startCount int64
	stopCount  int64
	*base
	started      *handlers[StateHandler]
	stopped      *handlers[StateHandler]
	enabled      int32
	requireStart bool
}

// NewTestSignaler creates TestSignaler with zero interval and auto reset
// off. With requireStart, ticking before Start fails with ErrInvalidState.
func NewTestSignaler(timeSource TimeSource, requireStart bool) *TestSignaler {
	t, _ := NewTestSignalerWithInterval(0, false, timeSource, requireStart)

	return t
}

// NewTestSignalerWithInterval accepts interval and autoReset only to report
// them back; they never change how TestSignaler behaves.
func NewTestSignalerWithInterval(
	interval time.Duration,
	autoReset bool,
	timeSource TimeSource,
	requireStart bool,
) (*TestSignaler, error) {
	b, err := newBase("test-signaler", interval, autoReset, timeSource)
	if err != nil {
		return nil, err
	}

	return &TestSignaler{
		base:         b,
		started:      newHandlers[StateHandler](),
		stopped:      newHandlers[StateHandler](),
		requireStart: requireStart,
	}, nil
}

func (t *TestSignaler) OnStarted(h StateHandler) (func(), error) {
	if h == nil {
		return nil, ErrNullArgument.Errorf("empty started handler")
	}

	return t.started.add(h), nil
}

func (t *TestSignaler) OnStopped(h StateHandler) (func(), error) {
	if h == nil {
		return nil, ErrNullArgument.Errorf("empty stopped handler")
	}

	return t.stopped.add(h), nil
}

// Tick raises one signal stamped by the time source.
func (t *TestSignaler) Tick() error {
	return t.tick(t.timeSource())
}

func (t *TestSignaler) TickAt(signalTime time.Time) error {
	return t.tick(signalTime)
}

// TickN raises count signals; the i'th signal, starting from 0, is stamped by
// f(i), or by the time source when f is nil.
func (t *TestSignaler) TickN(count int, f func(int) time.Time) error {
	if count < 0 {
		return ErrRange.Errorf("negative tick count, %d", count)
	}

	for i := 0; i < count; i++ {
		var signalTime time.Time

		if f == nil {
			signalTime = t.timeSource()
		} else {
			signalTime = f(i)
		}

		if err := t.tick(signalTime); err != nil {
			return err
		}
	}

	return nil
}

// TickTimes raises one signal per element of signalTimes, in order.
func (t *TestSignaler) TickTimes(signalTimes []time.Time) error {
	if signalTimes == nil {
		return ErrNullArgument.Errorf("empty signal times")
	}

	for i := range signalTimes {
		if err := t.tick(signalTimes[i]); err != nil {
			return err
		}
	}

	return nil
}

func (t *TestSignaler) tick(signalTime time.Time) error {
	if t.requireStart && !t.Enabled() {
		return ErrInvalidState.Errorf("test signaler must be started")
	}

	c := atomic.AddInt64(&t.tickCount, 1)

	t.raise(t, NewTickSignal(int(c), signalTime))

	return nil
}

func (t *TestSignaler) Enabled() bool {
	return atomic.LoadInt32(&t.enabled) == 1
}

func (t *TestSignaler) Start() error {
	atomic.StoreInt32(&t.enabled, 1)
	atomic.AddInt64(&t.startCount, 1)

	for _, h := range t.started.snapshot() {
		h.f(t)
	}

	return nil
}

// StartWithInterval is Start; interval is ignored.
func (t *TestSignaler) StartWithInterval(time.Duration) error {
	return t.Start()
}

func (t *TestSignaler) Stop() error {
	atomic.StoreInt32(&t.enabled, 0)
	atomic.AddInt64(&t.stopCount, 1)

	for _, h := range t.stopped.snapshot() {
		h.f(t)
	}

	return nil
}

// Reset clears the counters; the enabled state is kept.
func (t *TestSignaler) Reset() {
	atomic.StoreInt64(&t.tickCount, 0)
	atomic.StoreInt64(&t.startCount, 0)
	atomic.StoreInt64(&t.stopCount, 0)
}

func (t *TestSignaler) TickCount() int {
	return int(atomic.LoadInt64(&t.tickCount))
}

func (t *TestSignaler) StartCount() int {
	return int(atomic.LoadInt64(&t.startCount))
}

func (t *TestSignaler) StopCount() int {
	return int(atomic.LoadInt64(&t.stopCount))
}

func (*TestSignaler) Close() error {
	return nil
}
