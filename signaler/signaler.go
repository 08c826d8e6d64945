package signaler

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spikeekips/itimer/util"
	"github.com/spikeekips/itimer/util/logging"
)

var (
	ErrRange        = util.NewError("out of range")
	ErrNullArgument = util.NewError("null argument")
	ErrInvalidState = util.NewError("invalid state")
	ErrClosed       = util.NewError("signaler closed")
)

const (
	// MaxInterval is the longest interval a signaler accepts; the interval in
	// whole milliseconds, rounded up, must fit in int32.
	MaxInterval = time.Duration(math.MaxInt32) * time.Millisecond

	// DefaultInterval is used by the constructors which take no interval.
	DefaultInterval = time.Millisecond * 100
)

// TimeSource returns the time stamped on each ElapsedSignal.
type TimeSource func() time.Time

var defaultTimeSource TimeSource = time.Now

// DefaultTimeSource returns the process-wide time source used when none is
// given.
func DefaultTimeSource() TimeSource {
	return defaultTimeSource
}

type ElapsedHandler func(source Signaler, e ElapsedSignal)

type Signaler interface {
	io.Closer
	ID() string
	Interval() time.Duration
	AutoReset() bool
	Enabled() bool
	TimeSource() TimeSource
	// OnElapsed registers h; the returned function unregisters it.
	OnElapsed(h ElapsedHandler) (remove func(), _ error)
	Start() error
	StartWithInterval(time.Duration) error
	Stop() error
}

func ValidateInterval(d time.Duration) error {
	if d < 0 {
		return ErrRange.Errorf("negative interval, %v", d)
	}

	ms := d / time.Millisecond
	if d%time.Millisecond > 0 {
		ms++
	}

	if ms > math.MaxInt32 {
		return ErrRange.Errorf("too big interval, %v", d)
	}

	return nil
}

// base holds the validated state shared by every signaler.
type base struct {
	*logging.Logging
	elapsed      *handlers[ElapsedHandler]
	timeSource   TimeSource
	id           string
	interval     time.Duration
	intervalLock sync.RWMutex
	autoReset    bool
}

func newBase(
	module string,
	interval time.Duration,
	autoReset bool,
	timeSource TimeSource,
) (*base, error) {
	if err := ValidateInterval(interval); err != nil {
		return nil, err
	}

	if timeSource == nil {
		timeSource = defaultTimeSource //revive:disable-line:modifies-parameter
	}

	id := util.ULID().String()

	return &base{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", module).Str("id", id)
		}),
		elapsed:    newHandlers[ElapsedHandler](),
		timeSource: timeSource,
		id:         id,
		interval:   interval,
		autoReset:  autoReset,
	}, nil
}

func (b *base) ID() string {
	return b.id
}

func (b *base) Interval() time.Duration {
	b.intervalLock.RLock()
	defer b.intervalLock.RUnlock()

	return b.interval
}

func (b *base) AutoReset() bool {
	return b.autoReset
}

func (b *base) TimeSource() TimeSource {
	return b.timeSource
}

func (b *base) OnElapsed(h ElapsedHandler) (func(), error) {
	if h == nil {
		return nil, ErrNullArgument.Errorf("empty elapsed handler")
	}

	return b.elapsed.add(h), nil
}

func (b *base) setInterval(d time.Duration) error {
	if err := ValidateInterval(d); err != nil {
		return err
	}

	b.intervalLock.Lock()
	defer b.intervalLock.Unlock()

	b.interval = d

	return nil
}

// raise calls the elapsed handlers in registration order. A panicking handler
// is not recovered.
func (b *base) raise(source Signaler, e ElapsedSignal) {
	for _, h := range b.elapsed.snapshot() {
		h.f(source, e)
	}
}
