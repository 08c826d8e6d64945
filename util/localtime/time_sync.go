package localtime

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spikeekips/itimer/util"
	"github.com/spikeekips/itimer/util/logging"
)

var (
	allowedTimeSyncOffset     = time.Millisecond * 500
	minTimeSyncCheckInterval  = time.Minute * 10
	timeServerQueryingTimeout = time.Second * 5
	defaultTimeSyncer         = util.NewLocked[*TimeSyncer](nil)
)

// TimeSyncer tries to sync time to time server.
type TimeSyncer struct {
	*logging.Logging
	*util.ContextDaemon
	query    func(host string, port int) (time.Duration, error)
	host     string
	port     int
	offset   time.Duration
	interval time.Duration
	sync.RWMutex
}

// NewTimeSyncer creates new TimeSyncer. It does not query the server until
// Start.
func NewTimeSyncer(server string, port int, interval time.Duration) (*TimeSyncer, error) {
	if len(server) < 1 {
		return nil, errors.Errorf("empty time server")
	}

	if interval <= 0 {
		return nil, errors.Errorf("invalid time sync interval, %v", interval)
	}

	ts := &TimeSyncer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "time-syncer").
				Str("server", server).
				Int("port", port).
				Stringer("interval", interval)
		}),
		query:    queryNTP,
		host:     server,
		port:     port,
		interval: interval,
	}

	ts.ContextDaemon = util.NewContextDaemon("time-syncer", ts.schedule)

	return ts, nil
}

func (ts *TimeSyncer) SetLogging(l *logging.Logging) *logging.Logging {
	_ = ts.ContextDaemon.SetLogging(l)

	return ts.Logging.SetLogging(l)
}

// Start checks the time server once and then keeps checking it every interval.
func (ts *TimeSyncer) Start(ctx context.Context) error {
	if ts.interval < minTimeSyncCheckInterval {
		ts.Log().Warn().
			Stringer("check_interval", ts.interval).
			Stringer("min_check_interval", minTimeSyncCheckInterval).
			Msg("interval too short")
	}

	if err := ts.check(); err != nil {
		return err
	}

	return ts.ContextDaemon.Start(ctx)
}

func (ts *TimeSyncer) schedule(ctx context.Context) error {
	defer ts.Log().Debug().Msg("stopped")

	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			started := time.Now()
			if err := ts.check(); err != nil {
				ts.Log().Error().Err(err).Stringer("elapsed", time.Since(started)).Msg("failed to check sync time")
			}
		}
	}
}

// Offset returns the latest time offset.
func (ts *TimeSyncer) Offset() time.Duration {
	ts.RLock()
	defer ts.RUnlock()

	return ts.offset
}

// Now returns the current time adjusted by Offset.
func (ts *TimeSyncer) Now() time.Time {
	return time.Now().Add(ts.Offset())
}

func (ts *TimeSyncer) check() error {
	offset, err := ts.query(ts.host, ts.port)
	if err != nil {
		return errors.WithMessage(err, "failed to sync time")
	}

	ts.Lock()
	defer ts.Unlock()

	diff := ts.offset - offset
	if diff > -allowedTimeSyncOffset && diff < allowedTimeSyncOffset {
		return nil
	}

	ts.Log().Debug().Stringer("previous", ts.offset).Stringer("offset", offset).Msg("time offset updated")

	ts.offset = offset

	return nil
}

func queryNTP(host string, port int) (time.Duration, error) {
	option := ntp.QueryOptions{Timeout: timeServerQueryingTimeout}

	if port > 0 {
		option.Port = port
	}

	response, err := ntp.QueryWithOptions(host, option)
	if err != nil {
		return 0, errors.Wrap(err, "query")
	}

	if err := response.Validate(); err != nil {
		return 0, errors.Wrap(err, "invalid response")
	}

	return response.ClockOffset, nil
}

// SetDefaultTimeSyncer sets the global TimeSyncer used by Now.
func SetDefaultTimeSyncer(syncer *TimeSyncer) {
	_ = defaultTimeSyncer.SetValue(syncer)
}

// Now returns the tuned Time with the default TimeSyncer.
func Now() time.Time {
	if ts := defaultTimeSyncer.Value(); ts != nil {
		return ts.Now()
	}

	return time.Now()
}

// Within checks whether target is in the range of base +- d.
func Within(base, target time.Time, d time.Duration) bool {
	switch {
	case d <= 0:
		return base.Equal(target)
	case target.After(base.Add(d)):
	case target.Before(base.Add(d * -1)):
	default:
		return true
	}

	return false
}
