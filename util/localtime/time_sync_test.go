package localtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type testTimeSyncer struct {
	suite.Suite
}

func (t *testTimeSyncer) newSyncer(interval time.Duration, offset func() (time.Duration, error)) *TimeSyncer {
	ts, err := NewTimeSyncer("localhost", 123, interval)
	t.NoError(err)

	ts.query = func(string, int) (time.Duration, error) {
		return offset()
	}

	return ts
}

func (t *testTimeSyncer) TestNew() {
	_, err := NewTimeSyncer("", 0, time.Second)
	t.Error(err)

	_, err = NewTimeSyncer("localhost", 0, 0)
	t.Error(err)
}

func (t *testTimeSyncer) TestOffset() {
	var called int64

	ts := t.newSyncer(time.Millisecond*10, func() (time.Duration, error) {
		if atomic.AddInt64(&called, 1) < 2 {
			return time.Second, nil
		}

		return time.Second * 3, nil
	})

	t.NoError(ts.Start(context.Background()))
	defer ts.Stop()

	t.Equal(time.Second, ts.Offset())

	<-time.After(time.Millisecond * 100)

	t.Equal(time.Second*3, ts.Offset())
	t.True(Within(time.Now().Add(time.Second*3), ts.Now(), time.Millisecond*100))
}

func (t *testTimeSyncer) TestIgnoreSmallDiff() {
	ts := t.newSyncer(time.Hour, func() (time.Duration, error) {
		return allowedTimeSyncOffset - time.Millisecond, nil
	})

	t.NoError(ts.check())
	t.Equal(time.Duration(0), ts.Offset())
}

func (t *testTimeSyncer) TestFailedQuery() {
	ts := t.newSyncer(time.Hour, func() (time.Duration, error) {
		return 0, errors.Errorf("findme")
	})

	err := ts.Start(context.Background())
	t.Error(err)
	t.ErrorContains(err, "findme")
	t.False(ts.IsStarted())
}

func (t *testTimeSyncer) TestDefaultNow() {
	SetDefaultTimeSyncer(nil)
	t.True(Within(time.Now(), Now(), time.Second))

	ts := t.newSyncer(time.Hour, func() (time.Duration, error) {
		return time.Hour, nil
	})
	t.NoError(ts.check())

	SetDefaultTimeSyncer(ts)
	defer SetDefaultTimeSyncer(nil)

	t.True(Within(time.Now().Add(time.Hour), Now(), time.Second))
}

func (t *testTimeSyncer) TestWithin() {
	base := time.Now()

	t.True(Within(base, base, 0))
	t.False(Within(base, base.Add(1), 0))
	t.True(Within(base, base.Add(time.Second), time.Second*2))
	t.True(Within(base, base.Add(-time.Second), time.Second*2))
	t.False(Within(base, base.Add(time.Second*3), time.Second*2))
	t.False(Within(base, base.Add(-time.Second*3), time.Second*2))
}

func TestTimeSyncer(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(testTimeSyncer))
}
