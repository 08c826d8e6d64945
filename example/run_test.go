package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spikeekips/itimer/signaler"
	"github.com/stretchr/testify/suite"
)

type testRun struct {
	suite.Suite
}

func (t *testRun) SetupSuite() {
	l := zerolog.Nop()
	log = &l
}

func (t *testRun) TestChain() {
	source := signaler.NewTestSignaler(nil, false)
	target := signaler.NewTestSignaler(nil, false)

	chainTestSignalers([]namedSignaler{
		{Signaler: target, kind: kindTest},
	})

	t.NoError(source.Tick())
	t.Equal(0, target.TickCount())

	timer, err := signaler.NewThreadingTimer(time.Millisecond*10, false, nil)
	t.NoError(err)
	defer timer.Close()

	chainTestSignalers([]namedSignaler{
		{Signaler: timer, kind: kindThreading},
		{Signaler: target, kind: kindTest},
	})

	t.NoError(timer.Start())

	<-time.After(time.Millisecond * 200)

	t.Equal(1, target.TickCount())
}

func (t *testRun) TestTextWriter() {
	var buf bytes.Buffer

	w := newSignalWriter("text", &buf)

	signalTime := time.Date(2013, 12, 11, 10, 9, 8, 7, time.UTC)
	s := signaler.NewTestSignaler(func() time.Time { return signalTime }, false)

	_, _ = s.OnElapsed(func(source signaler.Signaler, e signaler.ElapsedSignal) {
		t.NoError(w.write(kindTest, source, e))
	})

	t.NoError(s.Tick())

	line := strings.TrimSpace(buf.String())
	t.True(strings.HasPrefix(line, kindTest))
	t.Contains(line, s.ID())
	t.Contains(line, "2013-12-11T10:09:08.000000007Z")
	t.True(strings.HasSuffix(line, "tick=1"))
}

func (t *testRun) TestJSONWriter() {
	var buf bytes.Buffer

	w := newSignalWriter("json", &buf)

	signalTime := time.Date(2013, 12, 11, 10, 9, 8, 7, time.UTC)
	s := signaler.NewTestSignaler(func() time.Time { return signalTime }, false)

	_, _ = s.OnElapsed(func(source signaler.Signaler, e signaler.ElapsedSignal) {
		t.NoError(w.write(kindTest, source, e))
	})

	t.NoError(s.TickN(2, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	t.Equal(2, len(lines))
	t.Contains(lines[0], `"kind":"test"`)
	t.Contains(lines[0], `"tick_count":1`)
	t.Contains(lines[1], `"tick_count":2`)
	t.Contains(lines[1], `"signal_time":"2013-12-11T10:09:08.000000007Z"`)
}

func (t *testRun) TestNewSignalers() {
	cmd := &runCommand{
		timeSource: signaler.DefaultTimeSource(),
		dispatcher: signaler.NewDispatcher(1),
		out:        newSignalWriter("text", &bytes.Buffer{}),
	}

	signalers, err := cmd.newSignalers(defaultTimersConfig(time.Second))
	t.NoError(err)
	t.Equal(4, len(signalers))

	_, ok := signalers[0].Signaler.(*signaler.ThreadingTimer)
	t.True(ok)
	_, ok = signalers[1].Signaler.(*signaler.SystemTimer)
	t.True(ok)
	_, ok = signalers[2].Signaler.(*signaler.PeriodicTimer)
	t.True(ok)
	_, ok = signalers[3].Signaler.(*signaler.TestSignaler)
	t.True(ok)

	for i := range signalers {
		t.NoError(signalers[i].Close())
	}

	_, err = cmd.newSignalers(timersConfig{Timers: []timerConfig{{Kind: "showme"}}})
	t.ErrorContains(err, "unknown kind")
}

func (t *testRun) TestDefaultInterval() {
	cmd := &runCommand{
		timeSource: signaler.DefaultTimeSource(),
		dispatcher: signaler.NewDispatcher(1),
	}

	for _, kind := range []string{kindSystem, kindPeriodic} {
		c := timerConfig{Kind: kind}
		t.NoError(c.isValid(0))

		s, err := cmd.newSignaler(c)
		t.NoError(err, kind)
		t.Equal(signaler.DefaultInterval, s.Interval(), kind)
		t.NoError(s.Close(), kind)
	}

	s, err := cmd.newSignaler(timerConfig{Kind: kindPeriodic, Interval: time.Second})
	t.NoError(err)
	t.Equal(time.Second, s.Interval())
	t.NoError(s.Close())
}

func TestRun(t *testing.T) {
	suite.Run(t, new(testRun))
}
