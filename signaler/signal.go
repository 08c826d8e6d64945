package signaler

import (
	"time"

	"github.com/rs/zerolog"
)

// ElapsedSignal is delivered to the elapsed handlers every time a signaler
// fires.
type ElapsedSignal interface {
	SignalTime() time.Time
}

type TimerSignal struct {
	signalTime time.Time
}

func NewTimerSignal(signalTime time.Time) TimerSignal {
	return TimerSignal{signalTime: signalTime}
}

func (s TimerSignal) SignalTime() time.Time {
	return s.signalTime
}

func (s TimerSignal) MarshalZerologObject(e *zerolog.Event) {
	e.Time("signal_time", s.signalTime)
}

// TickSignal is raised by TestSignaler. TickCount is the number of ticks
// delivered since the last reset, including this one.
type TickSignal struct {
	TimerSignal
	tickCount int
}

func NewTickSignal(tickCount int, signalTime time.Time) TickSignal {
	return TickSignal{TimerSignal: NewTimerSignal(signalTime), tickCount: tickCount}
}

func (s TickSignal) TickCount() int {
	return s.tickCount
}

func (s TickSignal) MarshalZerologObject(e *zerolog.Event) {
	s.TimerSignal.MarshalZerologObject(e)
	e.Int("tick_count", s.tickCount)
}
