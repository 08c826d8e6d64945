package logging

import (
	"sync"

	"github.com/rs/zerolog"
)

var nop = zerolog.Nop()

// Logging carries a zerolog.Logger decorated with the owner's context. It is
// silent until SetLogging or SetLogger is called.
type Logging struct {
	l *zerolog.Logger
	f func(zerolog.Context) zerolog.Context
	sync.RWMutex
}

func NewLogging(f func(zerolog.Context) zerolog.Context) *Logging {
	if f == nil {
		f = func(c zerolog.Context) zerolog.Context { //revive:disable-line:modifies-parameter
			return c
		}
	}

	return &Logging{l: &nop, f: f}
}

func (l *Logging) Log() *zerolog.Logger {
	l.RLock()
	defer l.RUnlock()

	return l.l
}

func (l *Logging) SetLogger(z zerolog.Logger) *Logging {
	l.Lock()
	defer l.Unlock()

	nz := l.f(z.With()).Logger()
	l.l = &nz

	return l
}

// SetLogging derives the logger from another Logging, keeping the context of
// both.
func (l *Logging) SetLogging(o *Logging) *Logging {
	if o == nil {
		return l
	}

	return l.SetLogger(*o.Log())
}

// Logger is implemented by types embedding *Logging.
type Logger interface {
	SetLogging(*Logging) *Logging
}
