package signaler

import (
	"context"

	"github.com/spikeekips/itimer/util"
)

// Dispatcher is a SyncContext running every invoked callback, in order, on a
// single goroutine.
type Dispatcher struct {
	*util.ContextDaemon
	queue chan func()
}

func NewDispatcher(size int) *Dispatcher {
	d := &Dispatcher{queue: make(chan func(), size)}

	d.ContextDaemon = util.NewContextDaemon("dispatcher", d.run)

	return d
}

// Invoke queues f; it blocks while the queue is full.
func (d *Dispatcher) Invoke(f func()) error {
	if f == nil {
		return ErrNullArgument.Errorf("empty callback")
	}

	if !d.IsStarted() {
		return ErrInvalidState.Errorf("dispatcher not started")
	}

	select {
	case <-d.Done():
		return ErrInvalidState.Errorf("dispatcher stopped")
	case d.queue <- f:
		return nil
	}
}

func (d *Dispatcher) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-d.queue:
			f()
		}
	}
}
