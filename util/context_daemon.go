package util

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spikeekips/itimer/util/logging"
)

var _ Daemon = (*ContextDaemon)(nil)

var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)

	return ch
}()

// ContextDaemon runs callback in its own goroutine with a cancellable context.
// Stop only cancels; it never waits for the callback to return, so it is safe
// to call from inside the callback.
type ContextDaemon struct {
	*logging.Logging
	callback func(context.Context) error
	ctx      context.Context //nolint:containedctx //...
	cancel   func()
	done     chan struct{}
	sync.RWMutex
}

func NewContextDaemon(name string, callback func(context.Context) error) *ContextDaemon {
	return &ContextDaemon{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "context-daemon").Str("daemon", name)
		}),
		callback: callback,
		done:     closedDone,
	}
}

func (dm *ContextDaemon) IsStarted() bool {
	dm.RLock()
	defer dm.RUnlock()

	return dm.isStarted()
}

func (dm *ContextDaemon) Start(ctx context.Context) error {
	dm.Lock()
	defer dm.Unlock()

	if dm.isStarted() {
		return ErrDaemonAlreadyStarted.Call()
	}

	dm.run(ctx)

	return nil
}

// Restart cancels the running callback, if any, and starts a new one. The new
// callback is not called until the previous one has returned.
func (dm *ContextDaemon) Restart(ctx context.Context) {
	dm.Lock()
	defer dm.Unlock()

	if dm.cancel != nil {
		dm.cancel()
	}

	dm.run(ctx)
}

func (dm *ContextDaemon) Stop() error {
	dm.Lock()
	defer dm.Unlock()

	if !dm.isStarted() {
		return ErrDaemonAlreadyStopped.Call()
	}

	dm.cancel()

	dm.Log().Debug().Msg("stopped")

	return nil
}

// Done is closed when the latest callback has returned.
func (dm *ContextDaemon) Done() <-chan struct{} {
	dm.RLock()
	defer dm.RUnlock()

	return dm.done
}

func (dm *ContextDaemon) isStarted() bool {
	return dm.ctx != nil && dm.ctx.Err() == nil
}

func (dm *ContextDaemon) run(ctx context.Context) {
	prev := dm.done

	nctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	dm.ctx = nctx
	dm.cancel = cancel
	dm.done = done

	go func() {
		defer close(done)
		defer cancel()

		<-prev

		if nctx.Err() != nil {
			return
		}

		if err := dm.callback(nctx); err != nil && !errors.Is(err, context.Canceled) {
			dm.Log().Error().Err(err).Msg("callback stopped by error")
		}
	}()

	dm.Log().Debug().Msg("started")
}
