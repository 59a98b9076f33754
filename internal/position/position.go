// Package position resolves the observer's geographic position.
package position

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Ch00k/cloud-compass/internal/distance"
)

// Source returns the observer's current position
type Source interface {
	Locate(ctx context.Context) (distance.Point, error)
}

// SourceFunc adapts a function to a Source
type SourceFunc func(ctx context.Context) (distance.Point, error)

// Locate calls f(ctx)
func (f SourceFunc) Locate(ctx context.Context) (distance.Point, error) {
	return f(ctx)
}

// Static returns a Source that always resolves to p
func Static(p distance.Point) Source {
	return SourceFunc(func(context.Context) (distance.Point, error) {
		return p, nil
	})
}

// Unsupported returns a Source that always fails with ErrUnsupported
func Unsupported() Source {
	return SourceFunc(func(context.Context) (distance.Point, error) {
		return distance.Point{}, ErrUnsupported
	})
}

// Lookup is a single-resolution position request. It resolves exactly once, with
// either a point or an *Error.
type Lookup struct {
	once   sync.Once
	done   chan struct{}
	point  distance.Point
	err    *Error
	cancel context.CancelFunc
}

type lookupConfig struct {
	timeout time.Duration
	clock   clockwork.Clock
}

// LookupOption configures a Lookup
type LookupOption func(*lookupConfig)

// WithTimeout resolves the lookup with ErrTimeout if the source takes longer than d
func WithTimeout(d time.Duration) LookupOption {
	return func(c *lookupConfig) {
		c.timeout = d
	}
}

// WithClock sets the clock used for the timeout
func WithClock(clock clockwork.Clock) LookupOption {
	return func(c *lookupConfig) {
		c.clock = clock
	}
}

// Resolve starts locating the observer in the background
func Resolve(ctx context.Context, src Source, opts ...LookupOption) *Lookup {
	cfg := lookupConfig{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &Lookup{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	if cfg.timeout > 0 {
		timer := cfg.clock.NewTimer(cfg.timeout)
		go func() {
			defer timer.Stop()
			select {
			case <-timer.Chan():
				l.resolve(distance.Point{}, ErrTimeout)
			case <-l.done:
			}
		}()
	}

	go func() {
		p, err := src.Locate(ctx)
		l.resolve(p, Classify(err))
	}()

	return l
}

// resolve records the first outcome and ignores the rest
func (l *Lookup) resolve(p distance.Point, err *Error) {
	l.once.Do(func() {
		l.point = p
		l.err = err
		close(l.done)
		l.cancel()
	})
}

// Done is closed once the lookup has resolved
func (l *Lookup) Done() <-chan struct{} {
	return l.done
}

// Result returns the resolved position. It must only be called after Done is closed.
func (l *Lookup) Result() (distance.Point, error) {
	if l.err != nil {
		return distance.Point{}, l.err
	}
	return l.point, nil
}

// Wait blocks until the lookup resolves or ctx is done
func (l *Lookup) Wait(ctx context.Context) (distance.Point, error) {
	select {
	case <-l.done:
		return l.Result()
	case <-ctx.Done():
		return distance.Point{}, ctx.Err()
	}
}

// Cancel resolves a pending lookup as unavailable. It does nothing if the lookup has
// already resolved.
func (l *Lookup) Cancel() {
	l.resolve(distance.Point{}, NewError(KindUnavailable, "Position lookup cancelled", context.Canceled))
}
