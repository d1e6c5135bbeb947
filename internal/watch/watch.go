// Package watch re-runs probes once sound card hotplug activity settles.
package watch

import (
	"context"
	"time"

	"github.com/smazurov/alsaprobe/internal/events"
	"github.com/smazurov/alsaprobe/internal/logging"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Source delivers sound card events until ctx ends or it fails. It closes
// out when it returns.
type Source interface {
	Run(ctx context.Context, out chan<- events.CardHotplugEvent) error
}

// Loop forwards hotplug events to a bus and calls a settle function after
// each burst.
type Loop struct {
	source   Source
	settle   func(ctx context.Context)
	debounce time.Duration
	bus      *events.Bus
	logger   logging.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithDebounce sets the quiet period. Values <= 0 are ignored.
func WithDebounce(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.debounce = d
		}
	}
}

// WithEventBus publishes every CardHotplugEvent on bus.
func WithEventBus(bus *events.Bus) Option {
	return func(l *Loop) {
		l.bus = bus
	}
}

// WithLogger overrides the "hotplug" module logger.
func WithLogger(logger logging.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a Loop reading source. settle runs on the Loop's goroutine, so
// no two settle calls overlap.
func New(source Source, settle func(ctx context.Context), opts ...Option) *Loop {
	l := &Loop{
		source:   source,
		settle:   settle,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.GetLogger("hotplug")
	}
	return l
}

// Run blocks until ctx ends, returning nil, or the source fails.
func (l *Loop) Run(ctx context.Context) error {
	eventCh := make(chan events.CardHotplugEvent, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.source.Run(ctx, eventCh)
	}()

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			l.logger.Info("Sound card event", "card", ev.Card, "action", ev.Action, "devname", ev.DevName)
			if l.bus != nil {
				l.bus.Publish(ev)
			}
			if timer == nil {
				timer = time.NewTimer(l.debounce)
			} else {
				timer.Reset(l.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			l.logger.Debug("Hotplug activity settled, re-probing")
			l.settle(ctx)

		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
