package watch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smazurov/alsaprobe/internal/events"
)

type fakeSource struct {
	events chan events.CardHotplugEvent
	err    error
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan events.CardHotplugEvent)}
}

func (f *fakeSource) Run(ctx context.Context, out chan<- events.CardHotplugEvent) error {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-f.events:
			if !ok {
				return f.err
			}
			out <- ev
		}
	}
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}

func startLoop(t *testing.T, l *Loop) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx)
	}()
	t.Cleanup(cancel)
	return cancel, done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoopDebouncesBurst(t *testing.T) {
	source := newFakeSource()
	var settles atomic.Int32
	l := New(source, func(context.Context) { settles.Add(1) },
		WithDebounce(50*time.Millisecond), WithLogger(discardLogger{}))
	startLoop(t, l)

	for i := range 3 {
		source.events <- events.CardHotplugEvent{Card: 1, Action: "add", DevName: "snd/controlC1", Timestamp: time.Now().String()}
		if i < 2 {
			time.Sleep(10 * time.Millisecond)
		}
	}

	waitFor(t, func() bool { return settles.Load() == 1 })
	time.Sleep(100 * time.Millisecond)
	if got := settles.Load(); got != 1 {
		t.Errorf("settle called %d times, want 1", got)
	}

	source.events <- events.CardHotplugEvent{Card: 1, Action: "remove", DevName: "snd/controlC1"}
	waitFor(t, func() bool { return settles.Load() == 2 })
}

func TestLoopPublishesEvents(t *testing.T) {
	bus := events.New()
	var mu sync.Mutex
	var received []events.CardHotplugEvent
	unsub := bus.Subscribe(func(e events.CardHotplugEvent) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})
	defer unsub()

	source := newFakeSource()
	l := New(source, func(context.Context) {}, WithEventBus(bus), WithLogger(discardLogger{}))
	startLoop(t, l)

	source.events <- events.CardHotplugEvent{Card: 2, Action: "add", DevName: "snd/controlC2"}
	source.events <- events.CardHotplugEvent{Card: 2, Action: "remove", DevName: "snd/controlC2"}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	})
}

func TestLoopStops(t *testing.T) {
	t.Run("context cancel returns nil", func(t *testing.T) {
		l := New(newFakeSource(), func(context.Context) {}, WithLogger(discardLogger{}))
		cancel, done := startLoop(t, l)
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v, want nil", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	})

	t.Run("source failure is returned", func(t *testing.T) {
		source := newFakeSource()
		source.err = errors.New("socket closed")
		l := New(source, func(context.Context) {}, WithLogger(discardLogger{}))
		_, done := startLoop(t, l)
		close(source.events)
		select {
		case err := <-done:
			if err == nil || err.Error() != "socket closed" {
				t.Errorf("Run() error = %v, want socket closed", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after source failure")
		}
	})
}

func TestWithDebounceIgnoresNonPositive(t *testing.T) {
	l := New(newFakeSource(), func(context.Context) {}, WithDebounce(0), WithDebounce(-time.Second))
	if l.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", l.debounce, DefaultDebounce)
	}
	l = New(newFakeSource(), func(context.Context) {}, WithDebounce(2*time.Second))
	if l.debounce != 2*time.Second {
		t.Errorf("debounce = %v, want 2s", l.debounce)
	}
}
