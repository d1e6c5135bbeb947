//go:build linux

package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/smazurov/alsaprobe/internal/events"
	"github.com/smazurov/alsaprobe/pkg/linuxav/hotplug"
)

type soundSource struct {
	monitor *hotplug.Monitor
}

// NewSoundSource opens a kernel uevent socket filtered to the sound subsystem.
func NewSoundSource() (Source, error) {
	monitor, err := hotplug.NewMonitor(hotplug.SubsystemSound)
	if err != nil {
		return nil, fmt.Errorf("open uevent socket: %w", err)
	}
	return &soundSource{monitor: monitor}, nil
}

func (s *soundSource) Run(ctx context.Context, out chan<- events.CardHotplugEvent) error {
	defer close(out)
	defer s.monitor.Close()

	raw := make(chan hotplug.Event, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.monitor.Run(ctx, raw)
	}()

	for ev := range raw {
		cardEvent, ok := CardEvent(ev)
		if !ok {
			continue
		}
		select {
		case out <- cardEvent:
		case <-ctx.Done():
		}
	}
	return <-errCh
}

// CardEvent converts a uevent for a card's control node. Other sound nodes
// (PCM, timers, sequencer) are ignored.
func CardEvent(ev hotplug.Event) (events.CardHotplugEvent, bool) {
	if !ev.IsCardControl() {
		return events.CardHotplugEvent{}, false
	}
	switch ev.Action {
	case hotplug.ActionAdd, hotplug.ActionRemove, hotplug.ActionChange:
	default:
		return events.CardHotplugEvent{}, false
	}
	card, ok := ev.Card()
	if !ok {
		return events.CardHotplugEvent{}, false
	}
	return events.CardHotplugEvent{
		Card:      card,
		Action:    ev.Action,
		DevName:   ev.DevName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, true
}
