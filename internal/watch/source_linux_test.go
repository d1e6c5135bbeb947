//go:build linux

package watch

import (
	"testing"

	"github.com/smazurov/alsaprobe/pkg/linuxav/hotplug"
)

func TestCardEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    hotplug.Event
		wantOK   bool
		wantCard int
	}{
		{
			name:     "control add",
			event:    hotplug.Event{Action: "add", Subsystem: "sound", DevName: "snd/controlC1"},
			wantOK:   true,
			wantCard: 1,
		},
		{
			name:     "control remove",
			event:    hotplug.Event{Action: "remove", Subsystem: "sound", DevName: "snd/controlC3"},
			wantOK:   true,
			wantCard: 3,
		},
		{
			name:  "pcm node",
			event: hotplug.Event{Action: "add", Subsystem: "sound", DevName: "snd/pcmC1D0p"},
		},
		{
			name:  "card kobject without devname",
			event: hotplug.Event{Action: "add", Subsystem: "sound", DevPath: "/devices/pci0000:00/sound/card1"},
		},
		{
			name:  "bind action",
			event: hotplug.Event{Action: "bind", Subsystem: "sound", DevName: "snd/controlC1"},
		},
		{
			name:  "usb subsystem",
			event: hotplug.Event{Action: "add", Subsystem: "usb", DevName: "snd/controlC1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CardEvent(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("CardEvent() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Card != tt.wantCard || got.Action != tt.event.Action || got.DevName != tt.event.DevName {
				t.Errorf("CardEvent() = %+v", got)
			}
			if got.Timestamp == "" {
				t.Error("missing timestamp")
			}
		})
	}
}
