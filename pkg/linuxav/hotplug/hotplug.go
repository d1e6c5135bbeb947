//go:build linux

// Package hotplug listens for kernel device uevents over netlink without cgo.
//
// The kernel broadcasts a NETLINK_KOBJECT_UEVENT message whenever a device is
// added, removed or changed. For ALSA, every card produces a burst of events
// under the "sound" subsystem; the control node (snd/controlC<N>) is the one
// that identifies the card itself.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Action constants for device events.
const (
	ActionAdd     = "add"
	ActionRemove  = "remove"
	ActionChange  = "change"
	ActionMove    = "move"
	ActionBind    = "bind"
	ActionUnbind  = "unbind"
	ActionOnline  = "online"
	ActionOffline = "offline"
)

// Subsystem names.
const (
	SubsystemSound = "sound"
	SubsystemUSB   = "usb"
)

// netlinkKobjectUEvent is NETLINK_KOBJECT_UEVENT.
const netlinkKobjectUEvent = unix.NETLINK_KOBJECT_UEVENT

// kernelGroup is the multicast group the kernel broadcasts uevents on.
const kernelGroup = 1

// Event is one kernel device uevent.
type Event struct {
	Action    string            // add, remove, change, ...
	KObj      string            // kernel object path, e.g. /devices/pci0000:00/.../sound/card0
	Subsystem string            // sound, usb, ...
	DevType   string            // DEVTYPE, when present
	DevName   string            // DEVNAME relative to /dev, e.g. snd/controlC0
	DevPath   string            // DEVPATH
	Env       map[string]string // every KEY=VALUE pair of the message
}

// Card returns the ALSA card index an event refers to. It recognizes the
// control node ("snd/controlC<N>") and the card kobject (".../sound/card<N>").
func (e Event) Card() (int, bool) {
	if e.Subsystem != SubsystemSound {
		return 0, false
	}
	if rest, ok := strings.CutPrefix(e.DevName, "snd/controlC"); ok {
		return parseIndex(rest)
	}
	path := e.DevPath
	if path == "" {
		path = e.KObj
	}
	i := strings.LastIndex(path, "/card")
	if i < 0 {
		return 0, false
	}
	return parseIndex(path[i+len("/card"):])
}

// IsCardControl reports whether the event is for a card's control node. Each
// card emits exactly one of these per add or remove.
func (e Event) IsCardControl() bool {
	return e.Subsystem == SubsystemSound && strings.HasPrefix(e.DevName, "snd/controlC")
}

func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Monitor reads uevents from a netlink socket.
type Monitor struct {
	fd        int
	filters   map[string]struct{}
	filtersMu sync.RWMutex
}

// NewMonitor opens a uevent socket bound to the kernel broadcast group.
// Only events from the given subsystems are delivered; none means all.
func NewMonitor(subsystems ...string) (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: kernelGroup,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}

	m := &Monitor{
		fd:      fd,
		filters: make(map[string]struct{}),
	}
	for _, s := range subsystems {
		m.AddSubsystemFilter(s)
	}
	return m, nil
}

// AddSubsystemFilter restricts delivery to the given subsystem (in addition to
// any already added). Safe for concurrent use.
func (m *Monitor) AddSubsystemFilter(subsystem string) {
	m.filtersMu.Lock()
	m.filters[subsystem] = struct{}{}
	m.filtersMu.Unlock()
}

func (m *Monitor) matches(e *Event) bool {
	m.filtersMu.RLock()
	defer m.filtersMu.RUnlock()
	if len(m.filters) == 0 {
		return true
	}
	_, ok := m.filters[e.Subsystem]
	return ok
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Run delivers matching events until ctx is cancelled or the socket fails.
// The events channel is closed when Run returns.
func (m *Monitor) Run(ctx context.Context, events chan<- Event) error {
	defer close(events)

	// One second receive timeout so cancellation is noticed.
	tv := unix.Timeval{Sec: 1}
	if err := unix.SetsockoptTimeval(m.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return err
	}

	buf := make([]byte, 8192)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return err
		case n == 0:
			continue
		}

		event := ParseUEvent(buf[:n])
		if event == nil || !m.matches(event) {
			continue
		}

		select {
		case events <- *event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ParseUEvent parses a kernel uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0...". Messages relayed by udevd carry a binary
// "libudev" header which is skipped. Returns nil for malformed input.
func ParseUEvent(data []byte) *Event {
	data = stripLibudevHeader(data)

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 || len(parts[0]) == 0 {
		return nil
	}

	action, kobj, ok := strings.Cut(string(parts[0]), "@")
	if !ok || action == "" {
		return nil
	}

	event := &Event{
		Action: action,
		KObj:   kobj,
		Env:    make(map[string]string),
	}

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(string(part), "=")
		if !ok || key == "" {
			continue
		}
		event.Env[key] = value

		switch key {
		case "SUBSYSTEM":
			event.Subsystem = value
		case "DEVTYPE":
			event.DevType = value
		case "DEVNAME":
			event.DevName = value
		case "DEVPATH":
			event.DevPath = value
		}
	}

	return event
}

func stripLibudevHeader(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte("libudev")) {
		return data
	}
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			continue
		}
		rest := data[i+1:]
		head := rest
		if end := bytes.IndexByte(rest, 0); end >= 0 {
			head = rest[:end]
		}
		if at := bytes.IndexByte(head, '@'); at > 0 && at < 20 {
			return rest
		}
	}
	return data
}
