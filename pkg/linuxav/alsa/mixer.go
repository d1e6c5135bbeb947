//go:build linux

package alsa

import (
	"runtime"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ctlProtocolMajor is the major part of SNDRV_CTL_VERSION this package speaks.
const ctlProtocolMajor = 2

// sndrvCtlElemIfaceMixer is SNDRV_CTL_ELEM_IFACE_MIXER.
const sndrvCtlElemIfaceMixer = 2

// sndCtlElemID has size 64 bytes on every architecture.
type sndCtlElemID struct {
	numid     uint32
	iface     int32
	device    uint32
	subdevice uint32
	name      [44]byte
	index     uint32
}

// Control is one raw control element as listed by the kernel.
type Control struct {
	NumID uint32
	Iface int
	Name  string
	Index int
}

// simpleSuffixes are stripped from mixer control names to find the simple
// element they belong to, longest first.
var simpleSuffixes = []string{
	" Playback Switch",
	" Playback Volume",
	" Playback Route",
	" Capture Switch",
	" Capture Volume",
	" Capture Route",
	" Switch",
	" Volume",
	" Route",
}

// Mixer is a read-only mixer session over one or more card control devices.
// It follows the snd_mixer lifecycle: OpenMixer, Attach, RegisterSimple, Load, Close.
type Mixer struct {
	fds        []int
	cards      []int
	registered bool
	loaded     bool
	closed     bool
	controls   []Control
	elements   []string
}

// OpenMixer returns an empty mixer session with nothing attached.
func OpenMixer() *Mixer {
	return &Mixer{}
}

// Attach opens the control device named by address ("hw:N") and checks that
// the kernel speaks a compatible control protocol.
func (m *Mixer) Attach(address string) error {
	if m.closed {
		return unix.EBADF
	}
	card, err := ParseCardAddress(address)
	if err != nil {
		return err
	}

	fd, err := openControl(card)
	if err != nil {
		return err
	}

	var version int32
	if err := ioctl(uintptr(fd), sndrvCtlIoctlPVersion, unsafe.Pointer(&version)); err != nil {
		unix.Close(fd)
		return err
	}
	if version>>16 != ctlProtocolMajor {
		unix.Close(fd)
		return unix.EPROTO
	}

	m.fds = append(m.fds, fd)
	m.cards = append(m.cards, card)
	return nil
}

// RegisterSimple enables grouping of raw controls into simple elements.
func (m *Mixer) RegisterSimple() error {
	if m.closed {
		return unix.EBADF
	}
	if m.registered {
		return unix.EBUSY
	}
	m.registered = true
	if m.loaded {
		m.elements = simpleElements(m.controls)
	}
	return nil
}

// Load reads the control element list of every attached card.
func (m *Mixer) Load() error {
	if m.closed {
		return unix.EBADF
	}

	var controls []Control
	for _, fd := range m.fds {
		ids, err := listElements(fd)
		if err != nil {
			return err
		}
		for _, id := range ids {
			controls = append(controls, Control{
				NumID: id.numid,
				Iface: int(id.iface),
				Name:  cstr(id.name[:]),
				Index: int(id.index),
			})
		}
	}

	m.controls = controls
	m.loaded = true
	m.elements = nil
	if m.registered {
		m.elements = simpleElements(controls)
	}
	return nil
}

// Controls returns the raw control elements read by Load.
func (m *Mixer) Controls() []Control {
	out := make([]Control, len(m.controls))
	copy(out, m.controls)
	return out
}

// Elements returns simple element names, in kernel order. Empty unless both
// RegisterSimple and Load succeeded.
func (m *Mixer) Elements() []string {
	out := make([]string, len(m.elements))
	copy(out, m.elements)
	return out
}

// Close releases every attached control device. Safe to call more than once.
func (m *Mixer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var firstErr error
	for _, fd := range m.fds {
		if err := unix.Close(fd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.fds = nil
	return firstErr
}

// listElements performs the two-pass SNDRV_CTL_IOCTL_ELEM_LIST query:
// first for the count, then into a buffer of that size.
func listElements(fd int) ([]sndCtlElemID, error) {
	list := sndCtlElemList{}
	if err := ioctl(uintptr(fd), sndrvCtlIoctlElemList, unsafe.Pointer(&list)); err != nil {
		return nil, err
	}
	if list.count == 0 {
		return nil, nil
	}

	ids := make([]sndCtlElemID, list.count)
	list.space = list.count
	list.setPids(unsafe.Pointer(&ids[0]))
	err := ioctl(uintptr(fd), sndrvCtlIoctlElemList, unsafe.Pointer(&list))
	runtime.KeepAlive(ids)
	if err != nil {
		return nil, err
	}

	used := int(list.used)
	if used > len(ids) {
		used = len(ids)
	}
	return ids[:used], nil
}

// simpleElements groups mixer-interface controls into simple element names.
func simpleElements(controls []Control) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range controls {
		if c.Iface != sndrvCtlElemIfaceMixer {
			continue
		}
		name := simpleName(c.Name)
		if c.Index > 0 {
			name += "," + strconv.Itoa(c.Index)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func simpleName(control string) string {
	for _, suffix := range simpleSuffixes {
		if base, ok := strings.CutSuffix(control, suffix); ok && base != "" {
			return base
		}
	}
	return control
}
