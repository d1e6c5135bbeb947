// Package audio abstracts the Linux audio subsystem behind a small,
// read-only interface: card enumeration, card names, and the mixer
// open/attach/register/load/close lifecycle.
//
// Backends register themselves by name. The pure-Go "ioctl" backend is always
// available on Linux; the "libasound" backend links against alsa-lib and is
// only built with cgo and the libasound build tag.
package audio

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// DefaultBackend is the backend used when none is configured.
const DefaultBackend = "ioctl"

// NoCard is the "before first" seed and "no more cards" sentinel of NextCard.
const NoCard = -1

// Subsystem is the external audio subsystem a probe is run against.
type Subsystem interface {
	// NextCard returns the card after prev, or NoCard when there are no more.
	NextCard(prev int) (int, error)
	CardName(card int) (string, error)
	CardLongName(card int) (string, error)
	// OpenMixer creates an empty mixer context. The caller must Close it.
	OpenMixer() (Mixer, error)
}

// Mixer is an open mixer context.
type Mixer interface {
	Attach(address string) error
	RegisterSimple() error
	Load() error
	// Elements lists simple element names after a successful Load.
	Elements() []string
	Close() error
}

// Error is a failed subsystem call with its negative status code.
type Error struct {
	Op   string
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Msg, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapErrno converts a raw syscall error into an *Error.
func wrapErrno(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Code: Code(err), Msg: err.Error(), Err: err}
}

// Code returns the status code of err: 0 for nil, the recorded code for an
// *Error, the negated errno for a syscall error, and -1 otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Code
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return -1
}

// Factory creates a Subsystem.
type Factory func() (Subsystem, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register installs a backend factory under name, replacing any existing one.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates the named backend. An empty name selects DefaultBackend.
func New(name string) (Subsystem, error) {
	if name == "" {
		name = DefaultBackend
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown audio backend %q (available: %s)", name, strings.Join(Backends(), ", "))
	}

	sub, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", name, err)
	}
	return sub, nil
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasBackend reports whether name is registered.
func HasBackend(name string) bool {
	return slices.Contains(Backends(), name)
}

// Device is a PCM device stream with the capabilities the driver reports.
type Device struct {
	CardNumber       int      `json:"card_number" toml:"card_number"`
	CardID           string   `json:"card_id" toml:"card_id"`
	CardName         string   `json:"card_name" toml:"card_name"`
	DeviceNumber     int      `json:"device_number" toml:"device_number"`
	DeviceName       string   `json:"device_name" toml:"device_name"`
	Type             string   `json:"type" toml:"type"`
	ALSADevice       string   `json:"alsa_device" toml:"alsa_device"`
	SupportedRates   []int    `json:"supported_rates,omitempty" toml:"supported_rates,omitempty"`
	MinChannels      int      `json:"min_channels,omitempty" toml:"min_channels,omitempty"`
	MaxChannels      int      `json:"max_channels,omitempty" toml:"max_channels,omitempty"`
	SupportedFormats []string `json:"supported_formats,omitempty" toml:"supported_formats,omitempty"`
	MinBufferSize    int      `json:"min_buffer_size,omitempty" toml:"min_buffer_size,omitempty"`
	MaxBufferSize    int      `json:"max_buffer_size,omitempty" toml:"max_buffer_size,omitempty"`
	MinPeriodSize    int      `json:"min_period_size,omitempty" toml:"min_period_size,omitempty"`
	MaxPeriodSize    int      `json:"max_period_size,omitempty" toml:"max_period_size,omitempty"`
}
