package audio

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

type nopSubsystem struct{}

func (nopSubsystem) NextCard(int) (int, error)        { return NoCard, nil }
func (nopSubsystem) CardName(int) (string, error)     { return "", nil }
func (nopSubsystem) CardLongName(int) (string, error) { return "", nil }
func (nopSubsystem) OpenMixer() (Mixer, error)        { return nil, errors.New("no mixer") }

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "audio error", err: &Error{Op: "snd_mixer_load", Code: -19, Msg: "No such device"}, want: -19},
		{name: "wrapped audio error", err: fmt.Errorf("probe: %w", &Error{Op: "snd_mixer_attach", Code: -2}), want: -2},
		{name: "errno", err: unix.ENODEV, want: -int(unix.ENODEV)},
		{name: "wrapped errno", err: fmt.Errorf("open: %w", unix.EACCES), want: -int(unix.EACCES)},
		{name: "plain error", err: errors.New("boom"), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapErrno(t *testing.T) {
	if err := wrapErrno("snd_mixer_load", nil); err != nil {
		t.Fatalf("wrapErrno(nil) = %v, want nil", err)
	}

	err := wrapErrno("snd_mixer_attach", unix.ENOENT)
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if aerr.Op != "snd_mixer_attach" {
		t.Errorf("Op = %q, want snd_mixer_attach", aerr.Op)
	}
	if aerr.Code != -int(unix.ENOENT) {
		t.Errorf("Code = %d, want %d", aerr.Code, -int(unix.ENOENT))
	}
	if !errors.Is(err, unix.ENOENT) {
		t.Error("expected error to unwrap to ENOENT")
	}
	if !strings.Contains(err.Error(), "snd_mixer_attach") {
		t.Errorf("Error() = %q, want op name", err.Error())
	}
}

func TestRegistry(t *testing.T) {
	Register("test-nop", func() (Subsystem, error) { return nopSubsystem{}, nil })
	Register("test-broken", func() (Subsystem, error) { return nil, errors.New("no hardware") })

	if !slices.IsSorted(Backends()) {
		t.Errorf("Backends() not sorted: %v", Backends())
	}
	if !HasBackend("test-nop") {
		t.Error("expected test-nop to be registered")
	}

	sub, err := New("test-nop")
	if err != nil {
		t.Fatalf("New(test-nop) error: %v", err)
	}
	if _, ok := sub.(nopSubsystem); !ok {
		t.Errorf("New(test-nop) returned %T", sub)
	}

	if _, err := New("test-broken"); err == nil || !strings.Contains(err.Error(), "no hardware") {
		t.Errorf("New(test-broken) error = %v, want factory error", err)
	}

	_, err = New("does-not-exist")
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "test-nop") {
		t.Errorf("unknown backend error should list available backends, got %q", err.Error())
	}
}
