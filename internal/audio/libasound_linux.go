//go:build linux && cgo && libasound

package audio

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>
*/
import "C"

import (
	"strconv"
	"unsafe"
)

func init() {
	Register("libasound", func() (Subsystem, error) {
		return &libasoundSubsystem{}, nil
	})
}

// libasoundSubsystem calls alsa-lib directly.
type libasoundSubsystem struct{}

func alsaError(op string, rc C.int) error {
	if rc >= 0 {
		return nil
	}
	return &Error{Op: op, Code: int(rc), Msg: C.GoString(C.snd_strerror(rc))}
}

func (s *libasoundSubsystem) NextCard(prev int) (int, error) {
	card := C.int(prev)
	if err := alsaError("snd_card_next", C.snd_card_next(&card)); err != nil { //nolint:gocritic // CGO false positive
		return NoCard, err
	}
	return int(card), nil
}

func (s *libasoundSubsystem) CardName(card int) (string, error) {
	var name *C.char
	if err := alsaError("snd_card_get_name", C.snd_card_get_name(C.int(card), &name)); err != nil { //nolint:gocritic // CGO false positive
		return "", err
	}
	defer C.free(unsafe.Pointer(name))
	return C.GoString(name), nil
}

func (s *libasoundSubsystem) CardLongName(card int) (string, error) {
	var name *C.char
	if err := alsaError("snd_card_get_longname", C.snd_card_get_longname(C.int(card), &name)); err != nil { //nolint:gocritic // CGO false positive
		return "", err
	}
	defer C.free(unsafe.Pointer(name))
	return C.GoString(name), nil
}

func (s *libasoundSubsystem) OpenMixer() (Mixer, error) {
	var handle *C.snd_mixer_t
	if err := alsaError("snd_mixer_open", C.snd_mixer_open(&handle, 0)); err != nil { //nolint:gocritic // CGO false positive
		return nil, err
	}
	return &libasoundMixer{handle: handle}, nil
}

type libasoundMixer struct {
	handle *C.snd_mixer_t
	loaded bool
}

func (m *libasoundMixer) Attach(address string) error {
	cAddress := C.CString(address)
	defer C.free(unsafe.Pointer(cAddress))
	return alsaError("snd_mixer_attach", C.snd_mixer_attach(m.handle, cAddress))
}

func (m *libasoundMixer) RegisterSimple() error {
	return alsaError("snd_mixer_selem_register", C.snd_mixer_selem_register(m.handle, nil, nil))
}

func (m *libasoundMixer) Load() error {
	if err := alsaError("snd_mixer_load", C.snd_mixer_load(m.handle)); err != nil {
		return err
	}
	m.loaded = true
	return nil
}

func (m *libasoundMixer) Elements() []string {
	if m.handle == nil || !m.loaded {
		return nil
	}
	var names []string
	for elem := C.snd_mixer_first_elem(m.handle); elem != nil; elem = C.snd_mixer_elem_next(elem) {
		name := C.GoString(C.snd_mixer_selem_get_name(elem))
		if idx := int(C.snd_mixer_selem_get_index(elem)); idx > 0 {
			name += "," + strconv.Itoa(idx)
		}
		names = append(names, name)
	}
	return names
}

func (m *libasoundMixer) Close() error {
	if m.handle == nil {
		return nil
	}
	rc := C.snd_mixer_close(m.handle)
	m.handle = nil
	return alsaError("snd_mixer_close", rc)
}
