//go:build linux

package audio

import (
	"github.com/smazurov/alsaprobe/pkg/linuxav/alsa"
)

func init() {
	Register("ioctl", func() (Subsystem, error) {
		return &ioctlSubsystem{}, nil
	})
}

// ioctlSubsystem talks to /dev/snd/controlC* directly.
type ioctlSubsystem struct{}

func (s *ioctlSubsystem) NextCard(prev int) (int, error) {
	next, err := alsa.NextCard(prev)
	if err != nil {
		return NoCard, wrapErrno("snd_card_next", err)
	}
	return next, nil
}

func (s *ioctlSubsystem) CardName(card int) (string, error) {
	info, err := alsa.GetCardInfo(card)
	if err != nil {
		return "", wrapErrno("snd_card_get_name", err)
	}
	return info.Name, nil
}

func (s *ioctlSubsystem) CardLongName(card int) (string, error) {
	info, err := alsa.GetCardInfo(card)
	if err != nil {
		return "", wrapErrno("snd_card_get_longname", err)
	}
	return info.LongName, nil
}

func (s *ioctlSubsystem) OpenMixer() (Mixer, error) {
	return &ioctlMixer{m: alsa.OpenMixer()}, nil
}

type ioctlMixer struct {
	m *alsa.Mixer
}

func (x *ioctlMixer) Attach(address string) error {
	return wrapErrno("snd_mixer_attach", x.m.Attach(address))
}

func (x *ioctlMixer) RegisterSimple() error {
	return wrapErrno("snd_mixer_selem_register", x.m.RegisterSimple())
}

func (x *ioctlMixer) Load() error {
	return wrapErrno("snd_mixer_load", x.m.Load())
}

func (x *ioctlMixer) Elements() []string {
	return x.m.Elements()
}

func (x *ioctlMixer) Close() error {
	return wrapErrno("snd_mixer_close", x.m.Close())
}

// ListPCM lists every playback and capture PCM device with its capabilities.
func ListPCM() ([]Device, error) {
	devices, err := alsa.ListDevices()
	if err != nil {
		return nil, err
	}

	out := make([]Device, len(devices))
	for i, d := range devices {
		out[i] = Device{
			CardNumber:       d.CardNumber,
			CardID:           d.CardID,
			CardName:         d.CardName,
			DeviceNumber:     d.DeviceNumber,
			DeviceName:       d.DeviceName,
			Type:             d.Type,
			ALSADevice:       d.ALSADevice,
			SupportedRates:   d.SupportedRates,
			MinChannels:      d.MinChannels,
			MaxChannels:      d.MaxChannels,
			SupportedFormats: d.SupportedFormats,
			MinBufferSize:    d.MinBufferSize,
			MaxBufferSize:    d.MaxBufferSize,
			MinPeriodSize:    d.MinPeriodSize,
			MaxPeriodSize:    d.MaxPeriodSize,
		}
	}
	return out, nil
}
