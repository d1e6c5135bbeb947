//go:build linux

// Package alsa provides pure Go bindings to the ALSA (Advanced Linux Sound Architecture)
// control interface for sound card enumeration, mixer element discovery and PCM
// capability queries.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Card Enumeration
//
// NextCard follows the libasound snd_card_next contract: start from -1 and feed
// each returned card back in until -1 comes out again:
//
//	card := -1
//	for {
//	    next, err := alsa.NextCard(card)
//	    if err != nil || next < 0 {
//	        break
//	    }
//	    info, _ := alsa.GetCardInfo(next)
//	    fmt.Printf("%d: %s (%s)\n", next, info.Name, info.LongName)
//	    card = next
//	}
//
// # Mixer Sessions
//
// A Mixer mirrors the snd_mixer open/attach/register/load/close lifecycle. It only
// reads the control element list and never writes element values:
//
//	m := alsa.OpenMixer()
//	defer m.Close()
//	if err := m.Attach("hw:0"); err != nil { ... }
//	_ = m.RegisterSimple()
//	_ = m.Load()
//	fmt.Println(m.Elements())
//
// # PCM Devices
//
// Use ListDevices to discover playback and capture PCM devices with their
// hardware capabilities.
package alsa
