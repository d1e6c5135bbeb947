//go:build !linux

package audio

import "errors"

// ListPCM returns an error on unsupported platforms.
func ListPCM() ([]Device, error) {
	return nil, errors.New("audio device enumeration not supported on this platform")
}
