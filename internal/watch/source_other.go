//go:build !linux

package watch

import "errors"

// NewSoundSource is only available on Linux.
func NewSoundSource() (Source, error) {
	return nil, errors.New("sound hotplug monitoring is not supported on this platform")
}
