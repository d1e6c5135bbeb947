//go:build linux

package alsa

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MaxCards matches SNDRV_CARDS, the kernel's upper bound on card indices.
const MaxCards = 32

// NoCard is returned by NextCard once no further card exists.
const NoCard = -1

// devDir is the ALSA device node directory.
var devDir = "/dev/snd"

// CardInfo holds the identification strings reported by SNDRV_CTL_IOCTL_CARD_INFO.
type CardInfo struct {
	Card       int
	ID         string
	Driver     string
	Name       string
	LongName   string
	MixerName  string
	Components string
}

func controlPath(card int) string {
	return filepath.Join(devDir, fmt.Sprintf("controlC%d", card))
}

// NextCard returns the index of the first card after card, or NoCard when there
// are no more. Pass NoCard to get the first card.
func NextCard(card int) (int, error) {
	if _, err := os.Stat(devDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NoCard, nil
		}
		return NoCard, fmt.Errorf("stat %s: %w", devDir, err)
	}

	start := card + 1
	if card < 0 {
		start = 0
	}
	for next := start; next < MaxCards; next++ {
		_, err := os.Stat(controlPath(next))
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return NoCard, fmt.Errorf("stat card %d control: %w", next, err)
		}
	}
	return NoCard, nil
}

// GetCardInfo opens the card's control device and reads its identification.
func GetCardInfo(card int) (CardInfo, error) {
	if card < 0 || card >= MaxCards {
		return CardInfo{}, unix.EINVAL
	}

	fd, err := openControl(card)
	if err != nil {
		return CardInfo{}, err
	}
	defer unix.Close(fd)

	info := sndCtlCardInfo{}
	if err := ioctl(uintptr(fd), sndrvCtlIoctlCardInfo, unsafe.Pointer(&info)); err != nil {
		return CardInfo{}, err
	}

	return CardInfo{
		Card:       int(info.card),
		ID:         cstr(info.id[:]),
		Driver:     cstr(info.driver[:]),
		Name:       cstr(info.name[:]),
		LongName:   cstr(info.longname[:]),
		MixerName:  cstr(info.mixername[:]),
		Components: cstr(info.components[:]),
	}, nil
}

// openControl opens /dev/snd/controlC<card> read-only.
func openControl(card int) (int, error) {
	return unix.Open(controlPath(card), unix.O_RDONLY|unix.O_CLOEXEC, 0)
}
