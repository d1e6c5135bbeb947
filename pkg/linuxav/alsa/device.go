//go:build linux

package alsa

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ListDevices returns every PCM playback and capture stream on every card.
// Cards whose control device cannot be queried are skipped.
func ListDevices() ([]Device, error) {
	var devices []Device

	card := NoCard
	for {
		next, err := NextCard(card)
		if err != nil {
			return devices, err
		}
		if next < 0 {
			break
		}
		card = next

		cardDevices, err := listCardDevices(card)
		if err != nil {
			continue
		}
		devices = append(devices, cardDevices...)
	}

	return devices, nil
}

func listCardDevices(cardNum int) ([]Device, error) {
	ctlFd, err := openControl(cardNum)
	if err != nil {
		return nil, err
	}
	defer unix.Close(ctlFd)

	cardInfo := sndCtlCardInfo{}
	if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlCardInfo, unsafe.Pointer(&cardInfo)); err != nil {
		return nil, err
	}

	var devices []Device
	deviceNum := int32(-1)
	for {
		if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMNextDevice, unsafe.Pointer(&deviceNum)); err != nil {
			break
		}
		if deviceNum < 0 {
			break
		}

		for _, stream := range []int{StreamPlayback, StreamCapture} {
			pcmInfo := sndPCMInfo{
				device:    uint32(deviceNum),
				subdevice: 0,
				stream:    int32(stream),
			}
			if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMInfo, unsafe.Pointer(&pcmInfo)); err != nil {
				continue // Device doesn't support this direction
			}

			device := Device{
				CardNumber:   cardNum,
				CardID:       cstr(cardInfo.id[:]),
				CardName:     cstr(cardInfo.longname[:]),
				DeviceNumber: int(deviceNum),
				DeviceName:   cstr(pcmInfo.name[:]),
				Type:         StreamName(stream),
				ALSADevice:   FormatALSADevice(cardNum, int(deviceNum)),
			}

			if caps, err := queryCapabilities(cardNum, int(deviceNum), stream); err == nil {
				device.SupportedRates = caps.rates
				device.MinChannels = caps.minChannels
				device.MaxChannels = caps.maxChannels
				device.SupportedFormats = caps.formats
				device.MinBufferSize = caps.minBufferSize
				device.MaxBufferSize = caps.maxBufferSize
				device.MinPeriodSize = caps.minPeriodSize
				device.MaxPeriodSize = caps.maxPeriodSize
			}

			devices = append(devices, device)
		}
	}

	return devices, nil
}

type capabilities struct {
	rates         []int
	minChannels   int
	maxChannels   int
	formats       []string
	minBufferSize int
	maxBufferSize int
	minPeriodSize int
	maxPeriodSize int
}

func pcmPath(cardNum, deviceNum, stream int) string {
	suffix := "p"
	if stream == StreamCapture {
		suffix = "c"
	}
	return filepath.Join(devDir, fmt.Sprintf("pcmC%dD%d%s", cardNum, deviceNum, suffix))
}

// queryCapabilities refines a full hw_params space without configuring the
// stream. A busy device (opened elsewhere) reports EBUSY and is skipped.
func queryCapabilities(cardNum, deviceNum, stream int) (*capabilities, error) {
	fd, err := unix.Open(pcmPath(cardNum, deviceNum, stream), unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	hwparams := sndPCMHwParams{}
	hwparams.init()
	hwparams.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)

	if err := ioctl(uintptr(fd), sndrvPCMIoctlHwRefine, unsafe.Pointer(&hwparams)); err != nil {
		return nil, err
	}

	caps := &capabilities{}

	minCh, maxCh := hwparams.getInterval(sndrvPCMHwParamChannels)
	caps.minChannels = int(minCh)
	caps.maxChannels = int(maxCh)

	minRate, maxRate := hwparams.getInterval(sndrvPCMHwParamRate)
	for _, rate := range CommonSampleRates {
		if uint32(rate) >= minRate && uint32(rate) <= maxRate {
			caps.rates = append(caps.rates, rate)
		}
	}

	for _, format := range CommonFormats {
		if hwparams.checkMask(sndrvPCMHwParamFormat, uint32(format)) {
			caps.formats = append(caps.formats, FormatName(format))
		}
	}

	minBuf, maxBuf := hwparams.getInterval(sndrvPCMHwParamBufferSize)
	caps.minBufferSize = int(minBuf)
	caps.maxBufferSize = int(maxBuf)

	minPer, maxPer := hwparams.getInterval(sndrvPCMHwParamPeriodSize)
	caps.minPeriodSize = int(minPer)
	caps.maxPeriodSize = int(maxPer)

	return caps, nil
}
