//go:build linux && arm

package alsa

import "unsafe"

// Compile-time struct size assertions for 32-bit ARM.
var (
	_ [376]byte = [unsafe.Sizeof(sndCtlCardInfo{})]byte{}
	_ [288]byte = [unsafe.Sizeof(sndPCMInfo{})]byte{}
	_ [604]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(sndCtlElemID{})]byte{}
	_ [72]byte  = [unsafe.Sizeof(sndCtlElemList{})]byte{}
)

// IOCTL constants for 32-bit ARM.
// Structs holding pointers or longs are smaller here, so their request codes differ.
const (
	// Control interface IOCTLs.
	sndrvCtlIoctlPVersion      = 0x80045500
	sndrvCtlIoctlCardInfo      = 0x81785501
	sndrvCtlIoctlElemList      = 0xc0485510 // 72 bytes on 32-bit vs 80 on 64-bit
	sndrvCtlIoctlPCMNextDevice = 0x80045530
	sndrvCtlIoctlPCMInfo       = 0xc1205531

	// PCM IOCTLs.
	sndrvPCMIoctlInfo     = 0x81204101
	sndrvPCMIoctlHwRefine = 0xc25c4110 // 604 bytes on 32-bit vs 608 on 64-bit
	sndrvPCMIoctlHwParams = 0xc25c4111
	sndrvPCMIoctlSwParams = 0xc0684113
	sndrvPCMIoctlPrepare  = 0x00004140
)

// Hardware parameter constants.
const (
	sndrvPCMHwParamAccess        = 0
	sndrvPCMHwParamFormat        = 1
	sndrvPCMHwParamSubformat     = 2
	sndrvPCMHwParamFirstMask     = 0
	sndrvPCMHwParamLastMask      = 2
	sndrvPCMHwParamSampleBits    = 8
	sndrvPCMHwParamFrameBits     = 9
	sndrvPCMHwParamChannels      = 10
	sndrvPCMHwParamRate          = 11
	sndrvPCMHwParamPeriodTime    = 12
	sndrvPCMHwParamPeriodSize    = 13
	sndrvPCMHwParamPeriodBytes   = 14
	sndrvPCMHwParamPeriods       = 15
	sndrvPCMHwParamBufferTime    = 16
	sndrvPCMHwParamBufferSize    = 17
	sndrvPCMHwParamBufferBytes   = 18
	sndrvPCMHwParamTickTime      = 19
	sndrvPCMHwParamFirstInterval = 8
	sndrvPCMHwParamLastInterval  = 19

	sndrvMaskMax = 256

	sndrvPCMAccessRwInterleaved = 3
)

// sndCtlCardInfo has size 376 bytes (no pointers, same as 64-bit).
type sndCtlCardInfo struct {
	card       int32
	_          [4]byte
	id         [16]byte
	driver     [16]byte
	name       [32]byte
	longname   [80]byte
	reserved   [16]byte
	mixername  [80]byte
	components [128]byte
}

// sndCtlElemList has size 72 bytes.
type sndCtlElemList struct {
	offset   uint32
	space    uint32
	used     uint32
	count    uint32
	pids     uint32 // struct snd_ctl_elem_id __user *
	reserved [50]byte
	_        [2]byte
}

func (l *sndCtlElemList) setPids(p unsafe.Pointer) {
	l.pids = uint32(uintptr(p))
}

// sndPCMInfo has size 288 bytes (no pointers, same as 64-bit).
type sndPCMInfo struct {
	device          uint32
	subdevice       uint32
	stream          int32
	card            int32
	id              [64]byte
	name            [80]byte
	subname         [32]byte
	devClass        int32
	devSubclass     int32
	subdevicesCount uint32
	subdevicesAvail uint32
	_               [16]byte
	reserved        [64]byte
}

type sndMask struct {
	bits [(sndrvMaskMax + 31) / 32]uint32
}

type sndInterval struct {
	minVal uint32
	maxVal uint32
	bit    uint32
}

// sndPCMHwParams has size 604 bytes on 32-bit.
// fifoSize is snd_pcm_uframes_t, 4 bytes here and 8 on 64-bit.
type sndPCMHwParams struct {
	flags     uint32
	masks     [sndrvPCMHwParamLastMask - sndrvPCMHwParamFirstMask + 1]sndMask
	mres      [5]sndMask
	intervals [sndrvPCMHwParamLastInterval - sndrvPCMHwParamFirstInterval + 1]sndInterval
	ires      [9]sndInterval
	rmask     uint32
	cmask     uint32
	info      uint32
	msbits    uint32
	rateNum   uint32
	rateDen   uint32
	fifoSize  uint32
	reserved  [64]byte
}

func (p *sndPCMHwParams) init() {
	for i := range p.masks {
		p.masks[i].bits[0] = 0xFFFFFFFF
		p.masks[i].bits[1] = 0xFFFFFFFF
	}
	for i := range p.intervals {
		p.intervals[i].maxVal = 0xFFFFFFFF
	}
	p.rmask = 0xFFFFFFFF
	p.cmask = 0
	p.info = 0xFFFFFFFF
}

func (p *sndPCMHwParams) setMask(param, val uint32) {
	p.masks[param].bits[0] = 0
	p.masks[param].bits[1] = 0
	p.masks[param].bits[val>>5] = 1 << (val & 0x1F)
}

func (p *sndPCMHwParams) checkMask(param, val uint32) bool {
	return p.masks[param].bits[val>>5]&(1<<(val&0x1F)) > 0
}

func (p *sndPCMHwParams) getInterval(param uint32) (minVal, maxVal uint32) {
	idx := param - sndrvPCMHwParamFirstInterval
	return p.intervals[idx].minVal, p.intervals[idx].maxVal
}
