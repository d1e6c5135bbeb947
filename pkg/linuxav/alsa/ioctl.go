//go:build linux

package alsa

import (
	"bytes"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctlFunc issues the raw ioctl. Tests replace it to simulate kernel replies.
var ioctlFunc = func(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	return ioctlFunc(fd, req, arg)
}

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
