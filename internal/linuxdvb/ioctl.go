//go:build linux

// Package linuxdvb talks to the Linux DVB character devices under
// /dev/dvb/adapterN/: it implements frontend.Device over frontendN and
// demux.Source over demuxN. Struct layouts and request numbers follow
// the kernel UAPI headers dvb/frontend.h and dvb/dmx.h.
package linuxdvb

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// All DVB ioctls share the 'o' type byte.
const iocType = 'o'

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

// ioc encodes an ioctl request number the way the _IO/_IOR/_IOW macros do.
func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | iocType<<8 | nr
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
