//go:build linux
// +build linux

package ncu

import (
	"golang.org/x/sys/unix"
)

// systemMemory returns the total system memory in bytes, which bounds the
// device memory pool.
func systemMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return defaultTotalMem
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}
