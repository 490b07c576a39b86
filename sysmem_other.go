//go:build !linux
// +build !linux

package ncu

// systemMemory returns the total system memory in bytes. Platforms without
// a memory query fall back to a fixed figure.
func systemMemory() uint64 {
	return defaultTotalMem
}
