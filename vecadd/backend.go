// Package vecadd implements an occupancy-tuned element-wise vector addition
// pipeline: deterministic host data generation, device buffer management,
// launch geometry derived from device occupancy, a grid-stride addition
// kernel, and verification of the device result against a host reference.
package vecadd

import (
	"sync"
)

// DeviceProps describes the backend capabilities the launch configurator
// and reports need.
type DeviceProps struct {
	Name               string // display name, e.g. "CPU (AVX2+FMA)"
	Processors         int    // multiprocessor count
	MaxThreadsPerBlock int
}

// Buffer is a device-resident float32 buffer.
type Buffer interface {
	// Len returns the element count.
	Len() int
	// Upload copies src into the buffer. len(src) must equal Len.
	Upload(src []float32) error
	// Download copies the buffer into dst. len(dst) must equal Len.
	Download(dst []float32) error
	// Free releases the buffer's device memory.
	Free() error
}

// Backend is a compute device able to run the addition kernel.
type Backend interface {
	// Properties reports the device capabilities.
	Properties() DeviceProps
	// MaxActiveBlocks reports how many blocks of the given size can be
	// concurrently resident on one processor. The result is derived from
	// the live device limits on every call.
	MaxActiveBlocks(blockSize int) (int, error)
	// NewBuffer allocates a device buffer for n float32 elements.
	NewBuffer(n int) (Buffer, error)
	// AddVectors computes y = a + b element-wise over n elements using the
	// given launch geometry. It is synchronous: it returns only after the
	// kernel has finished writing y.
	AddVectors(cfg LaunchConfig, a, b, y Buffer, n int) error
}

var (
	backendMu sync.RWMutex
	backend   Backend
)

// RegisterBackend installs b as the preferred backend returned by
// DefaultBackend. Passing nil clears the registration.
func RegisterBackend(b Backend) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backend = b
}

// DefaultBackend returns the registered backend when one is installed, and
// the CPU backend otherwise.
func DefaultBackend() Backend {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backend != nil {
		return backend
	}
	return defaultCPUBackend
}
