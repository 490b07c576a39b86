package ncu

import (
	"fmt"
	"runtime"
)

// Hardware model limits for the CPU device. Each logical CPU is treated as
// one multiprocessor; the per-processor capacities bound how many blocks the
// scheduler keeps resident at once.
const (
	defaultMaxThreadsPerBlock     = 1024
	defaultMaxThreadsPerProcessor = 2048
	defaultMaxBlocksPerProcessor  = 8

	// defaultTotalMem is used when the platform memory query is unavailable.
	defaultTotalMem = 16 * 1024 * 1024 * 1024
)

// Device represents a compute device. In ncu this is the host CPU, with one
// multiprocessor per logical core and device memory backed by system RAM.
type Device struct {
	ID                     int
	Name                   string
	TotalMem               uint64 // bytes available to the memory pool
	Processors             int    // multiprocessor count (logical CPUs)
	MaxThreadsPerBlock     int
	MaxThreadsPerProcessor int
	MaxBlocksPerProcessor  int
}

func newDefaultDevice() *Device {
	return &Device{
		ID:                     0,
		Name:                   deviceName(),
		TotalMem:               systemMemory(),
		Processors:             runtime.NumCPU(),
		MaxThreadsPerBlock:     defaultMaxThreadsPerBlock,
		MaxThreadsPerProcessor: defaultMaxThreadsPerProcessor,
		MaxBlocksPerProcessor:  defaultMaxBlocksPerProcessor,
	}
}

// OccupancyMaxActiveBlocks reports how many blocks of the given size can be
// concurrently resident on one processor. Kernel resource usage is not
// modeled, so occupancy depends only on the block size and the device
// limits. The result is recomputed from those limits on every call; nothing
// is cached between calls.
func (d *Device) OccupancyMaxActiveBlocks(blockSize int) (int, error) {
	if blockSize < 1 || blockSize > d.MaxThreadsPerBlock {
		return 0, NewInvalidArgError("OccupancyMaxActiveBlocks",
			fmt.Sprintf("block size %d out of range [1, %d]", blockSize, d.MaxThreadsPerBlock))
	}
	blocks := d.MaxThreadsPerProcessor / blockSize
	if blocks > d.MaxBlocksPerProcessor {
		blocks = d.MaxBlocksPerProcessor
	}
	if blocks < 1 {
		// A processor can always run one block at a time.
		blocks = 1
	}
	return blocks, nil
}

// MaxActiveBlocks reports the device-wide residency ceiling for the given
// block size: the per-processor occupancy times the processor count.
func (d *Device) MaxActiveBlocks(blockSize int) (int, error) {
	perProcessor, err := d.OccupancyMaxActiveBlocks(blockSize)
	if err != nil {
		return 0, err
	}
	return perProcessor * d.Processors, nil
}

// GetDevice returns the default device.
func GetDevice() *Device {
	return defaultDevice
}

// GetDeviceCount returns the number of available devices. The CPU runtime
// always exposes exactly one.
func GetDeviceCount() int {
	return 1
}

// SetDevice selects the active device. Only device 0 exists.
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// GetDeviceProperties returns the properties of the given device.
func GetDeviceProperties(id int) (*Device, error) {
	if id != 0 {
		return nil, NewDeviceError("GetDeviceProperties",
			fmt.Sprintf("no device with ID %d", id), nil)
	}
	return defaultDevice, nil
}

// OccupancyMaxActiveBlocks reports the default device's per-processor
// occupancy for the given block size.
func OccupancyMaxActiveBlocks(blockSize int) (int, error) {
	return defaultDevice.OccupancyMaxActiveBlocks(blockSize)
}
