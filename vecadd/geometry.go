package vecadd

import (
	"fmt"

	ncu "github.com/quaternior/aws-ncu"
)

// DefaultBlockSize is the number of threads per block used when Params does
// not override it.
const DefaultBlockSize = 256

// LaunchConfig is the derived launch geometry for one kernel dispatch.
type LaunchConfig struct {
	GridSize  int // blocks in the grid
	BlockSize int // threads per block
}

// Configure derives the launch geometry for n elements from the backend's
// occupancy. The grid is the smaller of the device residency ceiling
// (processors times resident blocks per processor for this block size) and
// the coverage count ceil(n / blockSize), floored at one block. The
// occupancy query runs on every call, so geometry follows any change in
// device limits or block size.
func Configure(b Backend, n, blockSize int) (LaunchConfig, error) {
	if n < 1 {
		return LaunchConfig{}, ncu.NewInvalidArgError("Configure",
			fmt.Sprintf("element count must be positive, got %d", n))
	}
	if blockSize < 1 {
		return LaunchConfig{}, ncu.NewInvalidArgError("Configure",
			fmt.Sprintf("block size must be positive, got %d", blockSize))
	}

	perProcessor, err := b.MaxActiveBlocks(blockSize)
	if err != nil {
		return LaunchConfig{}, err
	}

	ceiling := b.Properties().Processors * perProcessor
	coverage := (n + blockSize - 1) / blockSize

	grid := min(ceiling, coverage)
	if grid < 1 {
		grid = 1
	}

	return LaunchConfig{GridSize: grid, BlockSize: blockSize}, nil
}
