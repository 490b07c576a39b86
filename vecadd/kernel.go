package vecadd

import (
	ncu "github.com/quaternior/aws-ncu"
)

// addKernel returns the grid-stride addition kernel over the given device
// views. Each execution unit starts at its global index and advances by the
// total number of launched units, so any legal launch geometry covers every
// index in [0, n) exactly once, including grids smaller than the coverage
// count.
func addKernel(a, b, y []float32, n int) ncu.KernelFunc {
	return func(tid ncu.ThreadID, _ ...interface{}) {
		stride := tid.GridStride()
		for i := tid.Global(); i < n; i += stride {
			y[i] = a[i] + b[i]
		}
	}
}
