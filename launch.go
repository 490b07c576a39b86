package ncu

import (
	"fmt"
	"runtime"
	"sync"
)

// Dim3 represents 3D dimensions for grid and block configurations,
// matching CUDA's dim3 structure for kernel launch parameters.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of elements.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// ThreadID identifies an execution unit's position within the launch
// hierarchy. It provides the same indexing semantics as CUDA's built-in
// variables: blockIdx, threadIdx, blockDim, and gridDim.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// Global returns the global linear index along X.
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GridStride returns the total number of execution units launched along X.
// Grid-stride kernels advance by this amount so that any launch geometry
// covers every element exactly once.
func (tid ThreadID) GridStride() int {
	return tid.GridDim.X * tid.BlockDim.X
}

// Kernel represents a compute kernel that can be executed in parallel.
// Implementations must be safe for concurrent calls, as Execute runs
// simultaneously on multiple goroutines.
type Kernel interface {
	Execute(tid ThreadID, args ...interface{})
}

// KernelFunc is a function that can be launched as a kernel.
type KernelFunc func(tid ThreadID, args ...interface{})

// Execute implements Kernel.
func (fn KernelFunc) Execute(tid ThreadID, args ...interface{}) {
	fn(tid, args...)
}

// Stream is an ordered queue of device operations. Work submitted to a
// stream runs asynchronously in submission order; Synchronize blocks until
// everything submitted so far has completed.
type Stream struct {
	tasks chan func()
	wg    sync.WaitGroup
}

func newStream() *Stream {
	s := &Stream{
		tasks: make(chan func(), 64),
	}
	go s.worker()
	return s
}

// worker processes tasks for a stream.
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
}

// Submit adds a task to the stream.
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize waits for all tasks in the stream to complete.
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Launch executes a kernel on the context's default stream.
func (ctx *Context) Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return ctx.launchInternal(kernel.Execute, grid, block, args...)
}

// LaunchFunc executes a kernel function on the context's default stream.
func (ctx *Context) LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return ctx.launchInternal(fn, grid, block, args...)
}

// validateLaunch rejects geometries the device cannot schedule: any zero or
// negative dimension, or a block exceeding the device thread limit.
func validateLaunch(grid, block Dim3, dev *Device) error {
	if grid.X < 1 || grid.Y < 1 || grid.Z < 1 {
		return NewLaunchError("Launch",
			fmt.Sprintf("invalid grid dimensions %dx%dx%d", grid.X, grid.Y, grid.Z), nil)
	}
	if block.X < 1 || block.Y < 1 || block.Z < 1 {
		return NewLaunchError("Launch",
			fmt.Sprintf("invalid block dimensions %dx%dx%d", block.X, block.Y, block.Z), nil)
	}
	if block.Size() > dev.MaxThreadsPerBlock {
		return NewLaunchError("Launch",
			fmt.Sprintf("block size %d exceeds device limit %d", block.Size(), dev.MaxThreadsPerBlock), nil)
	}
	return nil
}

// launchInternal implements the core kernel execution logic. Blocks are
// distributed across one worker goroutine per logical CPU; threads within a
// block run sequentially on their worker, which maximizes cache reuse and
// avoids per-thread synchronization.
func (ctx *Context) launchInternal(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	args ...interface{},
) error {
	if err := validateLaunch(grid, block, ctx.device); err != nil {
		return err
	}

	gridSize := grid.Size()
	blockSize := block.Size()

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	// Each worker processes a contiguous run of blocks.
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	ctx.stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := min(startBlock+blocksPerWorker, gridSize)

			go func(startBlock, endBlock int) {
				defer wg.Done()

				for blockID := startBlock; blockID < endBlock; blockID++ {
					blockIdx := linearTo3D(blockID, grid)

					for threadID := 0; threadID < blockSize; threadID++ {
						tid := ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: linearTo3D(threadID, block),
							BlockDim:  block,
							GridDim:   grid,
						}
						kernelFunc(tid, args...)
					}
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
	})

	return nil
}

// linearTo3D converts a linear index to 3D coordinates.
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
