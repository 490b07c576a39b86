package vecadd

import (
	"fmt"

	ncu "github.com/quaternior/aws-ncu"
)

// CPUBackend runs the pipeline on the ncu CPU runtime: buffers live in the
// runtime's device memory pool and the kernel executes across worker
// goroutines on the default stream.
type CPUBackend struct {
	ctx *ncu.Context
}

var defaultCPUBackend = &CPUBackend{}

// NewCPUBackend creates a CPU backend over the given context. A nil ctx
// uses the runtime's default context.
func NewCPUBackend(ctx *ncu.Context) *CPUBackend {
	return &CPUBackend{ctx: ctx}
}

func (c *CPUBackend) context() *ncu.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return ncu.DefaultContext()
}

// Properties reports the device capabilities.
func (c *CPUBackend) Properties() DeviceProps {
	dev := c.context().Device()
	return DeviceProps{
		Name:               dev.Name,
		Processors:         dev.Processors,
		MaxThreadsPerBlock: dev.MaxThreadsPerBlock,
	}
}

// MaxActiveBlocks queries the device occupancy for the given block size.
func (c *CPUBackend) MaxActiveBlocks(blockSize int) (int, error) {
	return c.context().Device().OccupancyMaxActiveBlocks(blockSize)
}

// cpuBuffer is a Buffer backed by the runtime's device memory pool.
type cpuBuffer struct {
	ctx *ncu.Context
	ptr ncu.DevicePtr
	n   int
}

// NewBuffer allocates a device buffer for n float32 elements.
func (c *CPUBackend) NewBuffer(n int) (Buffer, error) {
	if n < 1 {
		return nil, ncu.NewInvalidArgError("NewBuffer",
			fmt.Sprintf("element count must be positive, got %d", n))
	}
	ctx := c.context()
	ptr, err := ctx.Malloc(n * 4)
	if err != nil {
		return nil, err
	}
	return &cpuBuffer{ctx: ctx, ptr: ptr, n: n}, nil
}

func (b *cpuBuffer) Len() int {
	return b.n
}

func (b *cpuBuffer) Upload(src []float32) error {
	if len(src) != b.n {
		return ncu.NewTransferError("Upload",
			fmt.Sprintf("host length %d does not match buffer length %d", len(src), b.n), nil)
	}
	return b.ctx.Memcpy(b.ptr, src, b.n*4, ncu.MemcpyHostToDevice)
}

func (b *cpuBuffer) Download(dst []float32) error {
	if len(dst) != b.n {
		return ncu.NewTransferError("Download",
			fmt.Sprintf("host length %d does not match buffer length %d", len(dst), b.n), nil)
	}
	return b.ctx.Memcpy(dst, b.ptr, b.n*4, ncu.MemcpyDeviceToHost)
}

func (b *cpuBuffer) Free() error {
	return b.ctx.Free(b.ptr)
}

// AddVectors dispatches the grid-stride addition kernel and waits for it.
func (c *CPUBackend) AddVectors(cfg LaunchConfig, a, b, y Buffer, n int) error {
	d_a, ok1 := a.(*cpuBuffer)
	d_b, ok2 := b.(*cpuBuffer)
	d_y, ok3 := y.(*cpuBuffer)
	if !ok1 || !ok2 || !ok3 {
		return ncu.NewInvalidArgError("AddVectors",
			"buffers were not allocated by the CPU backend")
	}
	if n > d_a.n || n > d_b.n || n > d_y.n {
		return ncu.NewInvalidArgError("AddVectors",
			fmt.Sprintf("element count %d exceeds a buffer length", n))
	}

	ctx := c.context()
	kernel := addKernel(d_a.ptr.Float32(), d_b.ptr.Float32(), d_y.ptr.Float32(), n)
	grid := ncu.Dim3{X: cfg.GridSize, Y: 1, Z: 1}
	block := ncu.Dim3{X: cfg.BlockSize, Y: 1, Z: 1}

	if err := ctx.LaunchFunc(kernel, grid, block); err != nil {
		return err
	}
	return ctx.Synchronize()
}
