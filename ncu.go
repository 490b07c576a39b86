// Package ncu provides a CUDA-style compute runtime that executes on the
// host CPU. It exposes device memory allocation, host/device transfers,
// occupancy queries, and grid/block kernel launches with the same shape as
// a GPU runtime, so pipelines written against it port across backends.
//
// Example usage:
//
//	d_a, _ := ncu.Malloc(n * 4) // n float32s
//	defer ncu.Free(d_a)
//
//	ncu.Memcpy(d_a, h_a, n*4, ncu.MemcpyHostToDevice)
//
//	grid := ncu.Dim3{X: (n + 255) / 256, Y: 1, Z: 1}
//	block := ncu.Dim3{X: 256, Y: 1, Z: 1}
//	ncu.LaunchFunc(myKernel, grid, block)
//	ncu.Synchronize()
package ncu

// Context represents an execution context for runtime operations. It owns a
// device's memory pool and the single in-order stream that launches and
// synchronization go through.
type Context struct {
	device *Device
	memory *MemoryPool
	stream *Stream
}

// Global runtime state
var (
	defaultDevice  *Device
	defaultContext *Context
)

func init() {
	defaultDevice = newDefaultDevice()
	defaultContext = NewContext(defaultDevice)
}

// NewContext creates an execution context for the given device. The memory
// pool capacity follows the device's TotalMem.
func NewContext(dev *Device) *Context {
	return &Context{
		device: dev,
		memory: NewMemoryPool(int64(dev.TotalMem)),
		stream: newStream(),
	}
}

// DefaultContext returns the context every package-level call goes through.
func DefaultContext() *Context {
	return defaultContext
}

// Device returns the device this context executes on.
func (ctx *Context) Device() *Device {
	return ctx.device
}

// Synchronize waits for all work submitted to the context to complete.
func (ctx *Context) Synchronize() error {
	ctx.stream.Synchronize()
	return nil
}

// MemoryStats returns the context pool's live and peak allocation sizes in
// bytes.
func (ctx *Context) MemoryStats() (inUse, peak int64) {
	return ctx.memory.GetStats()
}

// Package-level API over the default context.

// Malloc allocates device memory of the specified size in bytes.
//
// Example:
//
//	d_data, err := ncu.Malloc(1024 * 4) // Allocate 1024 float32s
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ncu.Free(d_data)
func Malloc(size int) (DevicePtr, error) {
	return defaultContext.Malloc(size)
}

// Free releases device memory allocated by Malloc.
// It is safe to call Free with a zero-value DevicePtr.
func Free(ptr DevicePtr) error {
	return defaultContext.Free(ptr)
}

// Memcpy copies memory between host and device on the default context.
//
// Example:
//
//	h_data := make([]float32, 1024)
//	d_data, _ := ncu.Malloc(1024 * 4)
//	err := ncu.Memcpy(d_data, h_data, 1024*4, ncu.MemcpyHostToDevice)
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	return defaultContext.Memcpy(dst, src, size, kind)
}

// Launch executes a kernel on the default stream.
//
// Example:
//
//	kernel := MyKernel{}
//	err := ncu.Launch(kernel, ncu.Dim3{X: 256, Y: 1, Z: 1}, ncu.Dim3{X: 64, Y: 1, Z: 1})
func Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return defaultContext.Launch(kernel, grid, block, args...)
}

// LaunchFunc executes a kernel function on the default stream.
func LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return defaultContext.LaunchFunc(fn, grid, block, args...)
}

// Synchronize waits for all operations on the default context to complete,
// ensuring previously launched kernels and memory operations have finished.
//
// Example:
//
//	ncu.Launch(kernel, grid, block)
//	err := ncu.Synchronize() // Wait for kernel to complete
func Synchronize() error {
	return defaultContext.Synchronize()
}

// MemoryStats returns the default context pool's live and peak allocation
// sizes in bytes.
func MemoryStats() (inUse, peak int64) {
	return defaultContext.MemoryStats()
}
