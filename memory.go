package ncu

import (
	"fmt"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer. The runtime's
// device memory is host-resident, so every direction is performed by the
// same copy; the constants are kept for device-style call sites.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// DevicePtr is an opaque handle to device memory allocated from a pool.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
}

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead, detects double frees, and enforces a capacity
// matching the device's total memory.
type MemoryPool struct {
	mu        sync.Mutex
	capacity  int64 // bytes; 0 means unlimited
	allocated map[uintptr]*allocation
	freeList  []*allocation
	inUse     int64
	peakUse   int64
}

type allocation struct {
	buf  []byte // retained so the block stays reachable while pooled
	ptr  unsafe.Pointer
	size int
	used bool
}

// NewMemoryPool creates a memory pool holding at most capacity bytes of
// live allocations. A capacity of 0 disables the limit.
func NewMemoryPool(capacity int64) *MemoryPool {
	return &MemoryPool{
		capacity:  capacity,
		allocated: make(map[uintptr]*allocation),
	}
}

// Malloc allocates device memory of the specified size in bytes.
// The memory is aligned for SIMD access.
//
// Example:
//
//	d_data, err := ctx.Malloc(1024 * 4) // Allocate 1024 float32s
//	if err != nil {
//	    return err
//	}
//	defer ctx.Free(d_data)
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free releases device memory allocated by Malloc.
// It is safe to call Free with a zero DevicePtr.
// The memory may be retained in the pool for future allocations.
func (ctx *Context) Free(ptr DevicePtr) error {
	return ctx.memory.Free(ptr)
}

// Memcpy copies size bytes between host and device memory. dst and src may
// each be a DevicePtr or a Go slice ([]float32, []float64, []int32,
// []byte). The transfer fails with a Transfer error when size exceeds
// either operand's capacity. kind records the intended direction; all
// directions share the same host-resident copy.
//
// Example:
//
//	h_data := make([]float32, 1024)
//	d_data, _ := ctx.Malloc(1024 * 4)
//	ctx.Memcpy(d_data, h_data, 1024*4, ncu.MemcpyHostToDevice)
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	if size < 0 {
		return NewInvalidArgError("Memcpy", fmt.Sprintf("negative size %d", size))
	}
	if size == 0 {
		return nil
	}

	dstPtr, dstCap, err := memcpyOperand("dst", dst)
	if err != nil {
		return err
	}
	srcPtr, srcCap, err := memcpyOperand("src", src)
	if err != nil {
		return err
	}
	if dstPtr == nil || srcPtr == nil {
		return ErrNullPointer
	}
	if size > dstCap {
		return NewTransferError("Memcpy",
			fmt.Sprintf("size %d exceeds destination capacity %d", size, dstCap), nil)
	}
	if size > srcCap {
		return NewTransferError("Memcpy",
			fmt.Sprintf("size %d exceeds source capacity %d", size, srcCap), nil)
	}

	copy(unsafe.Slice((*byte)(dstPtr), size), unsafe.Slice((*byte)(srcPtr), size))
	return nil
}

// memcpyOperand resolves a Memcpy operand to its base pointer and capacity
// in bytes.
func memcpyOperand(name string, v interface{}) (unsafe.Pointer, int, error) {
	switch x := v.(type) {
	case DevicePtr:
		return x.ptr, x.size, nil
	case []float32:
		if len(x) == 0 {
			return nil, 0, nil
		}
		return unsafe.Pointer(&x[0]), len(x) * 4, nil
	case []float64:
		if len(x) == 0 {
			return nil, 0, nil
		}
		return unsafe.Pointer(&x[0]), len(x) * 8, nil
	case []int32:
		if len(x) == 0 {
			return nil, 0, nil
		}
		return unsafe.Pointer(&x[0]), len(x) * 4, nil
	case []byte:
		if len(x) == 0 {
			return nil, 0, nil
		}
		return unsafe.Pointer(&x[0]), len(x), nil
	default:
		return nil, 0, NewInvalidArgError("Memcpy",
			fmt.Sprintf("unsupported %s type: %T", name, v))
	}
}

// MemoryPool methods

// Allocate allocates memory from the pool.
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	// Round up to alignment
	const alignment = 64 // Cache line size
	alignedSize := (size + alignment - 1) &^ (alignment - 1)

	// Try to reuse from free list. A recycled block charges its full
	// retained size, so it must clear the capacity limit as well.
	for i, alloc := range mp.freeList {
		if alloc.size < alignedSize {
			continue
		}
		if mp.capacity > 0 && mp.inUse+int64(alloc.size) > mp.capacity {
			continue
		}
		mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
		alloc.used = true
		mp.track(int64(alloc.size))

		return DevicePtr{
			ptr:  alloc.ptr,
			size: size,
		}, nil
	}

	if mp.capacity > 0 && mp.inUse+int64(alignedSize) > mp.capacity {
		return DevicePtr{}, ErrOutOfMemory
	}

	// The backing slice is kept on the allocation record; a bare pointer
	// would let the GC collect the block while device code still uses it.
	buf := make([]byte, alignedSize)
	alloc := &allocation{
		buf:  buf,
		ptr:  unsafe.Pointer(&buf[0]),
		size: alignedSize,
		used: true,
	}

	mp.allocated[uintptr(alloc.ptr)] = alloc
	mp.track(int64(alignedSize))

	return DevicePtr{
		ptr:  alloc.ptr,
		size: size,
	}, nil
}

// track adjusts the in-use byte count. Callers hold mp.mu.
func (mp *MemoryPool) track(delta int64) {
	mp.inUse += delta
	if mp.inUse > mp.peakUse {
		mp.peakUse = mp.inUse
	}
}

// Free returns memory to the pool. Freeing an already freed pointer fails
// with ErrDoubleFree; freeing a zero DevicePtr is a no-op.
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	if ptr.ptr == nil {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewAllocationError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	// Mark as free and add to free list
	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.track(-int64(alloc.size))

	return nil
}

// GetStats returns the pool's live and peak allocation sizes in bytes.
func (mp *MemoryPool) GetStats() (inUse, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.inUse, mp.peakUse
}

// DevicePtr methods for convenience

// Float32 returns a float32 slice view of the device memory.
// The slice can be used directly for reading and writing data.
//
// Example:
//
//	d_data, _ := ncu.Malloc(1024 * 4) // Allocate for 1024 float32s
//	data := d_data.Float32()
//	data[0] = 3.14 // Direct access
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float32)(d.ptr), d.size/4)
}

// Float64 returns a float64 slice view of the device memory.
func (d DevicePtr) Float64() []float64 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float64)(d.ptr), d.size/8)
}

// Int32 returns an int32 slice view of the device memory.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*int32)(d.ptr), d.size/4)
}

// Byte returns a byte slice view of the entire device memory region.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(d.ptr), d.size)
}

// Offset returns a new DevicePtr advanced by the given number of bytes.
// The returned DevicePtr shares the same underlying memory; only the base
// pointer may be passed back to Free.
//
// Example:
//
//	d_array, _ := ncu.Malloc(1024 * 4)        // 1024 float32s
//	d_upper := d_array.Offset(512 * 4)        // Start at element 512
//	data := d_upper.Float32()                 // Access second half
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Add(d.ptr, bytes),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region.
func (d DevicePtr) Size() int {
	return d.size
}
