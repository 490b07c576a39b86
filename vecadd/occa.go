//go:build occa
// +build occa

package vecadd

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/notargets/gocca"

	ncu "github.com/quaternior/aws-ncu"
)

// Residency model for OCCA compute units. The gocca API does not expose
// occupancy queries, so the backend carries the same per-unit limits the
// CPU device uses.
const (
	occaMaxThreadsPerBlock = 1024
	occaMaxThreadsPerUnit  = 2048
	occaMaxBlocksPerUnit   = 8
)

// occaAddSource is the OKL addition kernel. The grid-stride loop mirrors
// the CPU kernel: @outer iterations are blocks, @inner iterations are
// threads, and each thread walks its global index across the vector.
// BLOCK_SIZE is prepended per block size at build time so the @inner
// extent stays a compile-time constant.
const occaAddSource = `
@kernel void vecAdd(const int n,
                    const int gridSize,
                    const float *a,
                    const float *b,
                    float *y) {
  for (int blk = 0; blk < gridSize; ++blk; @outer) {
    for (int t = 0; t < BLOCK_SIZE; ++t; @inner) {
      for (int i = blk * BLOCK_SIZE + t; i < n; i += gridSize * BLOCK_SIZE) {
        y[i] = a[i] + b[i];
      }
    }
  }
}
`

// OCCABackend runs the addition kernel through an OCCA device (Serial,
// OpenMP, CUDA, or HIP depending on the mode). It is compiled in with the
// occa build tag.
type OCCABackend struct {
	device  *gocca.OCCADevice
	mode    string
	kernels map[int]*gocca.OCCAKernel // compiled per block size
}

// NewOCCABackend creates a backend on an OCCA device in the given mode
// ("Serial", "OpenMP", "CUDA", ...). An empty mode selects Serial.
func NewOCCABackend(mode string) (*OCCABackend, error) {
	if mode == "" {
		mode = "Serial"
	}
	device, err := gocca.NewDevice(fmt.Sprintf(`{"mode": %q}`, mode))
	if err != nil {
		return nil, ncu.NewDeviceError("NewOCCABackend",
			fmt.Sprintf("create OCCA device in mode %s", mode), err)
	}
	return &OCCABackend{
		device:  device,
		mode:    mode,
		kernels: make(map[int]*gocca.OCCAKernel),
	}, nil
}

// RegisterOCCABackend creates a Serial-mode OCCA backend and installs it as
// the default. Callers that want another mode construct it themselves and
// call RegisterBackend.
func RegisterOCCABackend() error {
	b, err := NewOCCABackend("")
	if err != nil {
		return err
	}
	RegisterBackend(b)
	return nil
}

// Properties reports the device capabilities.
func (o *OCCABackend) Properties() DeviceProps {
	return DeviceProps{
		Name:               "OCCA " + o.mode,
		Processors:         runtime.NumCPU(),
		MaxThreadsPerBlock: occaMaxThreadsPerBlock,
	}
}

// MaxActiveBlocks reports per-unit residency from the carried limits.
func (o *OCCABackend) MaxActiveBlocks(blockSize int) (int, error) {
	if blockSize < 1 || blockSize > occaMaxThreadsPerBlock {
		return 0, ncu.NewInvalidArgError("MaxActiveBlocks",
			fmt.Sprintf("block size %d out of range [1, %d]", blockSize, occaMaxThreadsPerBlock))
	}
	blocks := occaMaxThreadsPerUnit / blockSize
	if blocks > occaMaxBlocksPerUnit {
		blocks = occaMaxBlocksPerUnit
	}
	if blocks < 1 {
		blocks = 1
	}
	return blocks, nil
}

// kernelFor returns the addition kernel compiled for the given block size,
// building and caching it on first use.
func (o *OCCABackend) kernelFor(blockSize int) (*gocca.OCCAKernel, error) {
	if k, ok := o.kernels[blockSize]; ok {
		return k, nil
	}
	src := fmt.Sprintf("#define BLOCK_SIZE %d\n%s", blockSize, occaAddSource)
	k, err := o.device.BuildKernelFromString(src, "vecAdd", nil)
	if err != nil {
		return nil, ncu.NewLaunchError("BuildKernel",
			fmt.Sprintf("compile vecAdd for block size %d", blockSize), err)
	}
	o.kernels[blockSize] = k
	return k, nil
}

// occaBuffer is a Buffer backed by OCCA device memory.
type occaBuffer struct {
	mem *gocca.OCCAMemory
	n   int
}

// NewBuffer allocates OCCA device memory for n float32 elements.
func (o *OCCABackend) NewBuffer(n int) (Buffer, error) {
	if n < 1 {
		return nil, ncu.NewInvalidArgError("NewBuffer",
			fmt.Sprintf("element count must be positive, got %d", n))
	}
	mem := o.device.Malloc(int64(n)*4, nil, nil)
	if mem == nil {
		return nil, ncu.NewAllocationError("NewBuffer",
			fmt.Sprintf("OCCA allocation of %d bytes failed", n*4), nil)
	}
	return &occaBuffer{mem: mem, n: n}, nil
}

func (b *occaBuffer) Len() int {
	return b.n
}

func (b *occaBuffer) Upload(src []float32) error {
	if len(src) != b.n {
		return ncu.NewTransferError("Upload",
			fmt.Sprintf("host length %d does not match buffer length %d", len(src), b.n), nil)
	}
	b.mem.CopyFrom(unsafe.Pointer(&src[0]), int64(b.n)*4)
	return nil
}

func (b *occaBuffer) Download(dst []float32) error {
	if len(dst) != b.n {
		return ncu.NewTransferError("Download",
			fmt.Sprintf("host length %d does not match buffer length %d", len(dst), b.n), nil)
	}
	b.mem.CopyTo(unsafe.Pointer(&dst[0]), int64(b.n)*4)
	return nil
}

func (b *occaBuffer) Free() error {
	b.mem.Free()
	return nil
}

// AddVectors dispatches the OKL kernel and blocks until the device is done.
func (o *OCCABackend) AddVectors(cfg LaunchConfig, a, b, y Buffer, n int) error {
	d_a, ok1 := a.(*occaBuffer)
	d_b, ok2 := b.(*occaBuffer)
	d_y, ok3 := y.(*occaBuffer)
	if !ok1 || !ok2 || !ok3 {
		return ncu.NewInvalidArgError("AddVectors",
			"buffers were not allocated by the OCCA backend")
	}

	kernel, err := o.kernelFor(cfg.BlockSize)
	if err != nil {
		return err
	}

	if err := kernel.RunWithArgs(int32(n), int32(cfg.GridSize), d_a.mem, d_b.mem, d_y.mem); err != nil {
		return ncu.NewLaunchError("AddVectors", "kernel dispatch failed", err)
	}
	o.device.Finish()
	return nil
}

// Free releases the compiled kernels and the OCCA device.
func (o *OCCABackend) Free() {
	for _, k := range o.kernels {
		k.Free()
	}
	o.device.Free()
}
