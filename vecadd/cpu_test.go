package vecadd

import (
	"testing"

	ncu "github.com/quaternior/aws-ncu"
)

func TestCPUBackendProperties(t *testing.T) {
	dev := ncu.GetDevice()
	props := NewCPUBackend(nil).Properties()

	if props.Name != dev.Name {
		t.Errorf("Name = %q, want %q", props.Name, dev.Name)
	}
	if props.Processors != dev.Processors {
		t.Errorf("Processors = %d, want %d", props.Processors, dev.Processors)
	}
	if props.MaxThreadsPerBlock != dev.MaxThreadsPerBlock {
		t.Errorf("MaxThreadsPerBlock = %d, want %d", props.MaxThreadsPerBlock, dev.MaxThreadsPerBlock)
	}
}

func TestCPUMaxActiveBlocks(t *testing.T) {
	backend := NewCPUBackend(nil)

	for _, blockSize := range []int{1, 64, 256, 1024} {
		got, err := backend.MaxActiveBlocks(blockSize)
		if err != nil {
			t.Fatalf("MaxActiveBlocks(%d) failed: %v", blockSize, err)
		}
		want, err := ncu.OccupancyMaxActiveBlocks(blockSize)
		if err != nil {
			t.Fatalf("OccupancyMaxActiveBlocks(%d) failed: %v", blockSize, err)
		}
		if got != want {
			t.Errorf("MaxActiveBlocks(%d) = %d, want %d", blockSize, got, want)
		}
	}

	if _, err := backend.MaxActiveBlocks(0); !ncu.IsInvalidArgError(err) {
		t.Errorf("blockSize=0: expected invalid argument error, got %v", err)
	}
}

func TestCPUNewBufferInvalid(t *testing.T) {
	backend := NewCPUBackend(nil)

	for _, n := range []int{0, -4} {
		if _, err := backend.NewBuffer(n); !ncu.IsInvalidArgError(err) {
			t.Errorf("NewBuffer(%d): expected invalid argument error, got %v", n, err)
		}
	}
}

func TestCPUBufferRoundTrip(t *testing.T) {
	backend := NewCPUBackend(nil)

	buf, err := backend.NewBuffer(64)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	defer buf.Free()

	if buf.Len() != 64 {
		t.Errorf("Len() = %d, want 64", buf.Len())
	}

	h_src := make([]float32, 64)
	for i := range h_src {
		h_src[i] = float32(i) * 0.5
	}
	if err := buf.Upload(h_src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	h_dst := make([]float32, 64)
	if err := buf.Download(h_dst); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	for i := range h_src {
		if h_dst[i] != h_src[i] {
			t.Fatalf("element %d = %f, want %f", i, h_dst[i], h_src[i])
		}
	}
}

func TestCPUTransferLengthMismatch(t *testing.T) {
	backend := NewCPUBackend(nil)

	buf, err := backend.NewBuffer(16)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	defer buf.Free()

	if err := buf.Upload(make([]float32, 8)); !ncu.IsTransferError(err) {
		t.Errorf("short upload: expected transfer error, got %v", err)
	}
	if err := buf.Download(make([]float32, 32)); !ncu.IsTransferError(err) {
		t.Errorf("long download: expected transfer error, got %v", err)
	}
}

func TestCPUAddVectors(t *testing.T) {
	backend := NewCPUBackend(nil)
	n := 1000

	bufs, err := AllocateBuffers(backend, n)
	if err != nil {
		t.Fatalf("AllocateBuffers failed: %v", err)
	}
	defer bufs.Release()

	h_a := make([]float32, n)
	h_b := make([]float32, n)
	for i := range h_a {
		h_a[i] = float32(i)
		h_b[i] = float32(n - i)
	}
	if err := bufs.Upload(h_a, h_b); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Undersized grid so the stride loop wraps
	if err := backend.AddVectors(LaunchConfig{GridSize: 2, BlockSize: 32}, bufs.a, bufs.b, bufs.y, n); err != nil {
		t.Fatalf("AddVectors failed: %v", err)
	}

	h_y, err := bufs.Download()
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	for i := range h_y {
		if h_y[i] != float32(n) {
			t.Fatalf("y[%d] = %f, want %f", i, h_y[i], float32(n))
		}
	}
}

func TestCPUAddVectorsForeignBuffer(t *testing.T) {
	backend := NewCPUBackend(nil)

	own, err := backend.NewBuffer(8)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	defer own.Free()

	foreign := &fakeBuffer{backend: newFakeBackend(), data: make([]float32, 8)}
	cfg := LaunchConfig{GridSize: 1, BlockSize: 8}

	if err := backend.AddVectors(cfg, foreign, own, own, 8); !ncu.IsInvalidArgError(err) {
		t.Errorf("foreign buffer: expected invalid argument error, got %v", err)
	}
}

func TestCPUAddVectorsCountBounds(t *testing.T) {
	backend := NewCPUBackend(nil)

	bufs, err := AllocateBuffers(backend, 16)
	if err != nil {
		t.Fatalf("AllocateBuffers failed: %v", err)
	}
	defer bufs.Release()

	cfg := LaunchConfig{GridSize: 1, BlockSize: 16}
	if err := backend.AddVectors(cfg, bufs.a, bufs.b, bufs.y, 32); !ncu.IsInvalidArgError(err) {
		t.Errorf("oversized count: expected invalid argument error, got %v", err)
	}
}

// A backend over a small device runs out of pool capacity partway through
// buffer allocation, and the pipeline reports it without leaking.
func TestCPUAllocationExhaustion(t *testing.T) {
	dev := &ncu.Device{
		ID:                     0,
		Name:                   "tiny",
		TotalMem:               8192,
		Processors:             2,
		MaxThreadsPerBlock:     1024,
		MaxThreadsPerProcessor: 2048,
		MaxBlocksPerProcessor:  8,
	}
	backend := NewCPUBackend(ncu.NewContext(dev))

	// Three 4 KiB buffers cannot fit in an 8 KiB pool
	_, err := Run(backend, Params{N: 1024})
	if !ncu.IsAllocationError(err) {
		t.Fatalf("expected allocation error, got %v", err)
	}

	inUse, _ := backend.context().MemoryStats()
	if inUse != 0 {
		t.Errorf("pool in use = %d bytes after failed run, want 0", inUse)
	}

	// A size whose three buffers fit the pool runs end to end
	fits := NewCPUBackend(ncu.NewContext(dev))
	report, err := Run(fits, Params{N: 512})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Passed {
		t.Errorf("verification failed: %+v", report)
	}
}
