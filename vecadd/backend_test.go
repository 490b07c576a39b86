package vecadd

import (
	"testing"

	ncu "github.com/quaternior/aws-ncu"
)

// fakeBackend is a host-slice backend with switchable faults. Tests use it
// to drive the pipeline through every failure stage and to observe the
// geometry and buffer traffic the pipeline produces.
type fakeBackend struct {
	procs       int
	maxResident int
	maxThreads  int

	failAllocAt  int // 1-based NewBuffer call to fail; 0 never fails
	failUpload   bool
	failLaunch   bool
	failDownload bool
	failFree     bool
	corrupt      bool // perturb one output element after the add

	allocs   int
	frees    int
	live     int
	launches int
	lastCfg  LaunchConfig
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{procs: 4, maxResident: 8, maxThreads: 1024}
}

func (f *fakeBackend) Properties() DeviceProps {
	return DeviceProps{Name: "fake", Processors: f.procs, MaxThreadsPerBlock: f.maxThreads}
}

func (f *fakeBackend) MaxActiveBlocks(blockSize int) (int, error) {
	if blockSize < 1 || blockSize > f.maxThreads {
		return 0, ncu.NewInvalidArgError("MaxActiveBlocks", "block size out of range")
	}
	return f.maxResident, nil
}

func (f *fakeBackend) NewBuffer(n int) (Buffer, error) {
	f.allocs++
	if f.failAllocAt > 0 && f.allocs == f.failAllocAt {
		return nil, ncu.ErrOutOfMemory
	}
	f.live++
	return &fakeBuffer{backend: f, data: make([]float32, n)}, nil
}

func (f *fakeBackend) AddVectors(cfg LaunchConfig, a, b, y Buffer, n int) error {
	f.launches++
	f.lastCfg = cfg
	if f.failLaunch {
		return ncu.NewLaunchError("AddVectors", "injected launch fault", nil)
	}

	d_a := a.(*fakeBuffer)
	d_b := b.(*fakeBuffer)
	d_y := y.(*fakeBuffer)

	// Sequential simulation of the strided scheme
	stride := cfg.GridSize * cfg.BlockSize
	for unit := 0; unit < stride; unit++ {
		for i := unit; i < n; i += stride {
			d_y.data[i] = d_a.data[i] + d_b.data[i]
		}
	}

	if f.corrupt && n > 0 {
		d_y.data[n/2] += 1
	}
	return nil
}

type fakeBuffer struct {
	backend *fakeBackend
	data    []float32
	freed   bool
}

func (b *fakeBuffer) Len() int {
	return len(b.data)
}

func (b *fakeBuffer) Upload(src []float32) error {
	if b.backend.failUpload {
		return ncu.NewTransferError("Upload", "injected upload fault", nil)
	}
	if len(src) != len(b.data) {
		return ncu.NewTransferError("Upload", "length mismatch", nil)
	}
	copy(b.data, src)
	return nil
}

func (b *fakeBuffer) Download(dst []float32) error {
	if b.backend.failDownload {
		return ncu.NewTransferError("Download", "injected download fault", nil)
	}
	if len(dst) != len(b.data) {
		return ncu.NewTransferError("Download", "length mismatch", nil)
	}
	copy(dst, b.data)
	return nil
}

func (b *fakeBuffer) Free() error {
	if b.backend.failFree {
		return ncu.NewAllocationError("Free", "injected free fault", nil)
	}
	if b.freed {
		return ncu.ErrDoubleFree
	}
	b.freed = true
	b.backend.live--
	b.backend.frees++
	return nil
}

func TestRegisterBackend(t *testing.T) {
	t.Cleanup(func() { RegisterBackend(nil) })

	// Without a registration the CPU backend is the default
	if _, ok := DefaultBackend().(*CPUBackend); !ok {
		t.Fatalf("DefaultBackend() = %T, want *CPUBackend", DefaultBackend())
	}

	fake := newFakeBackend()
	RegisterBackend(fake)
	if DefaultBackend() != Backend(fake) {
		t.Error("DefaultBackend should return the registered backend")
	}

	RegisterBackend(nil)
	if _, ok := DefaultBackend().(*CPUBackend); !ok {
		t.Error("Clearing the registration should restore the CPU backend")
	}
}
