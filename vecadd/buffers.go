package vecadd

import (
	"fmt"

	ncu "github.com/quaternior/aws-ncu"
)

// Buffers owns the device-resident operand and result buffers for one
// pipeline run.
type Buffers struct {
	n        int
	a, b, y  Buffer
	released bool
}

// AllocateBuffers reserves the three device buffers for n elements. If any
// reservation fails, the buffers already reserved are freed before the
// error is returned, so a failed call never leaks device memory.
func AllocateBuffers(backend Backend, n int) (*Buffers, error) {
	if n < 1 {
		return nil, ncu.NewInvalidArgError("AllocateBuffers",
			fmt.Sprintf("element count must be positive, got %d", n))
	}

	bufs := &Buffers{n: n}
	var err error

	if bufs.a, err = backend.NewBuffer(n); err != nil {
		return nil, err
	}
	if bufs.b, err = backend.NewBuffer(n); err != nil {
		bufs.a.Free()
		return nil, err
	}
	if bufs.y, err = backend.NewBuffer(n); err != nil {
		bufs.a.Free()
		bufs.b.Free()
		return nil, err
	}

	return bufs, nil
}

// Upload copies the operand vectors into device memory.
func (bufs *Buffers) Upload(a, b []float32) error {
	if err := bufs.a.Upload(a); err != nil {
		return err
	}
	return bufs.b.Upload(b)
}

// Download copies the device result back into a fresh host vector.
func (bufs *Buffers) Download() ([]float32, error) {
	y := make([]float32, bufs.n)
	if err := bufs.y.Download(y); err != nil {
		return nil, err
	}
	return y, nil
}

// Release frees the three device buffers. Only the first call frees;
// further calls are no-ops, so Release is safe to defer alongside explicit
// release on error paths. The first free failure is reported after all
// three buffers have been offered back.
func (bufs *Buffers) Release() error {
	if bufs == nil || bufs.released {
		return nil
	}
	bufs.released = true

	var firstErr error
	for _, buf := range []Buffer{bufs.a, bufs.b, bufs.y} {
		if buf == nil {
			continue
		}
		if err := buf.Free(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
