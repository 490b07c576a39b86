package vecadd

import (
	"fmt"

	ncu "github.com/quaternior/aws-ncu"
)

// Params configures one pipeline run. Zero values take the defaults:
// DefaultBlockSize threads per block, DefaultSeed, DefaultTolerance.
// N has no default and must be positive.
type Params struct {
	N         int     // problem size in elements
	Seed      uint64  // generator seed
	BlockSize int     // threads per block
	Tolerance float64 // maximum acceptable absolute error
}

// Report is the outcome of a completed pipeline run. Passed distinguishes
// a numerical mismatch from the operational faults Run reports as errors:
// a run can finish cleanly and still fail verification.
type Report struct {
	N         int
	GridSize  int
	BlockSize int
	Backend   string
	MaxAbsErr float64
	ArgMax    int
	Passed    bool
}

// Run executes the full pipeline on the backend: generate the host
// operands and reference, reserve and populate device buffers, derive the
// launch geometry from device occupancy, dispatch the grid-stride addition,
// read back the result, and verify it against the reference.
//
// Device buffers are released exactly once on every path, including faults.
// A release failure surfaces only when the run was otherwise clean.
func Run(backend Backend, p Params) (report Report, err error) {
	if backend == nil {
		return Report{}, ncu.NewInvalidArgError("Run", "nil backend")
	}
	if p.N < 1 {
		return Report{}, ncu.NewInvalidArgError("Run",
			fmt.Sprintf("problem size must be positive, got %d", p.N))
	}
	if p.BlockSize == 0 {
		p.BlockSize = DefaultBlockSize
	}
	if p.Seed == 0 {
		p.Seed = DefaultSeed
	}
	if p.Tolerance == 0 {
		p.Tolerance = DefaultTolerance
	}

	inputs := Generate(p.N, p.Seed)

	bufs, err := AllocateBuffers(backend, p.N)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if rerr := bufs.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := bufs.Upload(inputs.A, inputs.B); err != nil {
		return Report{}, err
	}

	cfg, err := Configure(backend, p.N, p.BlockSize)
	if err != nil {
		return Report{}, err
	}

	if err := backend.AddVectors(cfg, bufs.a, bufs.b, bufs.y, p.N); err != nil {
		return Report{}, err
	}

	y, err := bufs.Download()
	if err != nil {
		return Report{}, err
	}

	v := Verify(y, inputs.Ref)

	return Report{
		N:         p.N,
		GridSize:  cfg.GridSize,
		BlockSize: cfg.BlockSize,
		Backend:   backend.Properties().Name,
		MaxAbsErr: v.MaxAbsErr,
		ArgMax:    v.ArgMax,
		Passed:    v.Within(p.Tolerance),
	}, nil
}
