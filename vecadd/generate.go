package vecadd

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSeed seeds the generator when Params.Seed is zero.
const DefaultSeed uint64 = 1

// pcgStreamOffset separates the PCG sequence constant from the seed so that
// consecutive seeds do not produce overlapping streams.
const pcgStreamOffset = 0x9e3779b97f4a7c15

// Inputs holds one run's host-side data: the two operand vectors and the
// reference sum.
type Inputs struct {
	A, B []float32
	Ref  []float32
}

// Generate produces the operand vectors as independent uniform draws over
// [-1, 1) and the reference sum. The draws come from a PCG-seeded uniform
// distribution, so the same n and seed reproduce bit-identical vectors on
// every run and platform. The reference is accumulated in float64 and
// rounded once to float32, which for a two-term sum is exactly the float32
// addition.
func Generate(n int, seed uint64) Inputs {
	u := distuv.Uniform{
		Min: -1,
		Max: 1,
		Src: rand.NewPCG(seed, seed+pcgStreamOffset),
	}

	a := make([]float32, n)
	b := make([]float32, n)
	ref := make([]float32, n)

	for i := range a {
		a[i] = float32(u.Rand())
	}
	for i := range b {
		b[i] = float32(u.Rand())
	}
	for i := range ref {
		ref[i] = float32(float64(a[i]) + float64(b[i]))
	}

	return Inputs{A: a, B: b, Ref: ref}
}
