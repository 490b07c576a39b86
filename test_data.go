package ncu

import (
	"math"
)

// GenerateFloat32 generates deterministic float32 test data in [0, 1) using
// a linear congruential generator (LCG). This ensures reproducible tests
// across runs and platforms.
//
// Parameters:
//   - size: Number of elements to generate
//   - seed: Random seed for reproducibility
//
// Example:
//
//	data := GenerateFloat32(1024, 12345)
func GenerateFloat32(size int, seed uint64) []float32 {
	data := make([]float32, size)
	rng := seed
	for i := range data {
		rng = rng*6364136223846793005 + 1442695040888963407 // Knuth's MMIX parameters
		data[i] = float32(rng>>40) / float32(1<<24)         // Top 24 bits, normalized to [0, 1)
	}
	return data
}

// GenerateFloat32Range generates deterministic float32 data in a specific range.
//
// Parameters:
//   - size: Number of elements
//   - seed: Random seed
//   - min: Minimum value (inclusive)
//   - max: Maximum value (exclusive)
//
// Example:
//
//	data := GenerateFloat32Range(1024, 42, -1.0, 1.0) // Generate values in [-1, 1)
func GenerateFloat32Range(size int, seed uint64, min, max float32) []float32 {
	data := GenerateFloat32(size, seed)
	scale := max - min
	for i := range data {
		data[i] = data[i]*scale + min
	}
	return data
}

// GenerateSequence generates a simple arithmetic sequence for debugging.
// Useful when you need predictable patterns.
//
// Example:
//
//	data := GenerateSequence(10, 0, 2) // [0, 2, 4, 6, 8, 10, 12, 14, 16, 18]
func GenerateSequence(size int, start, step float32) []float32 {
	data := make([]float32, size)
	for i := range data {
		data[i] = start + float32(i)*step
	}
	return data
}

// AlmostEqual checks if two float32 values are approximately equal
// within the specified tolerance. Handles special cases like NaN and Inf.
func AlmostEqual(a, b, tolerance float32) bool {
	// Handle NaN
	if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}
	// Handle Inf
	if math.IsInf(float64(a), 0) && math.IsInf(float64(b), 0) {
		return math.Signbit(float64(a)) == math.Signbit(float64(b))
	}
	// Regular comparison
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// SlicesAlmostEqual checks if two float32 slices are approximately equal
// element-wise within the specified tolerance.
func SlicesAlmostEqual(a, b []float32, tolerance float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !AlmostEqual(a[i], b[i], tolerance) {
			return false
		}
	}
	return true
}
