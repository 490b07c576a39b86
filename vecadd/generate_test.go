package vecadd

import (
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	first := Generate(4096, 42)
	second := Generate(4096, 42)

	for i := range first.A {
		if first.A[i] != second.A[i] || first.B[i] != second.B[i] {
			t.Fatalf("Generation is not deterministic at index %d", i)
		}
	}

	// A different seed produces different vectors
	other := Generate(4096, 43)
	same := true
	for i := range first.A {
		if first.A[i] != other.A[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Different seeds should produce different operands")
	}
}

func TestGenerateRange(t *testing.T) {
	inputs := Generate(10000, 7)

	// The draw is in [-1, 1); rounding to float32 can land a value just
	// under 1 exactly on 1, so the upper check is closed.
	for i := range inputs.A {
		if inputs.A[i] < -1 || inputs.A[i] > 1 {
			t.Fatalf("A[%d] = %f out of range", i, inputs.A[i])
		}
		if inputs.B[i] < -1 || inputs.B[i] > 1 {
			t.Fatalf("B[%d] = %f out of range", i, inputs.B[i])
		}
	}
}

// The operands must be independent draws, not copies of each other.
func TestGenerateIndependentOperands(t *testing.T) {
	inputs := Generate(1024, 5)

	same := true
	for i := range inputs.A {
		if inputs.A[i] != inputs.B[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("A and B should be independent draws")
	}
}

// For two float32 terms, the float64 sum rounded to float32 equals the
// float32 addition, so the reference matches device arithmetic bit for bit.
func TestGenerateReference(t *testing.T) {
	inputs := Generate(100000, 99)

	for i := range inputs.Ref {
		if inputs.Ref[i] != inputs.A[i]+inputs.B[i] {
			t.Fatalf("Ref[%d] = %v, want %v", i, inputs.Ref[i], inputs.A[i]+inputs.B[i])
		}
	}
}

func TestGenerateLengths(t *testing.T) {
	inputs := Generate(33, 1)
	if len(inputs.A) != 33 || len(inputs.B) != 33 || len(inputs.Ref) != 33 {
		t.Errorf("Lengths = %d/%d/%d, want 33 each",
			len(inputs.A), len(inputs.B), len(inputs.Ref))
	}
}
