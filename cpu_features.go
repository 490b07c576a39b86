package ncu

import (
	"strings"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks available CPU instruction set extensions.
type CPUFeatures struct {
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasFMA     bool
	HasAVX512F bool
	HasNEON    bool // arm64 advanced SIMD
}

// Global CPU feature detection
var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

// detectCPUFeatures populates the global cpuFeatures struct.
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasFMA:     cpu.X86.HasFMA,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasNEON:    cpu.ARM64.HasASIMD,
	}
}

// GetCPUFeatures returns the detected instruction set extensions.
func GetCPUFeatures() CPUFeatures {
	return cpuFeatures
}

// String returns a short description of the detected extensions, e.g.
// "AVX2+FMA", for use in device names and logs.
func (f CPUFeatures) String() string {
	var features []string

	if f.HasAVX512F {
		features = append(features, "AVX512F")
	} else if f.HasAVX2 {
		features = append(features, "AVX2")
	} else if f.HasAVX {
		features = append(features, "AVX")
	} else if f.HasSSE4 {
		features = append(features, "SSE4")
	}
	if f.HasFMA {
		features = append(features, "FMA")
	}
	if f.HasNEON {
		features = append(features, "NEON")
	}

	if len(features) == 0 {
		return "scalar"
	}
	return strings.Join(features, "+")
}

// deviceName derives the default device's display name from the detected
// CPU features.
func deviceName() string {
	return "CPU (" + cpuFeatures.String() + ")"
}
