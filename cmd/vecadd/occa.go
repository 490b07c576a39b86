//go:build occa
// +build occa

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/quaternior/aws-ncu/vecadd"
)

// With the occa tag the command prefers an OCCA device. Registration
// failure is not fatal; the CPU backend stays the default, and the
// fallback is noted once on stderr.
func init() {
	noteBackendFallback(os.Stderr, vecadd.RegisterOCCABackend())
}

// noteBackendFallback reports a failed accelerator registration without
// aborting the run.
func noteBackendFallback(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(w, "vecadd: OCCA backend unavailable, using CPU: %v\n", err)
	}
}
