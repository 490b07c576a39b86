// Command vecadd runs the occupancy-tuned vector addition pipeline and
// verifies the device result against a host reference.
//
// Usage:
//
//	vecadd [n]
//
// n is the problem size in elements and defaults to 2^24. The command
// prints the problem size, the worst absolute error, and OK on success.
// Operational faults and verification failures exit with status 1; a bad
// argument exits with status 2.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/quaternior/aws-ncu/vecadd"
)

const defaultN = 1 << 24

func main() {
	n := defaultN
	if len(os.Args) > 1 {
		v, err := strconv.Atoi(os.Args[1])
		if err != nil || v < 1 {
			fmt.Fprintf(os.Stderr, "usage: vecadd [n]\n")
			fmt.Fprintf(os.Stderr, "n must be a positive integer, got %q\n", os.Args[1])
			os.Exit(2)
		}
		n = v
	}

	fmt.Printf("N = %d\n", n)

	report, err := vecadd.Run(vecadd.DefaultBackend(), vecadd.Params{N: n})
	if err != nil {
		fmt.Fprintf(os.Stderr, "vecadd: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("max abs err = %e\n", report.MaxAbsErr)

	if !report.Passed {
		fmt.Fprintf(os.Stderr, "vecadd: verification failed on %s: max abs err %e at index %d\n",
			report.Backend, report.MaxAbsErr, report.ArgMax)
		os.Exit(1)
	}

	fmt.Println("OK")
}
