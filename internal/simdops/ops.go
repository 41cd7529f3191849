// Package simdops collects the vector kernels the remap engine runs over whole
// sample buffers.
//
// Kernels are reached through a function table so call sites stay independent
// of the backing implementation. With Profile-Guided Optimization the indirect
// calls in hot paths can be devirtualized.
package simdops

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
)

// Ops provides buffer-wide operations on float64 samples.
type Ops struct {
	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []float64, s float64)

	// MaxAbs returns max(|a[i]|), or 0 for an empty slice.
	// NaN elements propagate to the result.
	MaxAbs func(a []float64) float64

	// Widen converts float32 samples to float64: dst[i] = float64(src[i])
	Widen func(dst []float64, src []float32)
}

// ops64 is the package-level instance returned by Float64Ops.
var ops64 = Ops{
	Scale:  f64.Scale,
	MaxAbs: maxAbs,
	Widen:  widen,
}

// Float64Ops returns the float64 buffer operations.
func Float64Ops() *Ops {
	return &ops64
}

func maxAbs(a []float64) float64 {
	return floats.Norm(a, math.Inf(1))
}

func widen(dst []float64, src []float32) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
}
