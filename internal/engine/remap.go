// Package engine implements the joint-normalization power-curve remap.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-irdisplay/internal/curve"
	"github.com/tphakala/go-irdisplay/internal/simdops"
)

// Errors returned by Remap.
var (
	// ErrSourceCount indicates a call with zero or more than two sources.
	ErrSourceCount = errors.New("remap needs one or two sources")

	// ErrInvalidVolume indicates a NaN or infinite volume multiplier.
	ErrInvalidVolume = errors.New("volume must be finite")

	// ErrNonFinite indicates a source holding NaN or infinite samples.
	ErrNonFinite = errors.New("source contains non-finite samples")
)

// Input is one source buffer with its volume multiplier.
type Input struct {
	// Samples holds the raw source samples. It is only read.
	Samples []float32

	// SampleRate is passed through to the matching Output unchanged.
	SampleRate float64

	// Volume scales the source before the joint peak is taken.
	Volume float64
}

// Output is the remapped version of one Input.
type Output struct {
	// Samples has the same length as the source.
	Samples []float64

	// SampleRate is the source's sample rate.
	SampleRate float64

	// Peak is max(|s|) over the raw source samples.
	Peak float64
}

// Remap normalizes one or two sources to a shared peak and maps every sample
// through the power curve.
//
// The louder source after its volume multiplier reaches amplitude 1; the other
// is scaled by the same factor so their balance is kept. When no source has a
// positive scaled peak all outputs are +0.
//
// Outputs are freshly allocated and owned by the caller. On error no output is
// returned.
func Remap(inputs []Input) ([]Output, error) {
	if len(inputs) < minSources || len(inputs) > maxSources {
		return nil, fmt.Errorf("%w: got %d", ErrSourceCount, len(inputs))
	}

	ops := simdops.Float64Ops()

	// Widen into per-call scratch that becomes the output storage.
	outputs := make([]Output, len(inputs))
	peaks := make([]float64, len(inputs))
	volumes := make([]float64, len(inputs))
	for k, in := range inputs {
		if math.IsNaN(in.Volume) || math.IsInf(in.Volume, 0) {
			return nil, fmt.Errorf("%w: source %d volume %v", ErrInvalidVolume, k+1, in.Volume)
		}

		buf := make([]float64, len(in.Samples))
		ops.Widen(buf, in.Samples)

		peak := ops.MaxAbs(buf)
		if math.IsNaN(peak) || math.IsInf(peak, 0) {
			return nil, fmt.Errorf("%w: source %d", ErrNonFinite, k+1)
		}

		outputs[k] = Output{Samples: buf, SampleRate: in.SampleRate, Peak: peak}
		peaks[k] = peak
		volumes[k] = in.Volume
	}

	factor, ok := JointFactor(peaks, volumes)
	if !ok {
		for k := range outputs {
			clear(outputs[k].Samples)
		}
		return outputs, nil
	}

	for k := range outputs {
		buf := outputs[k].Samples
		ops.Scale(buf, buf, volumes[k]*factor)
		curve.Apply(buf)
	}

	return outputs, nil
}

// Peak returns max(|s|) over samples, or 0 for an empty slice.
func Peak(samples []float64) float64 {
	return simdops.Float64Ops().MaxAbs(samples)
}

// JointFactor returns the factor that brings the largest peaks[k]*volumes[k]
// to unity. It reports false when that product is not positive, in which case
// there is no reference level and the factor is meaningless.
func JointFactor(peaks, volumes []float64) (float64, bool) {
	var candidate float64
	for k := range peaks {
		candidate = math.Max(candidate, peaks[k]*volumes[k])
	}

	if !(candidate > 0) {
		return 0, false
	}

	return unityPeak / candidate, true
}
