// Package curve provides a lookup-table approximation of the sign-preserving
// power law sign(x)·|x|^0.4 used for display remapping.
//
// The table is built once during package initialization and never written
// afterwards, so it may be read from any number of goroutines without
// synchronization.
package curve

import "math"

// table holds sign(p)·|p|^Exponent for p = (i - 4096) / 4096.
// Entry 8192 is the curve value at +1; entry 8193 is a guard entry that is only
// ever read with a zero interpolation weight.
var table [TableSize]float64

func init() {
	for i := range TableSize {
		offset := float64(i - tableCenter)
		// Copysign with a +0 sign source yields +0 at the center entry.
		table[i] = math.Copysign(math.Pow(math.Abs(offset/tableScale), Exponent), offset)
	}
}

// Value returns table entry i. It panics if i is outside [0, TableSize).
func Value(i int) float64 {
	return table[i]
}

// Scale evaluates the power curve at v by linear interpolation between the two
// nearest table entries.
//
// Inputs at or beyond ±1 saturate to ±1. NaN maps to +0.
func Scale(v float64) float64 {
	pos := v*tableScale + tableScale

	switch {
	case math.IsNaN(pos):
		return 0
	case pos < minPosition:
		pos = minPosition
	case pos > maxPosition:
		pos = maxPosition
	}

	idx := int(pos)
	frac := pos - float64(idx)

	lo := table[idx]
	hi := table[idx+1]

	return lo - frac*(lo-hi)
}

// Apply replaces every element of buf with Scale(element).
func Apply(buf []float64) {
	for i, v := range buf {
		buf[i] = Scale(v)
	}
}

// Exact returns sign(v)·|v|^Exponent computed directly, without the table.
// It is the reference the table approximates.
func Exact(v float64) float64 {
	return math.Copysign(math.Pow(math.Abs(v), Exponent), v)
}
