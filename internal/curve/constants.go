package curve

// Power-curve table geometry
const (
	// TableSize is the number of precomputed curve entries.
	TableSize = 8194

	// tableCenter is the index holding the curve value at position 0.
	tableCenter = 4096

	// tableScale maps a normalized position in [-1, 1] to index offsets.
	tableScale = 4096.0

	// maxPosition is the largest index position reachable after clamping.
	// It sits one below the last entry so idx+1 is always a valid index.
	maxPosition = float64(TableSize - 2)

	// minPosition is the smallest index position reachable after clamping.
	minPosition = 0.0
)

// Exponent is the power applied to the magnitude of every sample.
const Exponent = 0.4
