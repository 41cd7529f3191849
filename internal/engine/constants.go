package engine

// Source count limits
const (
	minSources = 1 // A remap always has a primary source
	maxSources = 2 // Primary plus optional secondary source
)

// Normalization constants
const (
	// unityPeak is the amplitude the loudest scaled source is normalized to.
	unityPeak = 1.0

	// DefaultVolume is the multiplier applied to a source when none is given.
	DefaultVolume = 1.0
)
