package irdisplay

// Attribute defaults, 1-based as presented to operators
const (
	defaultReadChannel  = 1
	defaultWriteChannel = 1
	minChannel          = 1
	defaultResize       = true
)

// Message argument layout: target1 source1 [target2 source2] [volume1] [volume2]
const (
	minRequiredArgs = 2
	maxVolumeArgs   = 2
)

// Processor defaults
const (
	// defaultMaxSamples caps the combined source length of one call.
	defaultMaxSamples = 1 << 27

	// defaultQueueSize is the number of deferred requests that may wait.
	defaultQueueSize = 16

	logPrefix = "irdisplay: "
)
