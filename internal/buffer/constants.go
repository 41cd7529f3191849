package buffer

// WAV storage constants
const (
	wavExtension = ".wav"

	// pcmFormat is the WAV audio format tag for integer PCM.
	pcmFormat = 1

	// Bit depths accepted when loading and written for new files.
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	defaultBitDepth = bitsPerSample24

	// Full-scale integer values per bit depth
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// defaultSampleRate is used for new files written without a sample rate.
	defaultSampleRate = 44100

	tempPattern = ".irdisplay-*" + wavExtension
)
