package buffer

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDir is a Store backed by PCM WAV files in one directory.
//
// The buffer name "ir" maps to "<dir>/ir.wav"; a name that already ends in
// ".wav" is used as is. Writes rewrite the whole file through a temporary file
// and a rename, so readers never observe a partly written target. A missing
// target is created when the write allows resizing.
type WAVDir struct {
	dir string

	// mu serializes read-modify-write cycles on files in dir.
	mu sync.Mutex
}

// NewWAVDir creates a store over dir. The directory is not created.
func NewWAVDir(dir string) *WAVDir {
	return &WAVDir{dir: dir}
}

// Dir returns the directory the store reads and writes.
func (w *WAVDir) Dir() string {
	return w.dir
}

// Path returns the file path used for a buffer name.
func (w *WAVDir) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.EqualFold(filepath.Ext(name), wavExtension) {
		name += wavExtension
	}
	return filepath.Join(w.dir, name), nil
}

// Check implements Store.
func (w *WAVDir) Check(name string, channel int) error {
	c, _, err := w.load(name)
	if err != nil {
		return err
	}
	return c.check(channel)
}

// Length implements Store.
func (w *WAVDir) Length(name string) (int, error) {
	c, _, err := w.load(name)
	if err != nil {
		return 0, err
	}
	return c.frames(), nil
}

// SampleRate implements Store.
func (w *WAVDir) SampleRate(name string) (float64, error) {
	c, _, err := w.load(name)
	if err != nil {
		return 0, err
	}
	return c.sampleRate, nil
}

// Read implements Store.
func (w *WAVDir) Read(name string, channel int, dst []float32) error {
	c, _, err := w.load(name)
	if err != nil {
		return err
	}
	return c.read(channel, dst)
}

// Write implements Store.
func (w *WAVDir) Write(name string, channel int, src []float64, allowResize bool, sampleRate float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, bitDepth, err := w.load(name)
	switch {
	case errors.Is(err, ErrNotFound) && allowResize:
		c, bitDepth = newClip(0, 0, 0), defaultBitDepth
	case err != nil:
		return err
	}

	if err := c.write(channel, src, allowResize, sampleRate); err != nil {
		return err
	}
	return w.save(name, c, bitDepth)
}

// load decodes a WAV file into normalized float32 channels.
func (w *WAVDir) load(name string) (*clip, int, error) {
	path, err := w.Path(name)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %q: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %q is not a valid WAV file", ErrInvalid, name)
	}
	if decoder.WavAudioFormat != pcmFormat {
		return nil, 0, fmt.Errorf("%w: %q uses WAV format %d, only PCM is supported", ErrInvalid, name, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	maxVal, ok := fullScale(bitDepth)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q has unsupported bit depth %d", ErrInvalid, name, bitDepth)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to decode %q: %w", ErrInvalid, name, err)
	}

	numChannels := int(decoder.NumChans)
	frames := len(pcm.Data) / numChannels
	c := newClip(numChannels, frames, float64(decoder.SampleRate))

	// Deinterleave and normalize to [-1.0, 1.0]
	invMaxVal := 1.0 / maxVal
	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			c.channels[ch][i] = float32(float64(pcm.Data[base+ch]) * invMaxVal)
		}
	}

	return c, bitDepth, nil
}

// save encodes c as PCM at bitDepth and atomically replaces the named file.
func (w *WAVDir) save(name string, c *clip, bitDepth int) (err error) {
	path, err := w.Path(name)
	if err != nil {
		return err
	}
	maxVal, ok := fullScale(bitDepth)
	if !ok {
		return fmt.Errorf("%w: unsupported bit depth %d", ErrInvalid, bitDepth)
	}

	sampleRate := int(math.Round(c.sampleRate))
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	numChannels := len(c.channels)
	frames := c.frames()

	// Interleave and denormalize from [-1.0, 1.0]
	data := make([]int, frames*numChannels)
	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			sample := max(-1.0, min(1.0, float64(c.channels[ch][i])))
			data[base+ch] = int(sample * maxVal)
		}
	}

	tmp, err := os.CreateTemp(w.dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	encoder := wav.NewEncoder(tmp, sampleRate, bitDepth, numChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	// Close updates the WAV header; it does not close tmp.
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %q: %w", name, err)
	}

	return nil
}

// fullScale returns the maximum sample value for the given bit depth.
func fullScale(bitDepth int) (float64, bool) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, true
	case bitsPerSample24:
		return maxInt24, true
	case bitsPerSample32:
		return maxInt32, true
	default:
		return 0, false
	}
}
