// Package buffer provides named sample storage for the remap engine.
//
// A Store exposes named, multi-channel float32 buffers. Channels are 0-based at
// this layer. Two implementations are provided: Memory keeps buffers in process
// memory and WAVDir maps each buffer name to a WAV file in a directory.
package buffer

import (
	"errors"
	"fmt"
)

// Store is the storage contract consumed by the remap engine.
type Store interface {
	// Check reports whether name exists and can be read on channel.
	Check(name string, channel int) error

	// Length returns the buffer length in frames.
	Length(name string) (int, error)

	// SampleRate returns the buffer sample rate in Hz.
	SampleRate(name string) (float64, error)

	// Read copies len(dst) frames of channel into dst.
	Read(name string, channel int, dst []float32) error

	// Write stores src into channel of name.
	//
	// With allowResize the buffer is resized to len(src) frames and grows to
	// hold channel if needed. Without it, src must fit in the current length;
	// frames past len(src) are zeroed. A positive sampleRate replaces the
	// buffer's sample rate. A failed write leaves the buffer unchanged.
	Write(name string, channel int, src []float64, allowResize bool, sampleRate float64) error
}

// Errors returned by Store implementations.
var (
	// ErrNotFound indicates that no buffer with the given name exists.
	ErrNotFound = errors.New("buffer not found")

	// ErrInvalidName indicates an empty or otherwise unusable buffer name.
	ErrInvalidName = errors.New("invalid buffer name")

	// ErrChannel indicates a channel index outside the buffer.
	ErrChannel = errors.New("channel out of range")

	// ErrTooSmall indicates data that does not fit the buffer without resizing.
	ErrTooSmall = errors.New("buffer too small")

	// ErrInvalid indicates a buffer whose contents cannot be used.
	ErrInvalid = errors.New("invalid buffer")
)

// clip is the in-memory form of one buffer. All channels share one length.
type clip struct {
	channels   [][]float32
	sampleRate float64
}

func newClip(numChannels, frames int, sampleRate float64) *clip {
	c := &clip{
		channels:   make([][]float32, numChannels),
		sampleRate: sampleRate,
	}
	for ch := range c.channels {
		c.channels[ch] = make([]float32, frames)
	}
	return c
}

func (c *clip) frames() int {
	if len(c.channels) == 0 {
		return 0
	}
	return len(c.channels[0])
}

func (c *clip) check(channel int) error {
	if channel < 0 || channel >= len(c.channels) {
		return fmt.Errorf("%w: channel %d of %d", ErrChannel, channel+1, len(c.channels))
	}
	return nil
}

func (c *clip) read(channel int, dst []float32) error {
	if err := c.check(channel); err != nil {
		return err
	}
	if len(dst) > c.frames() {
		return fmt.Errorf("%w: read of %d frames from %d", ErrTooSmall, len(dst), c.frames())
	}
	copy(dst, c.channels[channel])
	return nil
}

// write applies the Store.Write contract to c. All validation happens before
// c is modified.
func (c *clip) write(channel int, src []float64, allowResize bool, sampleRate float64) error {
	if channel < 0 {
		return fmt.Errorf("%w: channel %d", ErrChannel, channel+1)
	}

	if allowResize {
		c.resize(max(len(c.channels), channel+1), len(src))
	} else {
		if err := c.check(channel); err != nil {
			return err
		}
		if len(src) > c.frames() {
			return fmt.Errorf("%w: %d frames into %d without resize", ErrTooSmall, len(src), c.frames())
		}
	}

	dst := c.channels[channel]
	for i, v := range src {
		dst[i] = float32(v)
	}
	clear(dst[len(src):])

	if sampleRate > 0 {
		c.sampleRate = sampleRate
	}
	return nil
}

// resize sets the channel count and length, keeping existing samples that
// still fit and zero-filling the rest.
func (c *clip) resize(numChannels, frames int) {
	if numChannels == len(c.channels) && frames == c.frames() {
		return
	}

	resized := make([][]float32, numChannels)
	for ch := range resized {
		resized[ch] = make([]float32, frames)
		if ch < len(c.channels) {
			copy(resized[ch], c.channels[ch])
		}
	}
	c.channels = resized
}
