package buffer

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Memory is a Store holding buffers in process memory.
// It is safe for concurrent use. Buffers must be created before they can be
// written.
type Memory struct {
	mu      sync.RWMutex
	buffers map[string]*clip
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{buffers: make(map[string]*clip)}
}

// Create adds a silent buffer, replacing any buffer with the same name.
func (m *Memory) Create(name string, numChannels, frames int, sampleRate float64) error {
	if name == "" {
		return ErrInvalidName
	}
	if numChannels < 1 || frames < 0 {
		return fmt.Errorf("%w: %q needs at least one channel and a non-negative length", ErrInvalid, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffers[name] = newClip(numChannels, frames, sampleRate)
	return nil
}

// Set adds a buffer holding copies of channels, replacing any buffer with the
// same name. All channels must have the same length.
func (m *Memory) Set(name string, sampleRate float64, channels ...[]float32) error {
	if name == "" {
		return ErrInvalidName
	}
	if len(channels) == 0 {
		return fmt.Errorf("%w: %q needs at least one channel", ErrInvalid, name)
	}

	frames := len(channels[0])
	c := newClip(len(channels), frames, sampleRate)
	for ch, data := range channels {
		if len(data) != frames {
			return fmt.Errorf("%w: %q channel %d has %d frames, want %d", ErrInvalid, name, ch+1, len(data), frames)
		}
		copy(c.channels[ch], data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffers[name] = c
	return nil
}

// Get returns a copy of one channel of a buffer.
func (m *Memory) Get(name string, channel int) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := c.check(channel); err != nil {
		return nil, err
	}
	return slices.Clone(c.channels[channel]), nil
}

// Channels returns the channel count of a buffer.
func (m *Memory) Channels(name string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.lookup(name)
	if err != nil {
		return 0, err
	}
	return len(c.channels), nil
}

// Delete removes a buffer. Deleting a missing buffer is a no-op.
func (m *Memory) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buffers, name)
}

// Names returns the sorted names of all buffers.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.buffers))
}

// Check implements Store.
func (m *Memory) Check(name string, channel int) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.lookup(name)
	if err != nil {
		return err
	}
	return c.check(channel)
}

// Length implements Store.
func (m *Memory) Length(name string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.lookup(name)
	if err != nil {
		return 0, err
	}
	return c.frames(), nil
}

// SampleRate implements Store.
func (m *Memory) SampleRate(name string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.lookup(name)
	if err != nil {
		return 0, err
	}
	return c.sampleRate, nil
}

// Read implements Store.
func (m *Memory) Read(name string, channel int, dst []float32) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.lookup(name)
	if err != nil {
		return err
	}
	return c.read(channel, dst)
}

// Write implements Store.
func (m *Memory) Write(name string, channel int, src []float64, allowResize bool, sampleRate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.lookup(name)
	if err != nil {
		return err
	}
	return c.write(channel, src, allowResize, sampleRate)
}

// lookup must be called with m.mu held.
func (m *Memory) lookup(name string) (*clip, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	c, ok := m.buffers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c, nil
}
