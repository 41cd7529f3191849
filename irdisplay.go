package irdisplay

import (
	"errors"
	"fmt"
	"io"
	"log"
)

// Errors returned by the processor. Each is wrapped together with the
// underlying cause, so errors.Is matches both.
var (
	// ErrInvalidArguments indicates a malformed request.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrInvalidSource indicates a source buffer that is missing or cannot be read.
	ErrInvalidSource = errors.New("invalid source buffer")

	// ErrAllocation indicates that temporary storage for a call could not be obtained.
	ErrAllocation = errors.New("could not allocate temporary memory for processing")

	// ErrWrite indicates that a target buffer could not be written.
	ErrWrite = errors.New("could not write target buffer")

	// ErrClosed indicates a request submitted to a closed processor.
	ErrClosed = errors.New("processor closed")

	// ErrInvalidConfig indicates invalid processor configuration.
	ErrInvalidConfig = errors.New("invalid processor configuration")
)

// Config holds processor configuration.
type Config struct {
	// MaxSamples caps the combined length in frames of the sources of one call.
	// Larger calls fail with ErrAllocation before any buffer is read.
	// Zero selects the default of 2^27 frames.
	MaxSamples int

	// QueueSize is the number of submitted requests that may wait for the
	// worker. Zero selects the default of 16.
	QueueSize int

	// Logger receives one diagnostic line per failed request.
	// Nil discards diagnostics.
	Logger *log.Logger

	// OnDone is called from the worker goroutine after every submitted
	// request. It is not called for Process.
	OnDone func(Result)
}

// DefaultConfig returns a configuration with default limits and no logger.
func DefaultConfig() *Config {
	return &Config{
		MaxSamples: defaultMaxSamples,
		QueueSize:  defaultQueueSize,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxSamples < 0 {
		return fmt.Errorf("%w: max samples must not be negative", ErrInvalidConfig)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: queue size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// withDefaults returns a copy of c with zero fields replaced by defaults.
func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxSamples == 0 {
		out.MaxSamples = defaultMaxSamples
	}
	if out.QueueSize == 0 {
		out.QueueSize = defaultQueueSize
	}
	if out.Logger == nil {
		out.Logger = log.New(io.Discard, "", 0)
	}
	return out
}

// Result reports the outcome of one request.
type Result struct {
	// Request is the request as submitted.
	Request Request

	// Targets describes every written target, in write order.
	Targets []TargetResult

	// Err is nil when every target was written.
	Err error
}

// TargetResult describes one written target.
type TargetResult struct {
	// Name is the target buffer name.
	Name string

	// Source is the source buffer the target was computed from.
	Source string

	// Frames is the number of samples written.
	Frames int

	// SampleRate is the sample rate propagated from the source.
	SampleRate float64

	// Peak is the raw peak amplitude of the source.
	Peak float64
}
