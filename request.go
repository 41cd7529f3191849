package irdisplay

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tphakala/go-irdisplay/internal/engine"
)

// Attributes holds the per-object settings applied to every request.
type Attributes struct {
	// ReadChannel is the 1-based channel read from every source.
	ReadChannel int

	// WriteChannel is the 1-based channel written in every target.
	WriteChannel int

	// Resize allows targets to be resized to the source length.
	Resize bool
}

// DefaultAttributes returns read channel 1, write channel 1 and resizing on.
func DefaultAttributes() Attributes {
	return Attributes{
		ReadChannel:  defaultReadChannel,
		WriteChannel: defaultWriteChannel,
		Resize:       defaultResize,
	}
}

// Validate checks that both channels are at least 1.
func (a Attributes) Validate() error {
	if a.ReadChannel < minChannel {
		return fmt.Errorf("%w: read channel must be at least %d, got %d", ErrInvalidArguments, minChannel, a.ReadChannel)
	}
	if a.WriteChannel < minChannel {
		return fmt.Errorf("%w: write channel must be at least %d, got %d", ErrInvalidArguments, minChannel, a.WriteChannel)
	}
	return nil
}

// Request describes one remap call.
//
// Target2 and Source2 are optional but must be given together. Requests built
// with NewRequest or ParseArgs start with both volumes at 1.
type Request struct {
	Target1, Source1 string
	Target2, Source2 string

	// Volume1 and Volume2 scale each source before the joint peak is taken.
	Volume1, Volume2 float64

	Attributes
}

// NewRequest creates a single-pair request with unity volumes.
func NewRequest(target, source string, attrs Attributes) Request {
	return Request{
		Target1:    target,
		Source1:    source,
		Volume1:    engine.DefaultVolume,
		Volume2:    engine.DefaultVolume,
		Attributes: attrs,
	}
}

// WithSecond returns a copy of r with a second target and source.
func (r Request) WithSecond(target, source string) Request {
	r.Target2 = target
	r.Source2 = source
	return r
}

// WithVolumes returns a copy of r with the given volume multipliers.
func (r Request) WithVolumes(volume1, volume2 float64) Request {
	r.Volume1 = volume1
	r.Volume2 = volume2
	return r
}

// HasSecond reports whether r names a second target and source.
func (r Request) HasSecond() bool {
	return r.Target2 != "" || r.Source2 != ""
}

// Validate checks names, volumes and channels.
func (r Request) Validate() error {
	if r.Target1 == "" || r.Source1 == "" {
		return fmt.Errorf("%w: a target and a source buffer are required", ErrInvalidArguments)
	}
	if r.Target2 != "" && r.Source2 == "" {
		return fmt.Errorf("%w: no source buffer given for second target", ErrInvalidArguments)
	}
	if r.Target2 == "" && r.Source2 != "" {
		return fmt.Errorf("%w: no target buffer given for second source", ErrInvalidArguments)
	}
	for i, v := range []float64{r.Volume1, r.Volume2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: volume %d must be finite, got %v", ErrInvalidArguments, i+1, v)
		}
	}
	return r.Attributes.Validate()
}

// pair is one target/source/volume triple of a request.
type pair struct {
	target string
	source string
	volume float64
}

// pairs returns the request's triples in write order.
func (r Request) pairs() []pair {
	ps := []pair{{target: r.Target1, source: r.Source1, volume: r.Volume1}}
	if r.HasSecond() {
		ps = append(ps, pair{target: r.Target2, source: r.Source2, volume: r.Volume2})
	}
	return ps
}

// ParseArgs builds a request from message tokens of the form
//
//	target1 source1 [target2 source2] [volume1] [volume2]
//
// Tokens that parse as numbers are volumes, anything else is a buffer name.
// Tokens after the second volume are ignored.
func ParseArgs(args []string, attrs Attributes) (Request, error) {
	if len(args) < minRequiredArgs {
		return Request{}, fmt.Errorf("%w: not enough arguments, need a target and a source buffer", ErrInvalidArguments)
	}

	req := NewRequest(args[0], args[1], attrs)
	rest := args[minRequiredArgs:]

	if len(rest) > 0 && !isNumber(rest[0]) {
		req.Target2 = rest[0]
		rest = rest[1:]

		if len(rest) == 0 || isNumber(rest[0]) {
			return Request{}, fmt.Errorf("%w: no source buffer given for second target", ErrInvalidArguments)
		}
		req.Source2 = rest[0]
		rest = rest[1:]
	}

	volumes := []*float64{&req.Volume1, &req.Volume2}
	for i := 0; i < maxVolumeArgs && i < len(rest); i++ {
		v, err := strconv.ParseFloat(rest[i], 64)
		if err != nil {
			return Request{}, fmt.Errorf("%w: volume %d: %q is not a number", ErrInvalidArguments, i+1, rest[i])
		}
		*volumes[i] = v
	}

	return req, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
