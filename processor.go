package irdisplay

import (
	"context"
	"fmt"
	"sync"

	"github.com/tphakala/go-irdisplay/internal/engine"
)

// Processor runs remap requests against a Store.
//
// Process runs a request on the calling goroutine. Submit defers a request to
// the processor's single worker goroutine, which runs queued requests one at a
// time. Both paths may be used concurrently; the store must then be safe for
// concurrent use, as MemoryStore and WAVStore are.
type Processor struct {
	store Store
	cfg   Config

	jobs chan Request
	done chan struct{}

	// mu guards closed and the send side of jobs.
	mu     sync.RWMutex
	closed bool
}

// New creates a processor and starts its worker goroutine.
// A nil config selects DefaultConfig.
func New(store Store, config *Config) (*Processor, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidConfig)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := config.withDefaults()
	p := &Processor{
		store: store,
		cfg:   cfg,
		jobs:  make(chan Request, cfg.QueueSize),
		done:  make(chan struct{}),
	}
	go p.worker()

	return p, nil
}

// Process runs req to completion and returns the written targets.
func (p *Processor) Process(req Request) (*Result, error) {
	res := p.run(req)
	if res.Err != nil {
		return nil, res.Err
	}
	return &res, nil
}

// Submit queues req for the worker goroutine. It blocks while the queue is
// full until ctx is done. The outcome is reported through Config.OnDone.
func (p *Processor) Submit(ctx context.Context, req Request) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.jobs <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting requests, waits for queued requests to finish and
// stops the worker. It is safe to call more than once.
func (p *Processor) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	<-p.done
	return nil
}

func (p *Processor) worker() {
	defer close(p.done)

	for req := range p.jobs {
		res := p.run(req)
		if p.cfg.OnDone != nil {
			p.cfg.OnDone(res)
		}
	}
}

// source is a validated source buffer ready to be read.
type source struct {
	pair
	frames     int
	sampleRate float64
}

// run executes one request. Every failure is logged and returned in the
// Result; nothing is written unless every source was read and remapped.
func (p *Processor) run(req Request) Result {
	res := Result{Request: req}
	targets, err := p.remap(req)
	if err != nil {
		p.cfg.Logger.Printf("%s%v", logPrefix, err)
		res.Err = err
		return res
	}
	res.Targets = targets
	return res
}

func (p *Processor) remap(req Request) ([]TargetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	readChan := req.ReadChannel - 1
	writeChan := req.WriteChannel - 1

	// Check sources before reading any of them.
	pairs := req.pairs()
	sources := make([]source, len(pairs))
	total := 0
	for i, pr := range pairs {
		if err := p.store.Check(pr.source, readChan); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSource, pr.source, err)
		}
		frames, err := p.store.Length(pr.source)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSource, pr.source, err)
		}
		rate, err := p.store.SampleRate(pr.source)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSource, pr.source, err)
		}
		sources[i] = source{pair: pr, frames: frames, sampleRate: rate}
		total += frames
	}

	if total > p.cfg.MaxSamples {
		return nil, fmt.Errorf("%w: %d frames exceeds limit of %d", ErrAllocation, total, p.cfg.MaxSamples)
	}

	// One scratch block holds every source, as the sources are read back to back.
	scratch := make([]float32, total)
	inputs := make([]engine.Input, len(sources))
	offset := 0
	for i, src := range sources {
		samples := scratch[offset : offset+src.frames : offset+src.frames]
		offset += src.frames

		if err := p.store.Read(src.source, readChan, samples); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSource, src.source, err)
		}
		inputs[i] = engine.Input{Samples: samples, SampleRate: src.sampleRate, Volume: src.volume}
	}

	outputs, err := engine.Remap(inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	targets := make([]TargetResult, 0, len(outputs))
	for i, out := range outputs {
		src := sources[i]
		if err := p.store.Write(src.target, writeChan, out.Samples, req.Resize, out.SampleRate); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrWrite, src.target, err)
		}
		targets = append(targets, TargetResult{
			Name:       src.target,
			Source:     src.source,
			Frames:     len(out.Samples),
			SampleRate: out.SampleRate,
			Peak:       out.Peak,
		})
	}

	return targets, nil
}
