// Package irdisplay remaps impulse responses for display.
//
// A remap reads one or two source buffers, normalizes them jointly so the
// louder one (after its volume multiplier) peaks at amplitude 1, and maps every
// sample through the sign-preserving power curve sign(x)·|x|^0.4. The results
// are written to target buffers, which may be resized to fit.
//
// The curve is evaluated through an 8194-entry lookup table with linear
// interpolation. The table is built once at program start and shared read-only.
//
// # Quick Start
//
//	store := irdisplay.NewMemoryStore()
//	_ = store.Set("ir", 48000, samples)
//	_ = store.Create("display", 1, 0, 48000)
//
//	p, err := irdisplay.New(store, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	req := irdisplay.NewRequest("display", "ir", irdisplay.DefaultAttributes())
//	if _, err := p.Process(req); err != nil {
//	    log.Fatal(err)
//	}
//
// # Message Arguments
//
// [ParseArgs] accepts the operator message form
//
//	target1 source1 [target2 source2] [volume1] [volume2]
//
// where any token that parses as a number is a volume and anything else is a
// buffer name.
//
// # Deferred Processing
//
// [Processor.Submit] queues a request for the processor's single worker
// goroutine. Requests run one at a time, each to completion, and
// [Config.OnDone] is called with the [Result] of every request. A nil
// Result.Err is the success signal.
//
// # Storage
//
// Buffers live behind the [Store] interface. [MemoryStore] keeps named
// buffers in memory; [WAVStore] maps buffer names to PCM WAV files in a
// directory.
//
// # Errors
//
// Failed calls wrap one of [ErrInvalidArguments], [ErrInvalidSource],
// [ErrAllocation] or [ErrWrite]. No target is written when a call fails before
// the write stage, and the second target is not written when the first write
// fails.
package irdisplay
