package irdisplay

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-irdisplay/internal/curve"
	"github.com/tphakala/go-irdisplay/internal/testutil"
)

// recordingStore wraps a MemoryStore, records write attempts and can fail
// writes to chosen targets.
type recordingStore struct {
	*MemoryStore

	mu       sync.Mutex
	writes   []string
	reads    []string
	failures map[string]error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore(), failures: map[string]error{}}
}

func (s *recordingStore) Read(name string, channel int, dst []float32) error {
	s.mu.Lock()
	s.reads = append(s.reads, name)
	s.mu.Unlock()
	return s.MemoryStore.Read(name, channel, dst)
}

func (s *recordingStore) Write(name string, channel int, src []float64, allowResize bool, sampleRate float64) error {
	s.mu.Lock()
	s.writes = append(s.writes, name)
	err := s.failures[name]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Write(name, channel, src, allowResize, sampleRate)
}

func (s *recordingStore) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

func (s *recordingStore) Reads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reads...)
}

func newTestStore(t *testing.T) *recordingStore {
	t.Helper()
	s := newRecordingStore()
	require.NoError(t, s.Set("irL", 48000, []float32{0.5, -0.5, 1.0}))
	require.NoError(t, s.Set("irR", 96000, testutil.Float32s(0.25, -0.125), testutil.Float32s(0.5, 0.5)))
	require.NoError(t, s.Set("silent", 44100, make([]float32, 8)))
	require.NoError(t, s.Create("outL", 1, 0, 0))
	require.NoError(t, s.Create("outR", 1, 0, 0))
	return s
}

func newTestProcessor(t *testing.T, store Store, cfg *Config) *Processor {
	t.Helper()
	p, err := New(store, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func get(t *testing.T, s *recordingStore, name string) []float64 {
	t.Helper()
	data, err := s.Get(name, 0)
	require.NoError(t, err)
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// =============================================================================
// Configuration
// =============================================================================

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(NewMemoryStore(), &Config{MaxSamples: -1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(NewMemoryStore(), &Config{QueueSize: -1})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_Defaults(t *testing.T) {
	cfg := (&Config{}).withDefaults()
	assert.Equal(t, defaultMaxSamples, cfg.MaxSamples)
	assert.Equal(t, defaultQueueSize, cfg.QueueSize)
	assert.NotNil(t, cfg.Logger)
	require.NoError(t, DefaultConfig().Validate())
}

// =============================================================================
// Process
// =============================================================================

func TestProcess_SinglePair(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	res, err := p.Process(NewRequest("outL", "irL", DefaultAttributes()))
	require.NoError(t, err)
	require.Len(t, res.Targets, 1)

	target := res.Targets[0]
	assert.Equal(t, "outL", target.Name)
	assert.Equal(t, "irL", target.Source)
	assert.Equal(t, 3, target.Frames)
	assert.InDelta(t, 48000.0, target.SampleRate, 0)
	assert.InDelta(t, 1.0, target.Peak, 0)

	assert.Equal(t, []string{"outL"}, store.Writes(), "no second write for a single pair")

	got := get(t, store, "outL")
	require.Len(t, got, 3)
	assert.InDelta(t, curve.Scale(0.5), got[0], testutil.Float32Tolerance)
	assert.InDelta(t, -curve.Scale(0.5), got[1], testutil.Float32Tolerance)
	assert.InDelta(t, 1.0, got[2], 0)

	rate, err := store.SampleRate("outL")
	require.NoError(t, err)
	assert.InDelta(t, 48000.0, rate, 0)
}

func TestProcess_TwoPairsJointNormalization(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	req := NewRequest("outL", "irL", DefaultAttributes()).WithSecond("outR", "irR")
	res, err := p.Process(req)
	require.NoError(t, err)
	require.Len(t, res.Targets, 2)
	assert.Equal(t, []string{"outL", "outR"}, store.Writes())

	left := get(t, store, "outL")
	right := get(t, store, "outR")
	testutil.AssertPeak(t, left, 1.0, testutil.Float32Tolerance)
	assert.Len(t, right, 2)

	// irR peaks at 0.25 against irL's 1.0.
	assert.InDelta(t, math.Pow(0.25, curve.Exponent), right[0], 1e-6)
	assert.InDelta(t, -math.Pow(0.125, curve.Exponent), right[1], 1e-4)

	rate, err := store.SampleRate("outR")
	require.NoError(t, err)
	assert.InDelta(t, 96000.0, rate, 0)
}

func TestProcess_Volumes(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	// irR * 8 = 2.0 now outweighs irL * 1 = 1.0.
	req := NewRequest("outL", "irL", DefaultAttributes()).WithSecond("outR", "irR").WithVolumes(1, 8)
	_, err := p.Process(req)
	require.NoError(t, err)

	testutil.AssertPeak(t, get(t, store, "outR"), 1.0, testutil.Float32Tolerance)
	testutil.AssertPeak(t, get(t, store, "outL"), math.Pow(0.5, curve.Exponent), 1e-6)
}

func TestProcess_Channels(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	attrs := Attributes{ReadChannel: 2, WriteChannel: 2, Resize: true}
	_, err := p.Process(NewRequest("outR", "irR", attrs))
	require.NoError(t, err)

	chans, err := store.Channels("outR")
	require.NoError(t, err)
	assert.Equal(t, 2, chans, "writing channel 2 with resize grows the target")

	data, err := store.Get("outR", 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, 1}, data, 0)
}

func TestProcess_BothSilent(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	req := NewRequest("outL", "silent", DefaultAttributes()).WithSecond("outR", "silent")
	_, err := p.Process(req)
	require.NoError(t, err)

	testutil.AssertAllPositiveZero(t, get(t, store, "outL"))
	testutil.AssertAllPositiveZero(t, get(t, store, "outR"))
}

func TestProcess_NoResizeTooSmall(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	attrs := DefaultAttributes()
	attrs.Resize = false
	_, err := p.Process(NewRequest("outL", "irL", attrs))
	require.ErrorIs(t, err, ErrWrite)
	require.ErrorIs(t, err, ErrBufferTooSmall)
}

// =============================================================================
// Error taxonomy
// =============================================================================

func TestProcess_ArgumentErrorHasNoSideEffects(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	req := NewRequest("outL", "irL", DefaultAttributes()).WithSecond("outR", "")
	_, err := p.Process(req)
	require.ErrorIs(t, err, ErrInvalidArguments)
	assert.Empty(t, store.Reads())
	assert.Empty(t, store.Writes())
}

func TestProcess_MissingSecondSourceAbortsBeforeReads(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	req := NewRequest("outL", "irL", DefaultAttributes()).WithSecond("outR", "missing")
	_, err := p.Process(req)
	require.ErrorIs(t, err, ErrInvalidSource)
	require.ErrorIs(t, err, ErrBufferNotFound)
	assert.Contains(t, err.Error(), `"missing"`)
	assert.Empty(t, store.Reads(), "sources are checked before any read")
	assert.Empty(t, store.Writes())
}

func TestProcess_SourceChannelOutOfRange(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, nil)

	attrs := DefaultAttributes()
	attrs.ReadChannel = 2
	_, err := p.Process(NewRequest("outL", "irL", attrs))
	require.ErrorIs(t, err, ErrInvalidSource)
	require.ErrorIs(t, err, ErrBufferChannel)
}

func TestProcess_AllocationLimit(t *testing.T) {
	store := newTestStore(t)
	p := newTestProcessor(t, store, &Config{MaxSamples: 4})

	req := NewRequest("outL", "irL", DefaultAttributes()).WithSecond("outR", "irR")
	_, err := p.Process(req)
	require.ErrorIs(t, err, ErrAllocation)
	assert.Empty(t, store.Reads())
	assert.Empty(t, store.Writes())

	// 3 frames fit on their own.
	_, err = p.Process(NewRequest("outL", "irL", DefaultAttributes()))
	require.NoError(t, err)
}

func TestProcess_FirstWriteFailureSkipsSecond(t *testing.T) {
	store := newTestStore(t)
	store.failures["outL"] = errors.New("disk full")
	p := newTestProcessor(t, store, nil)

	req := NewRequest("outL", "irL", DefaultAttributes()).WithSecond("outR", "irR")
	res, err := p.Process(req)
	require.ErrorIs(t, err, ErrWrite)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"outL"}, store.Writes(), "second target must not be written")

	n, err := store.Length("outR")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcess_SecondWriteFailure(t *testing.T) {
	store := newTestStore(t)
	store.failures["outR"] = errors.New("read-only")
	p := newTestProcessor(t, store, nil)

	req := NewRequest("outL", "irL", DefaultAttributes()).WithSecond("outR", "irR")
	_, err := p.Process(req)
	require.ErrorIs(t, err, ErrWrite)
	assert.Equal(t, []string{"outL", "outR"}, store.Writes())
}

func TestProcess_LogsFailures(t *testing.T) {
	var logs bytes.Buffer
	store := newTestStore(t)
	p := newTestProcessor(t, store, &Config{Logger: log.New(&logs, "", 0)})

	_, err := p.Process(NewRequest("outL", "nope", DefaultAttributes()))
	require.Error(t, err)
	assert.Contains(t, logs.String(), "irdisplay: invalid source buffer")

	logs.Reset()
	_, err = p.Process(NewRequest("outL", "irL", DefaultAttributes()))
	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

// =============================================================================
// Deferred processing
// =============================================================================

func TestSubmit_NotifiesEveryRequest(t *testing.T) {
	store := newTestStore(t)

	var mu sync.Mutex
	var results []Result
	p, err := New(store, &Config{OnDone: func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Submit(ctx, NewRequest("outL", "irL", DefaultAttributes())))
	require.NoError(t, p.Submit(ctx, NewRequest("outR", "missing", DefaultAttributes())))
	require.NoError(t, p.Submit(ctx, NewRequest("outR", "irR", DefaultAttributes())))
	require.NoError(t, p.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 3)

	// Requests run in submission order.
	require.NoError(t, results[0].Err)
	assert.Equal(t, "outL", results[0].Targets[0].Name)
	require.ErrorIs(t, results[1].Err, ErrInvalidSource)
	assert.Empty(t, results[1].Targets)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "irR", results[2].Request.Source1)
}

func TestSubmit_RunsOneAtATime(t *testing.T) {
	store := newTestStore(t)

	var active, maxActive int
	var mu sync.Mutex
	p, err := New(store, &Config{QueueSize: 4, OnDone: func(Result) {
		mu.Lock()
		active++
		maxActive = max(maxActive, active)
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
	}})
	require.NoError(t, err)

	for range 10 {
		require.NoError(t, p.Submit(context.Background(), NewRequest("outL", "irL", DefaultAttributes())))
	}
	require.NoError(t, p.Close())

	assert.Equal(t, 1, maxActive)
}

func TestSubmit_AfterClose(t *testing.T) {
	p, err := New(newTestStore(t), nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "Close is idempotent")

	err = p.Submit(context.Background(), NewRequest("outL", "irL", DefaultAttributes()))
	require.ErrorIs(t, err, ErrClosed)
}

func TestSubmit_ContextCancelledWhileQueueFull(t *testing.T) {
	store := newTestStore(t)
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	p, err := New(store, &Config{QueueSize: 1, OnDone: func(Result) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}})
	require.NoError(t, err)

	req := NewRequest("outL", "irL", DefaultAttributes())
	ctx := context.Background()
	require.NoError(t, p.Submit(ctx, req)) // picked up by the worker
	<-started
	require.NoError(t, p.Submit(ctx, req)) // fills the queue

	cancelCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err = p.Submit(cancelCtx, req)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, p.Close())
}
